// Package callsession drives one operator's telephony session: capability
// loading, device registration, dialing and the lifecycle of a single call.
package callsession

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a TokenSource when telephony credentials are absent.
// The controller treats it as "feature not enabled", not as a failure.
var ErrNotConfigured = errors.New("telephony not configured")

// State is a controller state.
type State int

const (
	StateUninitialized State = iota
	StateSDKLoading
	StateDeviceRegistering
	StateReady
	StateConnecting
	StateActive
	StateTerminated
	StateError
	StateNotConfigured
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSDKLoading:
		return "sdk_loading"
	case StateDeviceRegistering:
		return "device_registering"
	case StateReady:
		return "ready"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	case StateError:
		return "error"
	case StateNotConfigured:
		return "not_configured"
	default:
		return "unknown"
	}
}

// EventKind enumerates the signals the telephony backend sends about a call.
type EventKind int

const (
	EventAccepted EventKind = iota
	EventRinging
	EventDisconnected
	EventCancelled
	EventRejected
	EventErrored
)

func (k EventKind) String() string {
	switch k {
	case EventAccepted:
		return "accepted"
	case EventRinging:
		return "ringing"
	case EventDisconnected:
		return "disconnected"
	case EventCancelled:
		return "cancelled"
	case EventRejected:
		return "rejected"
	case EventErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Event is a backend signal. Err is set for EventErrored.
type Event struct {
	Kind EventKind
	Err  error
}

// NotificationKind classifies what the controller tells its host.
type NotificationKind int

const (
	// CallStarted is emitted on entering Active.
	CallStarted NotificationKind = iota
	// CallEnded is emitted on entering Terminated and carries the final duration.
	CallEnded
	Ringing
	// Validation reports rejected operator input. No transition happened.
	Validation
	Failure
	// Unavailable reports that calling is not possible in this session.
	Unavailable
	// Progress carries the running duration after each tick while Active.
	Progress
)

func (k NotificationKind) String() string {
	switch k {
	case CallStarted:
		return "call_started"
	case CallEnded:
		return "call_ended"
	case Ringing:
		return "ringing"
	case Validation:
		return "validation"
	case Failure:
		return "failure"
	case Unavailable:
		return "unavailable"
	case Progress:
		return "progress"
	default:
		return "unknown"
	}
}

// Notification is an outward message for the host.
type Notification struct {
	Kind     NotificationKind
	Message  string
	Duration int
	CallSID  string
}

// Call is a held call-session handle.
type Call interface {
	SID() string
	Events() <-chan Event
	Disconnect(ctx context.Context) error
}

// Device places calls against the telephony backend.
type Device interface {
	Register(ctx context.Context) error
	Connect(ctx context.Context, to string) (Call, error)
	DisconnectAll(ctx context.Context) error
	Destroy(ctx context.Context) error
}

// DeviceFactory builds a device from a session token.
type DeviceFactory func(token string) (Device, error)

// Capability loads the telephony capability for this environment.
type Capability interface {
	Load(ctx context.Context) (DeviceFactory, error)
}

// TokenSource fetches session tokens for an operator identity.
type TokenSource interface {
	Token(ctx context.Context, identity string) (string, error)
}
