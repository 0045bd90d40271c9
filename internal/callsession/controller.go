package callsession

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"leadcall_backend/platform/logger"
)

const (
	msgNotReady      = "telephony is not ready"
	msgInvalidNumber = "number must start with + (e.g. +49...)"
	msgUnavailable   = "telephony unavailable"
	msgRejected      = "call rejected"
)

// Controller is the call session state machine. All methods are safe for
// concurrent use; notifications are returned, never pushed.
type Controller struct {
	mu sync.Mutex

	capability Capability
	tokens     TokenSource
	identity   string
	log        *logger.Logger

	state    State
	device   Device
	call     Call
	duration int
	lastErr  error
}

// New creates a controller in Uninitialized.
func New(capability Capability, tokens TokenSource, identity string, log *logger.Logger) *Controller {
	return &Controller{
		capability: capability,
		tokens:     tokens,
		identity:   identity,
		log:        log,
		state:      StateUninitialized,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Duration returns the seconds counted since the call was accepted.
func (c *Controller) Duration() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// Err returns the error that moved the controller into Error, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// CanDial reports whether a new call may be placed. Terminated counts as ready.
func (c *Controller) CanDial() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canDial()
}

// Call returns the held call handle, or nil.
func (c *Controller) Call() Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.call
}

func (c *Controller) canDial() bool {
	return c.state == StateReady || c.state == StateTerminated
}

// Start loads the capability and registers a device. It only acts in Uninitialized.
// A TokenSource answering ErrNotConfigured leaves the controller inert in NotConfigured
// without a notification.
func (c *Controller) Start(ctx context.Context) []Notification {
	c.mu.Lock()
	if c.state != StateUninitialized {
		c.mu.Unlock()
		return nil
	}
	c.state = StateSDKLoading
	c.mu.Unlock()

	factory, err := c.capability.Load(ctx)
	if err != nil {
		return c.fail(fmt.Errorf("load telephony capability: %w", err))
	}

	c.setState(StateDeviceRegistering)

	token, err := c.tokens.Token(ctx, c.identity)
	if errors.Is(err, ErrNotConfigured) {
		c.setState(StateNotConfigured)
		c.log.Info("telephony not configured, calling disabled")
		return nil
	}
	if err != nil {
		return c.fail(fmt.Errorf("fetch token: %w", err))
	}

	device, err := factory(token)
	if err != nil {
		return c.fail(fmt.Errorf("create device: %w", err))
	}
	if err := device.Register(ctx); err != nil {
		_ = device.Destroy(ctx)
		return c.fail(fmt.Errorf("register device: %w", err))
	}

	c.mu.Lock()
	c.device = device
	c.state = StateReady
	c.mu.Unlock()

	c.log.Info("telephony device registered", "identity", c.identity)
	return nil
}

// Dial places a call. The number is stripped of whitespace and must start
// with "+"; otherwise a Validation notification is returned and nothing changes.
// A failed connect reports a Failure and returns to Ready.
func (c *Controller) Dial(ctx context.Context, number string) []Notification {
	cleaned := stripSpaces(number)

	c.mu.Lock()
	if !c.canDial() || c.device == nil {
		c.mu.Unlock()
		return []Notification{{Kind: Unavailable, Message: msgNotReady}}
	}
	if cleaned == "" || !strings.HasPrefix(cleaned, "+") {
		c.mu.Unlock()
		return []Notification{{Kind: Validation, Message: msgInvalidNumber}}
	}
	c.state = StateConnecting
	c.duration = 0
	device := c.device
	c.mu.Unlock()

	call, err := device.Connect(ctx, cleaned)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if c.state == StateConnecting {
			c.state = StateReady
		}
		c.log.Warn("call could not be started", "to", cleaned, "error", err)
		return []Notification{{Kind: Failure, Message: fmt.Sprintf("call could not be started: %v", err)}}
	}

	if c.state != StateConnecting {
		// hung up while connecting
		_ = call.Disconnect(context.WithoutCancel(ctx))
		return nil
	}
	c.call = call
	c.log.Info("call connecting", "to", cleaned, "callSid", call.SID())
	return nil
}

// HandleEvent applies a backend signal. Signals that do not fit the current state are ignored.
func (c *Controller) HandleEvent(ev Event) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case EventAccepted:
		if c.state != StateConnecting {
			return nil
		}
		c.state = StateActive
		c.duration = 0
		return []Notification{{Kind: CallStarted, CallSID: c.callSID()}}

	case EventRinging:
		if c.state != StateConnecting {
			return nil
		}
		return []Notification{{Kind: Ringing, CallSID: c.callSID()}}

	case EventDisconnected, EventCancelled:
		if !c.inCall() {
			return nil
		}
		return []Notification{c.end()}

	case EventRejected:
		if !c.inCall() {
			return nil
		}
		return []Notification{c.end(), {Kind: Failure, Message: msgRejected}}

	case EventErrored:
		msg := "call failed"
		if ev.Err != nil {
			msg = fmt.Sprintf("call failed: %v", ev.Err)
		}
		if !c.inCall() {
			// device-level error outside a call
			return []Notification{{Kind: Failure, Message: msg}}
		}
		return []Notification{c.end(), {Kind: Failure, Message: msg}}
	}
	return nil
}

// Tick advances the duration counter by one second while Active and returns it.
func (c *Controller) Tick() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateActive {
		c.duration++
	}
	return c.duration
}

// HangUp ends a Connecting or Active call. It disconnects the held handle,
// or every session on the device when no handle is held yet.
func (c *Controller) HangUp(ctx context.Context) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inCall() {
		return nil
	}

	var err error
	if c.call != nil {
		err = c.call.Disconnect(ctx)
	} else if c.device != nil {
		err = c.device.DisconnectAll(ctx)
	}
	if err != nil {
		c.log.Warn("hang up failed", "error", err)
	}
	return []Notification{c.end()}
}

// Close releases the device.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	device := c.device
	c.device = nil
	c.call = nil
	c.mu.Unlock()

	if device == nil {
		return nil
	}
	return device.Destroy(ctx)
}

func (c *Controller) inCall() bool {
	return c.state == StateConnecting || c.state == StateActive
}

func (c *Controller) callSID() string {
	if c.call == nil {
		return ""
	}
	return c.call.SID()
}

// end moves to Terminated and releases the handle. Caller holds mu.
func (c *Controller) end() Notification {
	n := Notification{Kind: CallEnded, Duration: c.duration, CallSID: c.callSID()}
	c.state = StateTerminated
	c.call = nil
	c.duration = 0
	return n
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) fail(err error) []Notification {
	c.mu.Lock()
	c.state = StateError
	c.lastErr = err
	c.mu.Unlock()

	c.log.Error("telephony unavailable", "error", err)
	return []Notification{{Kind: Unavailable, Message: msgUnavailable}}
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
