// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"leadcall_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Publisher   = events.Publisher
	Subscriber  = events.Subscriber
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Import Domain Events
// =============================================================================

// LeadsImported is published after an import batch has been reconciled.
type LeadsImported struct {
	BaseEvent
	Source   string     `json:"source"`
	GroupID  *uuid.UUID `json:"groupId,omitempty"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Invalid  int        `json:"invalid"`
	Failed   int        `json:"failed"`
	Total    int        `json:"total"`
}

func (e LeadsImported) EventName() string { return "imports.leads.imported" }

// ImportJobFinished is published when a queued file import reaches a terminal state.
type ImportJobFinished struct {
	BaseEvent
	JobID    uuid.UUID `json:"jobId"`
	Status   string    `json:"status"`
	Imported int       `json:"imported"`
	Skipped  int       `json:"skipped"`
	Total    int       `json:"total"`
	Failure  string    `json:"failure,omitempty"`
}

func (e ImportJobFinished) EventName() string { return "imports.job.finished" }

// =============================================================================
// Calls Domain Events
// =============================================================================

// CallLogged is published after a call record has been written.
type CallLogged struct {
	BaseEvent
	CallID          uuid.UUID `json:"callId"`
	LeadID          uuid.UUID `json:"leadId"`
	Outcome         string    `json:"outcome"`
	DurationSeconds int       `json:"durationSeconds"`
	CalledAt        time.Time `json:"calledAt"`
	LeadUpdated     bool      `json:"leadUpdated"`
}

func (e CallLogged) EventName() string { return "calls.call.logged" }
