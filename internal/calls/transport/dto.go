package transport

import (
	"time"

	"github.com/google/uuid"
)

// Call outcomes.
const (
	OutcomeReached    = "reached"
	OutcomeNotReached = "not_reached"
	OutcomeVoicemail  = "voicemail"
)

// CreateCallRequest logs a call and optionally updates the lead.
type CreateCallRequest struct {
	LeadID          uuid.UUID `json:"leadId" validate:"required"`
	Outcome         string    `json:"outcome" validate:"required,oneof=reached not_reached voicemail"`
	DurationSeconds *int      `json:"durationSeconds,omitempty" validate:"omitempty,min=0,max=86400"`
	Note            *string   `json:"note,omitempty" validate:"omitempty,max=10000"`
	ExternalSID     *string   `json:"externalSid,omitempty" validate:"omitempty,max=64"`
	UpdateStatus    bool      `json:"updateStatus"`
	Status          *string   `json:"status,omitempty" validate:"omitempty,oneof=new contacted interested not_interested booked"`
	Product         *string   `json:"product,omitempty" validate:"omitempty,oneof=ai_product consulting"`
}

// ListCallsRequest holds the query parameters of GET /api/calls.
type ListCallsRequest struct {
	LeadID string `form:"leadId" validate:"omitempty,uuid"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=1000"`
}

// CallLead is the lead summary embedded in call responses.
type CallLead struct {
	CompanyName string  `json:"companyName"`
	ContactName *string `json:"contactName"`
}

// CallResponse represents a call in API responses.
type CallResponse struct {
	ID              uuid.UUID `json:"id"`
	LeadID          uuid.UUID `json:"leadId"`
	CalledAt        time.Time `json:"calledAt"`
	DurationSeconds *int      `json:"durationSeconds"`
	Outcome         string    `json:"outcome"`
	Note            *string   `json:"note"`
	ExternalSID     *string   `json:"externalSid"`
	Lead            CallLead  `json:"lead"`
}

// CreateCallResponse is the logged call plus the outcome of the lead update.
type CreateCallResponse struct {
	CallResponse
	LeadUpdated     bool   `json:"leadUpdated"`
	LeadUpdateError string `json:"leadUpdateError,omitempty"`
}
