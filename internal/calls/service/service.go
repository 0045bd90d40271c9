// Package service implements the call log. Logging a call also applies its
// side effects to the lead; the two writes are independent.
package service

import (
	"context"
	"time"

	"leadcall_backend/internal/calls/repository"
	"leadcall_backend/internal/calls/transport"
	"leadcall_backend/internal/events"
	"leadcall_backend/platform/apperr"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// LeadUpdate is the lead-side effect of a logged call.
type LeadUpdate struct {
	LeadID   uuid.UUID
	CalledAt time.Time
	Status   *string
	Product  *string
	Notes    *string
}

// LeadRecorder applies call side effects to leads.
type LeadRecorder interface {
	RecordCall(ctx context.Context, update LeadUpdate) error
}

// Service provides business logic for calls.
type Service struct {
	repo     repository.Repository
	leads    LeadRecorder
	eventBus events.Publisher
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new calls service.
func New(repo repository.Repository, leads LeadRecorder, eventBus events.Publisher, log *logger.Logger) *Service {
	return &Service{repo: repo, leads: leads, eventBus: eventBus, log: log, now: time.Now}
}

// List returns calls newest first.
func (s *Service) List(ctx context.Context, req transport.ListCallsRequest) ([]transport.CallResponse, error) {
	params := repository.ListParams{Limit: req.Limit}
	if params.Limit < 1 {
		params.Limit = defaultListLimit
	}
	if params.Limit > maxListLimit {
		params.Limit = maxListLimit
	}
	if req.LeadID != "" {
		id, err := uuid.Parse(req.LeadID)
		if err != nil {
			return nil, apperr.BadRequest("invalid leadId")
		}
		params.LeadID = &id
	}

	calls, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	out := make([]transport.CallResponse, 0, len(calls))
	for _, c := range calls {
		out = append(out, toResponse(c))
	}
	return out, nil
}

// Create logs a call, then updates the lead. A failed lead update does not
// undo the call; it is reported in the response instead.
func (s *Service) Create(ctx context.Context, req transport.CreateCallRequest) (transport.CreateCallResponse, error) {
	if req.UpdateStatus && req.Status == nil {
		return transport.CreateCallResponse{}, apperr.Validation("status is required when updateStatus is set")
	}

	calledAt := s.now().UTC()
	note := optionalText(req.Note)
	externalSID := optionalText(req.ExternalSID)

	call, err := s.repo.Create(ctx, repository.CreateParams{
		LeadID:          req.LeadID,
		CalledAt:        calledAt,
		DurationSeconds: req.DurationSeconds,
		Outcome:         req.Outcome,
		Note:            note,
		ExternalSID:     externalSID,
	})
	if err != nil {
		return transport.CreateCallResponse{}, err
	}

	update := LeadUpdate{LeadID: req.LeadID, CalledAt: calledAt, Product: req.Product, Notes: note}
	if req.UpdateStatus {
		update.Status = req.Status
	}

	resp := transport.CreateCallResponse{CallResponse: toResponse(call), LeadUpdated: true}
	if err := s.leads.RecordCall(ctx, update); err != nil {
		s.log.WithContext(ctx).Error("lead update after call failed", "callId", call.ID, "leadId", req.LeadID, "error", err)
		resp.LeadUpdated = false
		resp.LeadUpdateError = "failed to update lead"
	}

	duration := 0
	if req.DurationSeconds != nil {
		duration = *req.DurationSeconds
	}
	s.log.WithContext(ctx).CallLogged(req.LeadID.String(), req.Outcome, duration)

	s.eventBus.Publish(ctx, events.CallLogged{
		BaseEvent:       events.NewBaseEvent(),
		CallID:          call.ID,
		LeadID:          call.LeadID,
		Outcome:         call.Outcome,
		DurationSeconds: duration,
		CalledAt:        call.CalledAt,
		LeadUpdated:     resp.LeadUpdated,
	})

	return resp, nil
}

func toResponse(c repository.Call) transport.CallResponse {
	return transport.CallResponse{
		ID:              c.ID,
		LeadID:          c.LeadID,
		CalledAt:        c.CalledAt,
		DurationSeconds: c.DurationSeconds,
		Outcome:         c.Outcome,
		Note:            c.Note,
		ExternalSID:     c.ExternalSID,
		Lead: transport.CallLead{
			CompanyName: c.LeadCompanyName,
			ContactName: c.LeadContactName,
		},
	}
}

func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	text := sanitize.Text(*value)
	if text == "" {
		return nil
	}
	return &text
}
