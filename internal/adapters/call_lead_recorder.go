package adapters

import (
	"context"

	callsservice "leadcall_backend/internal/calls/service"
	leadsrepo "leadcall_backend/internal/leads/repository"
	leadsservice "leadcall_backend/internal/leads/service"
)

// CallLeadRecorder applies the lead-side effects of a logged call through the leads service.
type CallLeadRecorder struct {
	leads *leadsservice.Service
}

// NewCallLeadRecorder creates a new call lead recorder adapter.
func NewCallLeadRecorder(leads *leadsservice.Service) *CallLeadRecorder {
	return &CallLeadRecorder{leads: leads}
}

// RecordCall bumps the attempt counter and applies optional status, product and notes.
func (a *CallLeadRecorder) RecordCall(ctx context.Context, update callsservice.LeadUpdate) error {
	return a.leads.RecordCall(ctx, leadsrepo.RecordCallParams{
		LeadID:   update.LeadID,
		CalledAt: update.CalledAt,
		Status:   update.Status,
		Product:  update.Product,
		Notes:    update.Notes,
	})
}

// Compile-time check.
var _ callsservice.LeadRecorder = (*CallLeadRecorder)(nil)
