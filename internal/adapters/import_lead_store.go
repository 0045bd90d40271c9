package adapters

import (
	"context"

	"leadcall_backend/internal/imports/pipeline"
	leadstransport "leadcall_backend/internal/leads/transport"
	leadsservice "leadcall_backend/internal/leads/service"
)

// ImportLeadStore lets the import reconciler look up and create leads through the leads service.
type ImportLeadStore struct {
	leads *leadsservice.Service
}

// NewImportLeadStore creates a new import lead store adapter.
func NewImportLeadStore(leads *leadsservice.Service) *ImportLeadStore {
	return &ImportLeadStore{leads: leads}
}

func (a *ImportLeadStore) ExistsWithPhone(ctx context.Context, canonicalPhone string) (bool, error) {
	return a.leads.ExistsWithPhone(ctx, canonicalPhone)
}

// Create stores a reconciled row as a new lead with the default status.
func (a *ImportLeadStore) Create(ctx context.Context, lead pipeline.Lead) error {
	_, err := a.leads.Create(ctx, leadstransport.CreateLeadRequest{
		CompanyName: lead.CompanyName,
		ContactName: lead.ContactName,
		Salutation:  lead.Salutation,
		Phone:       lead.Phone,
		Email:       lead.Email,
		Website:     lead.Website,
		Industry:    lead.Industry,
		City:        lead.City,
		GroupID:     lead.GroupID,
	})
	return err
}

var _ pipeline.LeadStore = (*ImportLeadStore)(nil)
