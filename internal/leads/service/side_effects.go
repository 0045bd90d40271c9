package service

import (
	"context"

	"leadcall_backend/internal/leads/repository"
)

// ExistsWithPhone reports whether any lead already carries this canonical phone.
func (s *Service) ExistsWithPhone(ctx context.Context, canonicalPhone string) (bool, error) {
	lead, err := s.repo.FindByPhone(ctx, canonicalPhone)
	if err != nil {
		return false, err
	}
	return lead != nil, nil
}

// RecordCall applies the lead-side effects of a logged call.
func (s *Service) RecordCall(ctx context.Context, params repository.RecordCallParams) error {
	if params.Notes != nil {
		params.Notes = optionalText(params.Notes)
	}
	return s.repo.RecordCall(ctx, params)
}
