// Package service implements lead management: manual entry, browsing, bulk edits and the
// call and import side effects on leads.
package service

import (
	"context"
	"math"
	"strings"

	"leadcall_backend/internal/leads/domain"
	"leadcall_backend/internal/leads/repository"
	"leadcall_backend/internal/leads/transport"
	"leadcall_backend/platform/apperr"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/phone"
	"leadcall_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200

	msgInvalidPhone = "invalid phone number"
)

// Service provides business logic for leads.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new leads service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create stores a manually entered lead. The phone is normalized; an implausible phone is rejected.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	canonical, ok := phone.Normalize(req.Phone)
	if !ok {
		return transport.LeadResponse{}, apperr.Validation(msgInvalidPhone).WithDetails(req.Phone)
	}

	companyName := sanitize.Line(req.CompanyName)
	if companyName == "" {
		return transport.LeadResponse{}, apperr.Validation("companyName is required")
	}

	status := string(domain.StatusNew)
	if req.Status != nil {
		status = *req.Status
	}

	lead, err := s.repo.Create(ctx, repository.CreateParams{
		CompanyName: companyName,
		ContactName: sanitize.OptionalLine(req.ContactName),
		Salutation:  sanitize.OptionalLine(req.Salutation),
		Phone:       canonical,
		Email:       sanitize.OptionalLine(req.Email),
		Website:     sanitize.OptionalLine(req.Website),
		Industry:    sanitize.OptionalLine(req.Industry),
		City:        sanitize.OptionalLine(req.City),
		Status:      status,
		Product:     req.Product,
		Notes:       optionalText(req.Notes),
		GroupID:     req.GroupID,
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.log.WithContext(ctx).Info("lead created", "leadId", lead.ID, "phone", lead.Phone)
	return ToResponse(lead), nil
}

// GetByID retrieves a lead with its latest call.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToResponse(lead), nil
}

// List returns a filtered page of leads.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	params, err := listParams(req)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	params.Limit = limit
	params.Offset = (page - 1) * limit

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	leads := make([]transport.LeadResponse, 0, len(items))
	for _, item := range items {
		leads = append(leads, ToResponse(item))
	}

	return transport.LeadListResponse{
		Leads: leads,
		Pagination: transport.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	fields := make(map[string]any)

	if req.CompanyName != nil {
		name := sanitize.Line(*req.CompanyName)
		if name == "" {
			return transport.LeadResponse{}, apperr.Validation("companyName must not be empty")
		}
		fields["company_name"] = name
	}
	if req.Phone != nil {
		canonical, ok := phone.Normalize(*req.Phone)
		if !ok {
			return transport.LeadResponse{}, apperr.Validation(msgInvalidPhone).WithDetails(*req.Phone)
		}
		fields["phone"] = canonical
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}

	optionalLines := map[string]transport.OptionalString{
		"contact_name": req.ContactName,
		"salutation":   req.Salutation,
		"email":        req.Email,
		"website":      req.Website,
		"industry":     req.Industry,
		"city":         req.City,
	}
	for column, value := range optionalLines {
		if value.Set {
			fields[column] = sanitize.OptionalLine(value.Value)
		}
	}

	if req.Product.Set {
		if req.Product.Value != nil && !domain.Product(*req.Product.Value).Valid() {
			return transport.LeadResponse{}, apperr.Validation("invalid product")
		}
		fields["product"] = req.Product.Value
	}
	if req.Notes.Set {
		fields["notes"] = optionalText(req.Notes.Value)
	}
	if req.GroupID.Set {
		fields["group_id"] = req.GroupID.Value
	}

	lead, err := s.repo.Update(ctx, repository.UpdateParams{ID: id, Fields: fields})
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToResponse(lead), nil
}

// Delete removes a lead and its calls.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("lead deleted", "leadId", id)
	return nil
}

// BulkUpdate applies the same status, product or group change to many leads.
func (s *Service) BulkUpdate(ctx context.Context, req transport.BulkUpdateRequest) (transport.BulkUpdateResponse, error) {
	if req.Update.Status == nil && req.Update.Product == nil && !req.Update.GroupID.Set {
		return transport.BulkUpdateResponse{}, apperr.BadRequest("no changes provided")
	}

	count, err := s.repo.BulkUpdate(ctx, req.IDs, repository.BulkUpdateParams{
		Status:     req.Update.Status,
		Product:    req.Update.Product,
		GroupID:    req.Update.GroupID.Value,
		GroupIDSet: req.Update.GroupID.Set,
	})
	if err != nil {
		return transport.BulkUpdateResponse{}, err
	}
	return transport.BulkUpdateResponse{Success: true, UpdatedCount: count}, nil
}

// BulkDelete removes many leads.
func (s *Service) BulkDelete(ctx context.Context, req transport.BulkDeleteRequest) (transport.BulkDeleteResponse, error) {
	count, err := s.repo.BulkDelete(ctx, req.IDs)
	if err != nil {
		return transport.BulkDeleteResponse{}, err
	}
	s.log.WithContext(ctx).Info("leads bulk deleted", "count", count)
	return transport.BulkDeleteResponse{Success: true, DeletedCount: count}, nil
}

// Industries returns the sorted distinct industries for filter population.
func (s *Service) Industries(ctx context.Context) ([]string, error) {
	return s.repo.ListIndustries(ctx)
}

// ToResponse maps a stored lead to its API representation.
func ToResponse(l repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:           l.ID,
		CompanyName:  l.CompanyName,
		ContactName:  l.ContactName,
		Salutation:   l.Salutation,
		Phone:        l.Phone,
		PhoneDisplay: phone.Display(l.Phone),
		PhoneRegion:  phone.Region(l.Phone),
		Email:        l.Email,
		Website:      l.Website,
		Industry:     l.Industry,
		City:         l.City,
		Status:       l.Status,
		Product:      l.Product,
		Notes:        l.Notes,
		CallAttempts: l.CallAttempts,
		LastCallAt:   l.LastCallAt,
		GroupID:      l.GroupID,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if l.LastCall != nil {
		resp.LastCall = &transport.LastCallResponse{
			ID:              l.LastCall.ID,
			CalledAt:        l.LastCall.CalledAt,
			Outcome:         l.LastCall.Outcome,
			DurationSeconds: l.LastCall.DurationSeconds,
			Note:            l.LastCall.Note,
		}
	}
	return resp
}

func listParams(req transport.ListLeadsRequest) (repository.ListParams, error) {
	params := repository.ListParams{
		Status:    optionalFilter(req.Status),
		Industry:  optionalFilter(req.Industry),
		Product:   optionalFilter(req.Product),
		Search:    strings.TrimSpace(req.Search),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}

	switch groupID := strings.TrimSpace(req.GroupID); groupID {
	case "":
	case "none":
		params.Ungrouped = true
	default:
		parsed, err := uuid.Parse(groupID)
		if err != nil {
			return repository.ListParams{}, apperr.BadRequest("invalid groupId")
		}
		params.GroupID = &parsed
	}

	return params, nil
}

func optionalFilter(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
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
