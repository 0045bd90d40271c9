// Package service implements lead groups.
package service

import (
	"context"

	"leadcall_backend/internal/groups/repository"
	"leadcall_backend/internal/groups/transport"
	"leadcall_backend/platform/apperr"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/sanitize"

	"github.com/google/uuid"
)

// DefaultColor is assigned to groups created without a color.
const DefaultColor = "#3b82f6"

// Service provides business logic for groups.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new groups service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) List(ctx context.Context) (transport.GroupListResponse, error) {
	groups, err := s.repo.List(ctx)
	if err != nil {
		return transport.GroupListResponse{}, err
	}
	ungrouped, err := s.repo.CountUngrouped(ctx)
	if err != nil {
		return transport.GroupListResponse{}, err
	}

	items := make([]transport.GroupResponse, 0, len(groups))
	for _, g := range groups {
		items = append(items, toResponse(g))
	}
	return transport.GroupListResponse{Groups: items, UngroupedCount: ungrouped}, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.GroupDetailResponse, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.GroupDetailResponse{}, err
	}
	counts, err := s.repo.StatusCounts(ctx, id)
	if err != nil {
		return transport.GroupDetailResponse{}, err
	}
	return transport.GroupDetailResponse{GroupResponse: toResponse(group), StatusCounts: counts}, nil
}

func (s *Service) Create(ctx context.Context, req transport.CreateGroupRequest) (transport.GroupResponse, error) {
	name := sanitize.Line(req.Name)
	if name == "" {
		return transport.GroupResponse{}, apperr.Validation("name is required")
	}
	color := DefaultColor
	if req.Color != nil {
		color = *req.Color
	}

	group, err := s.repo.Create(ctx, repository.CreateParams{
		Name:        name,
		Description: optionalDescription(req.Description),
		Color:       color,
	})
	if err != nil {
		return transport.GroupResponse{}, err
	}

	s.log.WithContext(ctx).Info("group created", "groupId", group.ID, "name", group.Name)
	return toResponse(group), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateGroupRequest) (transport.GroupResponse, error) {
	params := repository.UpdateParams{ID: id, Color: req.Color}
	if req.Name != nil {
		name := sanitize.Line(*req.Name)
		if name == "" {
			return transport.GroupResponse{}, apperr.Validation("name must not be empty")
		}
		params.Name = &name
	}
	if req.Description.Set {
		params.DescriptionSet = true
		params.Description = optionalDescription(req.Description.Value)
	}

	group, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.GroupResponse{}, err
	}
	return toResponse(group), nil
}

// Delete removes a group; its leads become ungrouped.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("group deleted", "groupId", id)
	return nil
}

func optionalDescription(value *string) *string {
	if value == nil {
		return nil
	}
	text := sanitize.Text(*value)
	if text == "" {
		return nil
	}
	return &text
}

func toResponse(g repository.Group) transport.GroupResponse {
	return transport.GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Color:       g.Color,
		LeadCount:   g.LeadCount,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}
