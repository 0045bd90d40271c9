package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Group is a named collection of leads.
type Group struct {
	ID          uuid.UUID
	Name        string
	Description *string
	Color       string
	LeadCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateParams contains parameters for creating a group.
type CreateParams struct {
	Name        string
	Description *string
	Color       string
}

// UpdateParams contains parameters for updating a group. Nil fields are left unchanged.
type UpdateParams struct {
	ID             uuid.UUID
	Name           *string
	Description    *string
	DescriptionSet bool
	Color          *string
}

// Repository defines group persistence.
type Repository interface {
	List(ctx context.Context) ([]Group, error)
	CountUngrouped(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (Group, error)
	StatusCounts(ctx context.Context, id uuid.UUID) (map[string]int, error)
	Create(ctx context.Context, params CreateParams) (Group, error)
	Update(ctx context.Context, params UpdateParams) (Group, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
