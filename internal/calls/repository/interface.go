package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Call is one logged call attempt. Calls are append-only.
type Call struct {
	ID              uuid.UUID
	LeadID          uuid.UUID
	CalledAt        time.Time
	DurationSeconds *int
	Outcome         string
	Note            *string
	ExternalSID     *string
	LeadCompanyName string
	LeadContactName *string
}

// CreateParams contains parameters for logging a call.
type CreateParams struct {
	LeadID          uuid.UUID
	CalledAt        time.Time
	DurationSeconds *int
	Outcome         string
	Note            *string
	ExternalSID     *string
}

// ListParams filters the call log.
type ListParams struct {
	LeadID *uuid.UUID
	Limit  int
}

// Repository defines call persistence.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Call, error)
	List(ctx context.Context, params ListParams) ([]Call, error)
}
