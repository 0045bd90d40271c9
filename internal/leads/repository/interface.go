package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Lead is a stored lead row, optionally with its most recent call.
type Lead struct {
	ID           uuid.UUID
	CompanyName  string
	ContactName  *string
	Salutation   *string
	Phone        string
	Email        *string
	Website      *string
	Industry     *string
	City         *string
	Status       string
	Product      *string
	Notes        *string
	CallAttempts int
	LastCallAt   *time.Time
	GroupID      *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastCall     *LastCall
}

// LastCall summarizes the latest call of a lead.
type LastCall struct {
	ID              uuid.UUID
	CalledAt        time.Time
	Outcome         string
	DurationSeconds *int
	Note            *string
}

// CreateParams contains parameters for creating a lead.
type CreateParams struct {
	CompanyName string
	ContactName *string
	Salutation  *string
	Phone       string
	Email       *string
	Website     *string
	Industry    *string
	City        *string
	Status      string
	Product     *string
	Notes       *string
	GroupID     *uuid.UUID
}

// UpdateParams lists the columns to change. A nil map entry value clears the column.
type UpdateParams struct {
	ID     uuid.UUID
	Fields map[string]any
}

// BulkUpdateParams contains the changes applied to many leads at once.
type BulkUpdateParams struct {
	Status     *string
	Product    *string
	GroupID    *uuid.UUID
	GroupIDSet bool
}

// RecordCallParams describes the lead-side effects of a logged call.
type RecordCallParams struct {
	LeadID   uuid.UUID
	CalledAt time.Time
	Status   *string
	Product  *string
	Notes    *string
}

// ListParams filters, sorts and paginates leads.
type ListParams struct {
	Status    *string
	Industry  *string
	Product   *string
	GroupID   *uuid.UUID
	Ungrouped bool
	Search    string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// LeadReader provides read operations for leads.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
	FindByPhone(ctx context.Context, phone string) (*Lead, error)
	ListIndustries(ctx context.Context) ([]string, error)
}

// LeadWriter provides write operations for leads.
type LeadWriter interface {
	Create(ctx context.Context, params CreateParams) (Lead, error)
	Update(ctx context.Context, params UpdateParams) (Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	BulkUpdate(ctx context.Context, ids []uuid.UUID, params BulkUpdateParams) (int, error)
	BulkDelete(ctx context.Context, ids []uuid.UUID) (int, error)
	RecordCall(ctx context.Context, params RecordCallParams) error
}

// Repository combines all lead repository operations.
type Repository interface {
	LeadReader
	LeadWriter
}
