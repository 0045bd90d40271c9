package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest contains data for creating a lead manually.
type CreateLeadRequest struct {
	CompanyName string     `json:"companyName" validate:"required,min=1,max=300"`
	ContactName *string    `json:"contactName,omitempty" validate:"omitempty,max=200"`
	Salutation  *string    `json:"salutation,omitempty" validate:"omitempty,max=50"`
	Phone       string     `json:"phone" validate:"required,max=50"`
	Email       *string    `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Website     *string    `json:"website,omitempty" validate:"omitempty,max=500"`
	Industry    *string    `json:"industry,omitempty" validate:"omitempty,max=200"`
	City        *string    `json:"city,omitempty" validate:"omitempty,max=200"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=new contacted interested not_interested booked"`
	Product     *string    `json:"product,omitempty" validate:"omitempty,oneof=ai_product consulting"`
	Notes       *string    `json:"notes,omitempty" validate:"omitempty,max=10000"`
	GroupID     *uuid.UUID `json:"groupId,omitempty"`
}

// UpdateLeadRequest is a partial update. Absent fields are left unchanged;
// null or "" clears optional fields.
type UpdateLeadRequest struct {
	CompanyName *string        `json:"companyName,omitempty" validate:"omitempty,min=1,max=300"`
	ContactName OptionalString `json:"contactName"`
	Salutation  OptionalString `json:"salutation"`
	Phone       *string        `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email       OptionalString `json:"email"`
	Website     OptionalString `json:"website"`
	Industry    OptionalString `json:"industry"`
	City        OptionalString `json:"city"`
	Status      *string        `json:"status,omitempty" validate:"omitempty,oneof=new contacted interested not_interested booked"`
	Product     OptionalString `json:"product"`
	Notes       OptionalString `json:"notes"`
	GroupID     OptionalUUID   `json:"groupId"`
}

// ListLeadsRequest holds the query parameters of GET /api/leads.
type ListLeadsRequest struct {
	Page      int    `form:"page" validate:"omitempty,min=1"`
	Limit     int    `form:"limit" validate:"omitempty,min=1,max=200"`
	Status    string `form:"status" validate:"omitempty,oneof=new contacted interested not_interested booked"`
	Industry  string `form:"industry" validate:"omitempty,max=200"`
	Product   string `form:"product" validate:"omitempty,oneof=ai_product consulting"`
	GroupID   string `form:"groupId" validate:"omitempty,max=36"`
	Search    string `form:"search" validate:"omitempty,max=200"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=createdAt updatedAt companyName status lastCallAt callAttempts"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// BulkUpdateRequest applies one change set to many leads.
type BulkUpdateRequest struct {
	IDs    []uuid.UUID     `json:"ids" validate:"required,min=1,max=1000"`
	Update BulkUpdateFields `json:"update"`
}

// BulkUpdateFields are the changes allowed in a bulk update.
type BulkUpdateFields struct {
	Status  *string      `json:"status,omitempty" validate:"omitempty,oneof=new contacted interested not_interested booked"`
	Product *string      `json:"product,omitempty" validate:"omitempty,oneof=ai_product consulting"`
	GroupID OptionalUUID `json:"groupId"`
}

// BulkDeleteRequest lists leads to delete.
type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=1000"`
}

// LastCallResponse is the latest call embedded in a lead.
type LastCallResponse struct {
	ID              uuid.UUID `json:"id"`
	CalledAt        time.Time `json:"calledAt"`
	Outcome         string    `json:"outcome"`
	DurationSeconds *int      `json:"durationSeconds,omitempty"`
	Note            *string   `json:"note,omitempty"`
}

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID           uuid.UUID         `json:"id"`
	CompanyName  string            `json:"companyName"`
	ContactName  *string           `json:"contactName"`
	Salutation   *string           `json:"salutation"`
	Phone        string            `json:"phone"`
	PhoneDisplay string            `json:"phoneDisplay"`
	PhoneRegion  string            `json:"phoneRegion,omitempty"`
	Email        *string           `json:"email"`
	Website      *string           `json:"website"`
	Industry     *string           `json:"industry"`
	City         *string           `json:"city"`
	Status       string            `json:"status"`
	Product      *string           `json:"product"`
	Notes        *string           `json:"notes"`
	CallAttempts int               `json:"callAttempts"`
	LastCallAt   *time.Time        `json:"lastCallAt"`
	GroupID      *uuid.UUID        `json:"groupId"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	LastCall     *LastCallResponse `json:"lastCall,omitempty"`
}

// Pagination describes a page of results.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// LeadListResponse wraps a page of leads.
type LeadListResponse struct {
	Leads      []LeadResponse `json:"leads"`
	Pagination Pagination     `json:"pagination"`
}

// BulkUpdateResponse reports how many leads changed.
type BulkUpdateResponse struct {
	Success      bool `json:"success"`
	UpdatedCount int  `json:"updatedCount"`
}

// BulkDeleteResponse reports how many leads were deleted.
type BulkDeleteResponse struct {
	Success      bool `json:"success"`
	DeletedCount int  `json:"deletedCount"`
}
