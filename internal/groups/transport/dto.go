package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateGroupRequest contains data for creating a group.
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// UpdateGroupRequest is a partial update; description null clears it.
type UpdateGroupRequest struct {
	Name        *string            `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description NullableDescription `json:"description"`
	Color       *string            `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// NullableDescription distinguishes an absent description from an explicit null.
type NullableDescription struct {
	Set   bool
	Value *string
}

// UnmarshalJSON records that the field was present.
func (d *NullableDescription) UnmarshalJSON(data []byte) error {
	d.Set = true
	if string(data) == "null" {
		d.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	d.Value = &s
	return nil
}

// GroupResponse represents a group in API responses.
type GroupResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Color       string    `json:"color"`
	LeadCount   int       `json:"leadCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GroupListResponse lists all groups plus the number of leads without one.
type GroupListResponse struct {
	Groups         []GroupResponse `json:"groups"`
	UngroupedCount int             `json:"ungroupedCount"`
}

// GroupDetailResponse is a group with its per-status lead counts.
type GroupDetailResponse struct {
	GroupResponse
	StatusCounts map[string]int `json:"statusCounts"`
}
