package transport

import (
	"encoding/json"
	"time"

	"leadcall_backend/internal/imports/pipeline"

	"github.com/google/uuid"
)

// ImportRequest is the body of POST /api/import. Leads stays raw so a
// non-array value can be answered with "No leads provided".
type ImportRequest struct {
	Leads          json.RawMessage   `json:"leads"`
	Mapping        map[string]string `json:"mapping,omitempty"`
	SkipDuplicates *bool             `json:"skipDuplicates,omitempty"`
	GroupID        *uuid.UUID        `json:"groupId,omitempty"`
}

// ImportResponse summarizes a reconciled batch.
type ImportResponse struct {
	Success  bool     `json:"success"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors"`
}

// PreviewResponse is a parsed spreadsheet ready for column mapping.
type PreviewResponse struct {
	FileName         string            `json:"fileName"`
	Headers          []string          `json:"headers"`
	Rows             []pipeline.Row    `json:"rows"`
	TotalRows        int               `json:"totalRows"`
	SuggestedMapping map[string]string `json:"suggestedMapping"`
}

// JobRequest holds the non-file form fields of POST /api/import/jobs.
type JobRequest struct {
	Mapping        string `form:"mapping" validate:"omitempty,max=20000"`
	SkipDuplicates string `form:"skipDuplicates" validate:"omitempty,oneof=true false"`
	GroupID        string `form:"groupId" validate:"omitempty,uuid"`
}

// JobResponse describes a queued or finished file import.
type JobResponse struct {
	ID             uuid.UUID         `json:"id"`
	FileName       string            `json:"fileName"`
	Status         string            `json:"status"`
	Mapping        map[string]string `json:"mapping"`
	SkipDuplicates bool              `json:"skipDuplicates"`
	GroupID        *uuid.UUID        `json:"groupId,omitempty"`
	RequestedBy    string            `json:"requestedBy"`
	Imported       int               `json:"imported"`
	Skipped        int               `json:"skipped"`
	Total          int               `json:"total"`
	Errors         []string          `json:"errors"`
	Failure        *string           `json:"failure,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}
