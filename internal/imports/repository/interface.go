package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job statuses.
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Job is a queued spreadsheet import.
type Job struct {
	ID             uuid.UUID
	FileName       string
	ObjectKey      string
	Status         string
	Mapping        map[string]string
	SkipDuplicates bool
	GroupID        *uuid.UUID
	RequestedBy    string
	Imported       int
	Skipped        int
	Total          int
	Errors         []string
	Failure        *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateJobParams contains parameters for queueing a file import.
type CreateJobParams struct {
	FileName       string
	ObjectKey      string
	Mapping        map[string]string
	SkipDuplicates bool
	GroupID        *uuid.UUID
	RequestedBy    string
}

// JobResult is the outcome of a finished job.
type JobResult struct {
	Imported int
	Skipped  int
	Total    int
	Errors   []string
}

// JobStore persists import jobs.
type JobStore interface {
	CreateJob(ctx context.Context, params CreateJobParams) (Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (Job, error)
	// ClaimJob moves a queued job to running. It reports false when the job was not queued.
	ClaimJob(ctx context.Context, id uuid.UUID) (bool, error)
	CompleteJob(ctx context.Context, id uuid.UUID, result JobResult) error
	FailJob(ctx context.Context, id uuid.UUID, failure string) error
}

// ImportLocker serializes imports across processes.
type ImportLocker interface {
	WithImportLock(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repository combines all import repository operations.
type Repository interface {
	JobStore
	ImportLocker
}
