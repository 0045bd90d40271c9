package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"leadcall_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const jobNotFoundMessage = "import job not found"

// importLockKey is the session advisory lock held while an import runs.
const importLockKey int64 = 0x6c65616463616c6c

const pgForeignKeyViolation = "23503"

const jobColumns = `
	id, file_name, object_key, status, mapping, skip_duplicates, group_id, requested_by,
	imported, skipped, total, errors, failure, created_at, updated_at`

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new imports repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) CreateJob(ctx context.Context, params CreateJobParams) (Job, error) {
	mapping, err := json.Marshal(params.Mapping)
	if err != nil {
		return Job{}, fmt.Errorf("encode mapping: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO import_jobs (file_name, object_key, mapping, skip_duplicates, group_id, requested_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+jobColumns,
		params.FileName, params.ObjectKey, mapping, params.SkipDuplicates, params.GroupID, params.RequestedBy,
	)
	job, err := scanJob(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return Job{}, apperr.BadRequest("group not found")
		}
		return Job{}, fmt.Errorf("create import job: %w", err)
	}
	return job, nil
}

func (r *Repo) GetJob(ctx context.Context, id uuid.UUID) (Job, error) {
	job, err := scanJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM import_jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Job{}, apperr.NotFound(jobNotFoundMessage)
	}
	if err != nil {
		return Job{}, fmt.Errorf("get import job: %w", err)
	}
	return job, nil
}

func (r *Repo) ClaimJob(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE import_jobs SET status = 'running', updated_at = now()
		WHERE id = $1 AND status = 'queued'`, id)
	if err != nil {
		return false, fmt.Errorf("claim import job: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repo) CompleteJob(ctx context.Context, id uuid.UUID, result JobResult) error {
	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	encoded, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("encode job errors: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		UPDATE import_jobs SET
			status = 'completed',
			imported = $2,
			skipped = $3,
			total = $4,
			errors = $5,
			updated_at = now()
		WHERE id = $1`,
		id, result.Imported, result.Skipped, result.Total, encoded,
	)
	if err != nil {
		return fmt.Errorf("complete import job: %w", err)
	}
	return nil
}

func (r *Repo) FailJob(ctx context.Context, id uuid.UUID, failure string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE import_jobs SET status = 'failed', failure = $2, updated_at = now()
		WHERE id = $1`, id, failure)
	if err != nil {
		return fmt.Errorf("fail import job: %w", err)
	}
	return nil
}

// WithImportLock runs fn while holding a Postgres advisory lock, so only one
// import reconciles at a time across all API and worker processes.
func (r *Repo) WithImportLock(ctx context.Context, fn func(ctx context.Context) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection for import lock: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, importLockKey); err != nil {
		return fmt.Errorf("take import lock: %w", err)
	}
	defer func() {
		_, _ = conn.Exec(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, importLockKey)
	}()

	return fn(ctx)
}

func scanJob(row pgx.Row) (Job, error) {
	var (
		job     Job
		mapping []byte
		errs    []byte
	)
	err := row.Scan(
		&job.ID, &job.FileName, &job.ObjectKey, &job.Status, &mapping, &job.SkipDuplicates, &job.GroupID,
		&job.RequestedBy, &job.Imported, &job.Skipped, &job.Total, &errs, &job.Failure,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return Job{}, err
	}
	if err := json.Unmarshal(mapping, &job.Mapping); err != nil {
		return Job{}, fmt.Errorf("decode mapping: %w", err)
	}
	if err := json.Unmarshal(errs, &job.Errors); err != nil {
		return Job{}, fmt.Errorf("decode job errors: %w", err)
	}
	return job, nil
}
