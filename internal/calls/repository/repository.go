package repository

import (
	"context"
	"errors"
	"fmt"

	"leadcall_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgForeignKeyViolation = "23503"

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new calls repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) Create(ctx context.Context, params CreateParams) (Call, error) {
	query := `
		WITH inserted AS (
			INSERT INTO calls (lead_id, called_at, duration_seconds, outcome, note, external_sid)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, lead_id, called_at, duration_seconds, outcome, note, external_sid
		)
		SELECT i.id, i.lead_id, i.called_at, i.duration_seconds, i.outcome, i.note, i.external_sid,
			l.company_name, l.contact_name
		FROM inserted i
		JOIN leads l ON l.id = i.lead_id`

	row := r.pool.QueryRow(ctx, query,
		params.LeadID, params.CalledAt, params.DurationSeconds, params.Outcome, params.Note, params.ExternalSID,
	)
	call, err := scanCall(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return Call{}, apperr.NotFound("lead not found")
		}
		return Call{}, fmt.Errorf("create call: %w", err)
	}
	return call, nil
}

// List returns calls newest first, optionally for one lead.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Call, error) {
	query := `
		SELECT c.id, c.lead_id, c.called_at, c.duration_seconds, c.outcome, c.note, c.external_sid,
			l.company_name, l.contact_name
		FROM calls c
		JOIN leads l ON l.id = c.lead_id
		WHERE ($1::uuid IS NULL OR c.lead_id = $1)
		ORDER BY c.called_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, params.LeadID, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	calls := make([]Call, 0)
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		calls = append(calls, call)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return calls, nil
}

func scanCall(row pgx.Row) (Call, error) {
	var c Call
	err := row.Scan(
		&c.ID, &c.LeadID, &c.CalledAt, &c.DurationSeconds, &c.Outcome, &c.Note, &c.ExternalSID,
		&c.LeadCompanyName, &c.LeadContactName,
	)
	return c, err
}
