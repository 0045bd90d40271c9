package repository

import (
	"context"
	"errors"
	"fmt"

	"leadcall_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const groupNotFoundMessage = "group not found"

const groupColumns = `
	g.id, g.name, g.description, g.color,
	(SELECT COUNT(*) FROM leads l WHERE l.group_id = g.id) AS lead_count,
	g.created_at, g.updated_at`

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new groups repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func (r *Repo) List(ctx context.Context) ([]Group, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+groupColumns+` FROM groups g ORDER BY g.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := make([]Group, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}

func (r *Repo) CountUngrouped(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads WHERE group_id IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count ungrouped leads: %w", err)
	}
	return count, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Group, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups g WHERE g.id = $1`, id)
	g, err := scanGroup(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, apperr.NotFound(groupNotFoundMessage)
	}
	if err != nil {
		return Group{}, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

// StatusCounts returns the number of leads per status inside a group.
func (r *Repo) StatusCounts(ctx context.Context, id uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM leads
		WHERE group_id = $1
		GROUP BY status`, id)
	if err != nil {
		return nil, fmt.Errorf("group status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *Repo) Create(ctx context.Context, params CreateParams) (Group, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO groups (name, description, color)
		VALUES ($1, $2, $3)
		RETURNING id`,
		params.Name, params.Description, params.Color,
	).Scan(&id)
	if err != nil {
		return Group{}, fmt.Errorf("create group: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) Update(ctx context.Context, params UpdateParams) (Group, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE groups SET
			name = COALESCE($2, name),
			description = CASE WHEN $3::boolean THEN $4 ELSE description END,
			color = COALESCE($5, color),
			updated_at = now()
		WHERE id = $1`,
		params.ID, params.Name, params.DescriptionSet, params.Description, params.Color,
	)
	if err != nil {
		return Group{}, fmt.Errorf("update group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Group{}, apperr.NotFound(groupNotFoundMessage)
	}
	return r.GetByID(ctx, params.ID)
}

// Delete removes a group. Its leads stay and lose their group through the foreign key.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(groupNotFoundMessage)
	}
	return nil
}

func scanGroup(row pgx.Row) (Group, error) {
	var g Group
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Color, &g.LeadCount, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}
