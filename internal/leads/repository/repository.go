package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"leadcall_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMessage = "lead not found"

const (
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// sortColumns maps API sort keys to SQL expressions.
var sortColumns = map[string]string{
	"createdAt":    "l.created_at",
	"updatedAt":    "l.updated_at",
	"companyName":  "l.company_name",
	"status":       "l.status",
	"lastCallAt":   "l.last_call_at",
	"callAttempts": "l.call_attempts",
}

// updatableColumns whitelists the columns UpdateParams may touch.
var updatableColumns = map[string]bool{
	"company_name": true,
	"contact_name": true,
	"salutation":   true,
	"phone":        true,
	"email":        true,
	"website":      true,
	"industry":     true,
	"city":         true,
	"status":       true,
	"product":      true,
	"notes":        true,
	"group_id":     true,
}

const leadColumns = `
	l.id, l.company_name, l.contact_name, l.salutation, l.phone, l.email, l.website, l.industry, l.city,
	l.status, l.product, l.notes, l.call_attempts, l.last_call_at, l.group_id, l.created_at, l.updated_at`

const latestCallJoin = `
	LEFT JOIN LATERAL (
		SELECT c.id, c.called_at, c.outcome, c.duration_seconds, c.note
		FROM calls c
		WHERE c.lead_id = l.id
		ORDER BY c.called_at DESC
		LIMIT 1
	) lc ON true`

const listFilter = `
	WHERE ($1::text IS NULL OR l.status = $1)
		AND ($2::text IS NULL OR l.industry = $2)
		AND ($3::text IS NULL OR l.product = $3)
		AND ($4::uuid IS NULL OR l.group_id = $4)
		AND (NOT $5::boolean OR l.group_id IS NULL)
		AND ($6::text IS NULL
			OR l.company_name ILIKE $6
			OR l.contact_name ILIKE $6
			OR l.phone ILIKE $6
			OR l.email ILIKE $6
			OR l.city ILIKE $6)`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a lead with its latest call.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := `SELECT ` + leadColumns + `,
		lc.id, lc.called_at, lc.outcome, lc.duration_seconds, lc.note
		FROM leads l` + latestCallJoin + `
		WHERE l.id = $1`

	lead, err := scanLeadWithCall(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead by id: %w", err)
	}
	return lead, nil
}

// List retrieves a filtered, sorted page of leads and the total match count.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	sortExpr, ok := sortColumns[params.SortBy]
	if !ok {
		if params.SortBy != "" {
			return nil, 0, apperr.BadRequest("invalid sort field")
		}
		sortExpr = sortColumns["createdAt"]
	}

	sortOrder := "DESC"
	switch strings.ToLower(params.SortOrder) {
	case "", "desc":
	case "asc":
		sortOrder = "ASC"
	default:
		return nil, 0, apperr.BadRequest("invalid sort order")
	}

	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + escapeLike(params.Search) + "%"
	}
	args := []interface{}{params.Status, params.Industry, params.Product, params.GroupID, params.Ungrouped, searchParam}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads l`+listFilter, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s,
		lc.id, lc.called_at, lc.outcome, lc.duration_seconds, lc.note
		FROM leads l %s %s
		ORDER BY %s %s NULLS LAST, l.id ASC
		LIMIT $7 OFFSET $8`, leadColumns, latestCallJoin, listFilter, sortExpr, sortOrder)

	args = append(args, params.Limit, params.Offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLeadWithCall(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate leads: %w", err)
	}

	return items, total, nil
}

// FindByPhone returns the oldest lead with exactly this canonical phone, or nil.
func (r *Repo) FindByPhone(ctx context.Context, phone string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads l WHERE l.phone = $1 ORDER BY l.created_at ASC LIMIT 1`

	lead, err := scanLead(r.pool.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find lead by phone: %w", err)
	}
	return &lead, nil
}

// ListIndustries returns the distinct non-null industries in ascending order.
func (r *Repo) ListIndustries(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT industry FROM leads WHERE industry IS NOT NULL ORDER BY industry ASC`)
	if err != nil {
		return nil, fmt.Errorf("list industries: %w", err)
	}
	defer rows.Close()

	industries, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect industries: %w", err)
	}
	return industries, nil
}

// Create inserts a lead.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Lead, error) {
	query := `
		INSERT INTO leads AS l (company_name, contact_name, salutation, phone, email, website, industry, city, status, product, notes, group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + leadColumns

	lead, err := scanLead(r.pool.QueryRow(ctx, query,
		params.CompanyName, params.ContactName, params.Salutation, params.Phone, params.Email, params.Website,
		params.Industry, params.City, params.Status, params.Product, params.Notes, params.GroupID,
	))
	if err != nil {
		return Lead{}, translateWriteError("create lead", err)
	}
	return lead, nil
}

// Update applies the listed column changes and bumps updated_at.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Lead, error) {
	if len(params.Fields) == 0 {
		return r.GetByID(ctx, params.ID)
	}

	columns := make([]string, 0, len(params.Fields))
	for column := range params.Fields {
		if !updatableColumns[column] {
			return Lead{}, fmt.Errorf("update lead: column %q not updatable", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	sets := make([]string, 0, len(columns)+1)
	args := []interface{}{params.ID}
	for _, column := range columns {
		args = append(args, params.Fields[column])
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf(`UPDATE leads AS l SET %s WHERE l.id = $1 RETURNING %s`, strings.Join(sets, ", "), leadColumns)
	if _, err := scanLead(r.pool.QueryRow(ctx, query, args...)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, translateWriteError("update lead", err)
	}
	return r.GetByID(ctx, params.ID)
}

// Delete removes a lead; its calls go with it.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}
	return nil
}

// BulkUpdate applies the same change set to every listed lead.
func (r *Repo) BulkUpdate(ctx context.Context, ids []uuid.UUID, params BulkUpdateParams) (int, error) {
	query := `
		UPDATE leads SET
			status = COALESCE($2, status),
			product = COALESCE($3, product),
			group_id = CASE WHEN $5::boolean THEN $4 ELSE group_id END,
			updated_at = now()
		WHERE id = ANY($1)`

	tag, err := r.pool.Exec(ctx, query, ids, params.Status, params.Product, params.GroupID, params.GroupIDSet)
	if err != nil {
		return 0, translateWriteError("bulk update leads", err)
	}
	return int(tag.RowsAffected()), nil
}

// BulkDelete removes every listed lead.
func (r *Repo) BulkDelete(ctx context.Context, ids []uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("bulk delete leads: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// RecordCall increments the attempt counter and stamps the last call.
// Status, product and notes change only when provided.
func (r *Repo) RecordCall(ctx context.Context, params RecordCallParams) error {
	query := `
		UPDATE leads SET
			call_attempts = call_attempts + 1,
			last_call_at = $2,
			status = COALESCE($3, status),
			product = COALESCE($4, product),
			notes = COALESCE($5, notes),
			updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, params.LeadID, params.CalledAt, params.Status, params.Product, params.Notes)
	if err != nil {
		return fmt.Errorf("record call on lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}
	return nil
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.CompanyName, &l.ContactName, &l.Salutation, &l.Phone, &l.Email, &l.Website, &l.Industry, &l.City,
		&l.Status, &l.Product, &l.Notes, &l.CallAttempts, &l.LastCallAt, &l.GroupID, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func scanLeadWithCall(row pgx.Row) (Lead, error) {
	var l Lead
	var (
		callID       *uuid.UUID
		callAt       *time.Time
		callOutcome  *string
		callDuration *int
		callNote     *string
	)
	err := row.Scan(
		&l.ID, &l.CompanyName, &l.ContactName, &l.Salutation, &l.Phone, &l.Email, &l.Website, &l.Industry, &l.City,
		&l.Status, &l.Product, &l.Notes, &l.CallAttempts, &l.LastCallAt, &l.GroupID, &l.CreatedAt, &l.UpdatedAt,
		&callID, &callAt, &callOutcome, &callDuration, &callNote,
	)
	if err != nil {
		return Lead{}, err
	}
	if callID != nil && callAt != nil && callOutcome != nil {
		l.LastCall = &LastCall{
			ID:              *callID,
			CalledAt:        *callAt,
			Outcome:         *callOutcome,
			DurationSeconds: callDuration,
			Note:            callNote,
		}
	}
	return l, nil
}

// translateWriteError maps constraint violations to domain errors.
func translateWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return apperr.BadRequest("group not found").WithOp(op)
		case pgCheckViolation:
			return apperr.Validation("invalid field value").WithOp(op)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
