// Package repository reads dashboard aggregates.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Totals are the headline counters.
type Totals struct {
	Leads      int
	Calls      int
	CallsSince int
	Booked     int
}

// Bucket is a label with a count.
type Bucket struct {
	Label string
	Count int
}

// DayCalls aggregates the calls of one UTC day.
type DayCalls struct {
	Day             time.Time
	Total           int
	Reached         int
	DurationSeconds int
}

// Repository defines the aggregate queries.
type Repository interface {
	Totals(ctx context.Context, since time.Time) (Totals, error)
	LeadsByStatus(ctx context.Context) ([]Bucket, error)
	LeadsByProduct(ctx context.Context) ([]Bucket, error)
	TopIndustries(ctx context.Context, limit int) ([]Bucket, error)
	BookedByIndustry(ctx context.Context) ([]Bucket, error)
	CallsByDay(ctx context.Context, since time.Time) ([]DayCalls, error)
}

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new stats repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) Totals(ctx context.Context, since time.Time) (Totals, error) {
	var t Totals
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM leads),
			(SELECT COUNT(*) FROM calls),
			(SELECT COUNT(*) FROM calls WHERE called_at >= $1),
			(SELECT COUNT(*) FROM leads WHERE status = 'booked')`, since,
	).Scan(&t.Leads, &t.Calls, &t.CallsSince, &t.Booked)
	if err != nil {
		return Totals{}, fmt.Errorf("stats totals: %w", err)
	}
	return t, nil
}

func (r *Repo) LeadsByStatus(ctx context.Context) ([]Bucket, error) {
	return r.buckets(ctx, "leads by status", `
		SELECT status, COUNT(*) FROM leads GROUP BY status ORDER BY status`)
}

func (r *Repo) LeadsByProduct(ctx context.Context) ([]Bucket, error) {
	return r.buckets(ctx, "leads by product", `
		SELECT product, COUNT(*) FROM leads WHERE product IS NOT NULL GROUP BY product ORDER BY product`)
}

func (r *Repo) TopIndustries(ctx context.Context, limit int) ([]Bucket, error) {
	return r.buckets(ctx, "top industries", `
		SELECT industry, COUNT(*) FROM leads
		WHERE industry IS NOT NULL
		GROUP BY industry
		ORDER BY COUNT(*) DESC, industry
		LIMIT $1`, limit)
}

func (r *Repo) BookedByIndustry(ctx context.Context) ([]Bucket, error) {
	return r.buckets(ctx, "booked by industry", `
		SELECT industry, COUNT(*) FROM leads
		WHERE industry IS NOT NULL AND status = 'booked'
		GROUP BY industry
		ORDER BY COUNT(*) DESC, industry`)
}

// CallsByDay returns only days that have calls; the caller fills the gaps.
func (r *Repo) CallsByDay(ctx context.Context, since time.Time) ([]DayCalls, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			date_trunc('day', called_at AT TIME ZONE 'UTC') AS day,
			COUNT(*),
			COUNT(*) FILTER (WHERE outcome = 'reached'),
			COALESCE(SUM(duration_seconds), 0)
		FROM calls
		WHERE called_at >= $1
		GROUP BY day
		ORDER BY day`, since)
	if err != nil {
		return nil, fmt.Errorf("calls by day: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (DayCalls, error) {
		var d DayCalls
		err := row.Scan(&d.Day, &d.Total, &d.Reached, &d.DurationSeconds)
		return d, err
	})
}

func (r *Repo) buckets(ctx context.Context, op, query string, args ...any) ([]Bucket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Bucket, error) {
		var b Bucket
		err := row.Scan(&b.Label, &b.Count)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
