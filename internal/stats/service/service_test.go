package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"leadcall_backend/internal/stats/repository"
	"leadcall_backend/platform/logger"
)

type fakeRepo struct {
	since    time.Time
	daysFrom time.Time
	days     []repository.DayCalls
	err      error
}

func (f *fakeRepo) Totals(_ context.Context, since time.Time) (repository.Totals, error) {
	f.since = since
	return repository.Totals{Leads: 3, Calls: 10, CallsSince: 2, Booked: 1}, nil
}

func (f *fakeRepo) LeadsByStatus(context.Context) ([]repository.Bucket, error) {
	return []repository.Bucket{{Label: "booked", Count: 1}, {Label: "new", Count: 2}}, nil
}

func (f *fakeRepo) LeadsByProduct(context.Context) ([]repository.Bucket, error) {
	return nil, nil
}

func (f *fakeRepo) TopIndustries(context.Context, int) ([]repository.Bucket, error) {
	return []repository.Bucket{{Label: "IT", Count: 3}}, f.err
}

func (f *fakeRepo) BookedByIndustry(context.Context) ([]repository.Bucket, error) {
	return []repository.Bucket{{Label: "IT", Count: 1}}, nil
}

func (f *fakeRepo) CallsByDay(_ context.Context, since time.Time) ([]repository.DayCalls, error) {
	f.daysFrom = since
	return f.days, nil
}

func newTestService(repo *fakeRepo) *Service {
	svc := New(repo, logger.NewWriter("production", io.Discard))
	svc.now = func() time.Time { return time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC) }
	return svc
}

func TestGetAssemblesDashboard(t *testing.T) {
	repo := &fakeRepo{days: []repository.DayCalls{
		{Day: time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), Total: 4, Reached: 2, DurationSeconds: 300},
		{Day: time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), Total: 2, Reached: 1, DurationSeconds: 60},
	}}
	svc := newTestService(repo)

	resp, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if !repo.since.Equal(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("today counter must start at midnight, got %v", repo.since)
	}
	if !repo.daysFrom.Equal(time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("chart must cover seven days, got start %v", repo.daysFrom)
	}
	if resp.Overview.ConversionRate != 33.3 {
		t.Fatalf("expected conversion rate 33.3, got %v", resp.Overview.ConversionRate)
	}

	if len(resp.CallsByDay) != 7 {
		t.Fatalf("expected 7 chart days, got %d", len(resp.CallsByDay))
	}
	first, last := resp.CallsByDay[0], resp.CallsByDay[6]
	if first.Date != "2026-05-04" || first.Total != 4 || first.DurationSeconds != 300 {
		t.Fatalf("unexpected first day: %+v", first)
	}
	if last.Date != "2026-05-10" || last.Reached != 1 {
		t.Fatalf("unexpected last day: %+v", last)
	}
	if resp.CallsByDay[3].Total != 0 {
		t.Fatalf("gap days must be zero, got %+v", resp.CallsByDay[3])
	}
	if resp.LeadsByProduct == nil {
		t.Fatal("empty lists must encode as []")
	}
}

func TestGetPropagatesQueryError(t *testing.T) {
	svc := newTestService(&fakeRepo{err: errors.New("boom")})
	if _, err := svc.Get(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestConversionRate(t *testing.T) {
	tests := []struct {
		booked, total int
		want          float64
	}{
		{0, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := conversionRate(tt.booked, tt.total); got != tt.want {
			t.Errorf("conversionRate(%d, %d) = %v, want %v", tt.booked, tt.total, got, tt.want)
		}
	}
}
