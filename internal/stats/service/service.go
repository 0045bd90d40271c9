// Package service assembles the dashboard statistics.
package service

import (
	"context"
	"math"
	"time"

	"leadcall_backend/internal/stats/repository"
	"leadcall_backend/internal/stats/transport"
	"leadcall_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

const (
	topIndustries = 10
	chartDays     = 7
)

// Service computes dashboard statistics.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
	now  func() time.Time
}

// New creates a new stats service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// Get runs all aggregate queries concurrently and assembles the dashboard.
func (s *Service) Get(ctx context.Context) (transport.StatsResponse, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	firstDay := today.AddDate(0, 0, -(chartDays - 1))

	var (
		totals     repository.Totals
		byStatus   []repository.Bucket
		byProduct  []repository.Bucket
		industries []repository.Bucket
		booked     []repository.Bucket
		days       []repository.DayCalls
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.repo.Totals(gctx, today)
		return err
	})
	g.Go(func() (err error) {
		byStatus, err = s.repo.LeadsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		byProduct, err = s.repo.LeadsByProduct(gctx)
		return err
	})
	g.Go(func() (err error) {
		industries, err = s.repo.TopIndustries(gctx, topIndustries)
		return err
	})
	g.Go(func() (err error) {
		booked, err = s.repo.BookedByIndustry(gctx)
		return err
	})
	g.Go(func() (err error) {
		days, err = s.repo.CallsByDay(gctx, firstDay)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.WithContext(ctx).Error("stats query failed", "error", err)
		return transport.StatsResponse{}, err
	}

	resp := transport.StatsResponse{
		Overview: transport.Overview{
			TotalLeads:      totals.Leads,
			TotalCalls:      totals.Calls,
			TotalCallsToday: totals.CallsSince,
			TotalBooked:     totals.Booked,
			ConversionRate:  conversionRate(totals.Booked, totals.Leads),
		},
		LeadsByStatus:   make([]transport.StatusCount, 0, len(byStatus)),
		LeadsByProduct:  make([]transport.ProductCount, 0, len(byProduct)),
		LeadsByIndustry: make([]transport.IndustryCount, 0, len(industries)),
		CallsByDay:      callChart(firstDay, days),
		IndustryStats:   make([]transport.IndustryBooked, 0, len(booked)),
	}
	for _, b := range byStatus {
		resp.LeadsByStatus = append(resp.LeadsByStatus, transport.StatusCount{Status: b.Label, Count: b.Count})
	}
	for _, b := range byProduct {
		resp.LeadsByProduct = append(resp.LeadsByProduct, transport.ProductCount{Product: b.Label, Count: b.Count})
	}
	for _, b := range industries {
		resp.LeadsByIndustry = append(resp.LeadsByIndustry, transport.IndustryCount{Industry: b.Label, Count: b.Count})
	}
	for _, b := range booked {
		resp.IndustryStats = append(resp.IndustryStats, transport.IndustryBooked{Industry: b.Label, Booked: b.Count})
	}
	return resp, nil
}

// conversionRate is booked/total in percent with one decimal.
func conversionRate(booked, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(booked)/float64(total)*1000) / 10
}

// callChart returns chartDays entries, oldest first, with empty days filled in.
func callChart(firstDay time.Time, days []repository.DayCalls) []transport.DayCalls {
	byDate := make(map[string]repository.DayCalls, len(days))
	for _, d := range days {
		byDate[d.Day.UTC().Format(time.DateOnly)] = d
	}

	chart := make([]transport.DayCalls, 0, chartDays)
	for i := 0; i < chartDays; i++ {
		date := firstDay.AddDate(0, 0, i).Format(time.DateOnly)
		d := byDate[date]
		chart = append(chart, transport.DayCalls{
			Date:            date,
			Total:           d.Total,
			Reached:         d.Reached,
			DurationSeconds: d.DurationSeconds,
		})
	}
	return chart
}
