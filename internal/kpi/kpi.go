// Package kpi aggregates the dashboard metrics served to the admin panel.
package kpi

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/store"
)

// Conversation-derived metrics are fixed demo values until the chat
// pipeline reports real ones.
const (
	mockConversionRate       = 0.23
	mockAvgResponseSeconds   = 45
	mockActiveConversations  = 127
	mockCustomerSatisfaction = 4.8
)

// Store is the persistence subset the aggregator needs.
type Store interface {
	SubscriptionCounts(ctx context.Context) (*store.SubscriptionCounts, error)
	PlanDistribution(ctx context.Context) ([]model.PlanCount, error)
	SubscriptionTrends(ctx context.Context, days int) ([]model.TrendPoint, error)
	CountPendingContacts(ctx context.Context) (int, error)
}

// Service computes KPI aggregates over the store.
type Service struct {
	store Store
}

// NewService creates a Service over the given store.
func NewService(s Store) *Service {
	return &Service{store: s}
}

// Overview is the dashboard payload: headline metrics plus the pending
// contact backlog.
type Overview struct {
	model.KPIMetrics
	PendingContacts int `json:"pending_contacts"`
}

// Metrics fetches the independent aggregates in parallel and assembles
// the dashboard headline block.
func (s *Service) Metrics(ctx context.Context) (*Overview, error) {
	var (
		counts  *store.SubscriptionCounts
		pending int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.store.SubscriptionCounts(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.store.CountPendingContacts(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Overview{
		KPIMetrics: model.KPIMetrics{
			TotalLeads:           counts.Total,
			LeadsToday:           counts.Today,
			LeadsThisWeek:        counts.ThisWeek,
			LeadsThisMonth:       counts.ThisMonth,
			ConversionRate:       mockConversionRate,
			AvgResponseTime:      mockAvgResponseSeconds,
			ActiveConversations:  mockActiveConversations,
			CustomerSatisfaction: mockCustomerSatisfaction,
		},
		PendingContacts: pending,
	}, nil
}

// Trends returns the per-day, per-plan signup series for the window.
func (s *Service) Trends(ctx context.Context, days int) ([]model.TrendPoint, error) {
	return s.store.SubscriptionTrends(ctx, days)
}

// PlanDistribution returns signup counts and percentages per plan.
func (s *Service) PlanDistribution(ctx context.Context) ([]model.PlanCount, error) {
	return s.store.PlanDistribution(ctx)
}
