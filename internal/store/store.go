package store

import (
	"context"
	"time"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

// PageFilter specifies pagination and an optional status filter for list
// operations.
type PageFilter struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// SubscriptionCounts aggregates signup totals over standard windows.
type SubscriptionCounts struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	ThisWeek  int `json:"this_week"`
	ThisMonth int `json:"this_month"`
}

// Store defines the persistence interface for the admin backend.
type Store interface {
	// Subscriptions
	CreateSubscription(ctx context.Context, sub model.Subscription) (*model.Subscription, error)
	GetSubscriptionByEmail(ctx context.Context, email string) (*model.Subscription, error)
	ListSubscriptions(ctx context.Context, filter PageFilter) ([]model.Subscription, error)

	// Contacts
	CreateContact(ctx context.Context, c model.Contact) (*model.Contact, error)
	ListContacts(ctx context.Context, filter PageFilter) ([]model.Contact, error)
	CountPendingContacts(ctx context.Context) (int, error)

	// Orders
	CreateOrder(ctx context.Context, o model.Order) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	UpdateOrderPayment(ctx context.Context, id string, paymentID string, status model.OrderStatus) error
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error

	// Bot configuration
	GetBotConfig(ctx context.Context, userID string) (*model.BotConfig, error)
	UpsertBotConfig(ctx context.Context, cfg model.BotConfig) error

	// Schedule
	ActiveBusinessHours(ctx context.Context) ([]model.BusinessHour, error)
	FutureHolidays(ctx context.Context, from time.Time) ([]model.Holiday, error)
	UpsertBusinessHours(ctx context.Context, h model.BusinessHour) error
	UpsertHoliday(ctx context.Context, h model.Holiday) error
	DeleteHoliday(ctx context.Context, date time.Time) error

	// KPI aggregates
	SubscriptionCounts(ctx context.Context) (*SubscriptionCounts, error)
	PlanDistribution(ctx context.Context) ([]model.PlanCount, error)
	SubscriptionTrends(ctx context.Context, days int) ([]model.TrendPoint, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
