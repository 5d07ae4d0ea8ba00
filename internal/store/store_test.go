package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateAndGetSubscription", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		sub, err := s.CreateSubscription(ctx, model.Subscription{
			Email:   "joao@empresa.com.br",
			Name:    "João Silva",
			Company: "Empresa LTDA",
			Phone:   "11987654321",
			Plan:    model.PlanPro,
			CNAE:    "6201501",
		})
		require.NoError(t, err)
		assert.NotZero(t, sub.ID)
		assert.Equal(t, "pending", sub.Status)

		got, err := s.GetSubscriptionByEmail(ctx, "joao@empresa.com.br")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, sub.ID, got.ID)
		assert.Equal(t, "João Silva", got.Name)
		assert.Equal(t, model.PlanPro, got.Plan)
	})

	t.Run("GetSubscriptionByEmailMissing", func(t *testing.T) {
		s := newStore(t)

		got, err := s.GetSubscriptionByEmail(context.Background(), "nobody@nowhere.com")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ListSubscriptions", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
			_, err := s.CreateSubscription(ctx, model.Subscription{
				Email: email, Name: "N", Plan: model.PlanBasic,
			})
			require.NoError(t, err)
		}

		all, err := s.ListSubscriptions(ctx, PageFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		page, err := s.ListSubscriptions(ctx, PageFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, page, 1)

		pending, err := s.ListSubscriptions(ctx, PageFilter{Status: "pending"})
		require.NoError(t, err)
		assert.Len(t, pending, 3)

		none, err := s.ListSubscriptions(ctx, PageFilter{Status: "active"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("CreateAndListContacts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		c, err := s.CreateContact(ctx, model.Contact{
			Name:    "Maria",
			Email:   "maria@cliente.com",
			Subject: "Dúvida sobre planos",
			Message: "Qual a diferença entre pro e enterprise?",
		})
		require.NoError(t, err)
		assert.NotZero(t, c.ID)
		assert.Equal(t, "pending", c.Status)

		list, err := s.ListContacts(ctx, PageFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Dúvida sobre planos", list[0].Subject)

		pending, err := s.CountPendingContacts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, pending)
	})

	t.Run("OrderLifecycle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		o, err := s.CreateOrder(ctx, model.Order{
			CustomerName:     "Carlos",
			CustomerEmail:    "carlos@loja.com",
			CustomerDocument: "12345678901",
			Plan:             "pro",
			AmountCents:      19700,
			Method:           model.PaymentPIX,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, o.ID)
		assert.Equal(t, model.OrderPending, o.Status)

		require.NoError(t, s.UpdateOrderPayment(ctx, o.ID, "pix-abc123", model.OrderPending))
		require.NoError(t, s.UpdateOrderStatus(ctx, o.ID, model.OrderApproved))

		got, err := s.GetOrder(ctx, o.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "pix-abc123", got.PaymentID)
		assert.Equal(t, model.OrderApproved, got.Status)
		assert.Equal(t, int64(19700), got.AmountCents)
	})

	t.Run("OrderNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		got, err := s.GetOrder(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)

		err = s.UpdateOrderStatus(ctx, "missing", model.OrderApproved)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("BotConfigRoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		got, err := s.GetBotConfig(ctx, "user-1")
		require.NoError(t, err)
		assert.Nil(t, got, "unsaved user has no stored config")

		cfg := model.DefaultBotConfig()
		cfg.UserID = "user-1"
		cfg.BotName = "Atendente Zé"
		require.NoError(t, s.UpsertBotConfig(ctx, cfg))

		got, err = s.GetBotConfig(ctx, "user-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Atendente Zé", got.BotName)
		assert.Equal(t, "America/Sao_Paulo", got.WorkingHours.Timezone)
		assert.True(t, got.BusinessRules.AutoQualifyLeads)

		// Upsert overwrites.
		cfg.BotName = "Atendente Ana"
		require.NoError(t, s.UpsertBotConfig(ctx, cfg))
		got, err = s.GetBotConfig(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "Atendente Ana", got.BotName)
	})

	t.Run("MigrateSeedsSchedule", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		hours, err := s.ActiveBusinessHours(ctx)
		require.NoError(t, err)
		require.Len(t, hours, 6, "monday through saturday")
		assert.Equal(t, 1, hours[0].DayOfWeek)
		assert.Equal(t, "09:00", hours[0].StartTime)
		assert.Equal(t, "18:00", hours[0].EndTime)
		assert.Equal(t, "13:00", hours[5].EndTime, "saturday closes at lunch")

		holidays, err := s.FutureHolidays(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.NotEmpty(t, holidays)
		assert.Equal(t, "Ano Novo", holidays[0].Name)

		// Migrate is idempotent; seeds do not duplicate.
		require.NoError(t, s.Migrate(ctx))
		hours, err = s.ActiveBusinessHours(ctx)
		require.NoError(t, err)
		assert.Len(t, hours, 6)
	})

	t.Run("UpsertBusinessHours", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.UpsertBusinessHours(ctx, model.BusinessHour{
			DayOfWeek: 1, StartTime: "08:00", EndTime: "17:00", IsActive: true,
		}))

		hours, err := s.ActiveBusinessHours(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, hours)
		assert.Equal(t, "08:00", hours[0].StartTime)
		assert.Equal(t, "17:00", hours[0].EndTime)

		// Deactivating removes the day from the active set.
		require.NoError(t, s.UpsertBusinessHours(ctx, model.BusinessHour{
			DayOfWeek: 1, StartTime: "08:00", EndTime: "17:00", IsActive: false,
		}))
		hours, err = s.ActiveBusinessHours(ctx)
		require.NoError(t, err)
		for _, h := range hours {
			assert.NotEqual(t, 1, h.DayOfWeek)
		}
	})

	t.Run("HolidayUpsertAndDelete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		day := time.Date(2026, time.July, 9, 0, 0, 0, 0, time.UTC)
		require.NoError(t, s.UpsertHoliday(ctx, model.Holiday{
			Date: day, Name: "Revolução Constitucionalista",
		}))

		holidays, err := s.FutureHolidays(ctx, day)
		require.NoError(t, err)
		require.NotEmpty(t, holidays)
		assert.Equal(t, "Revolução Constitucionalista", holidays[0].Name)
		assert.Equal(t, day, holidays[0].Date)

		require.NoError(t, s.DeleteHoliday(ctx, day))
		err = s.DeleteHoliday(ctx, day)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("SubscriptionCounts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		counts, err := s.SubscriptionCounts(ctx)
		require.NoError(t, err)
		assert.Zero(t, counts.Total)

		for i := 0; i < 3; i++ {
			_, err := s.CreateSubscription(ctx, model.Subscription{
				Email: "x@y.com", Name: "N", Plan: model.PlanBasic,
			})
			require.NoError(t, err)
		}

		counts, err = s.SubscriptionCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, counts.Total)
		assert.Equal(t, 3, counts.Today)
		assert.Equal(t, 3, counts.ThisWeek)
		assert.Equal(t, 3, counts.ThisMonth)
	})

	t.Run("PlanDistribution", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, plan := range []model.Plan{model.PlanPro, model.PlanPro, model.PlanPro, model.PlanBasic} {
			_, err := s.CreateSubscription(ctx, model.Subscription{
				Email: "x@y.com", Name: "N", Plan: plan,
			})
			require.NoError(t, err)
		}

		dist, err := s.PlanDistribution(ctx)
		require.NoError(t, err)
		require.Len(t, dist, 2)
		assert.Equal(t, model.PlanPro, dist[0].Plan)
		assert.Equal(t, 3, dist[0].Count)
		assert.InDelta(t, 75.0, dist[0].Percentage, 0.001)
		assert.InDelta(t, 25.0, dist[1].Percentage, 0.001)
	})

	t.Run("SubscriptionTrends", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for i := 0; i < 2; i++ {
			_, err := s.CreateSubscription(ctx, model.Subscription{
				Email: "x@y.com", Name: "N", Plan: model.PlanEnterprise,
			})
			require.NoError(t, err)
		}

		points, err := s.SubscriptionTrends(ctx, 30)
		require.NoError(t, err)
		require.Len(t, points, 1, "same plan on the same day buckets together")
		assert.Equal(t, model.PlanEnterprise, points[0].Plan)
		assert.Equal(t, 2, points[0].Count)
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}
