package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresGetSubscriptionByEmailMissing(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT .* FROM subscriptions WHERE email`).
		WithArgs("nobody@nowhere.com").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetSubscriptionByEmail(context.Background(), "nobody@nowhere.com")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateOrderStatusNotFound(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec(`UPDATE orders SET status`).
		WithArgs("approved", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateOrderStatus(context.Background(), "missing", model.OrderApproved)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSubscriptionCounts(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\),`).
		WillReturnRows(pgxmock.NewRows([]string{"total", "today", "week", "month"}).
			AddRow(42, 3, 11, 25))

	counts, err := s.SubscriptionCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &SubscriptionCounts{Total: 42, Today: 3, ThisWeek: 11, ThisMonth: 25}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCountPendingContacts(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contacts WHERE status = 'pending'`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := s.CountPendingContacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
