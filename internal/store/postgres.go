package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/db"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_subscription":       `INSERT INTO subscriptions (email, name, company, phone, plan, cnae, message, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
	"get_subscription_by_email": `SELECT id, email, name, company, phone, plan, cnae, message, status, created_at, updated_at FROM subscriptions WHERE email = $1 ORDER BY created_at DESC LIMIT 1`,
	"insert_contact":            `INSERT INTO contacts (name, email, phone, subject, message, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
	"insert_order":              `INSERT INTO orders (id, customer_name, customer_email, customer_phone, customer_document, customer_company, plan, amount_cents, payment_method, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
	"get_order":                 `SELECT id, customer_name, customer_email, customer_phone, customer_document, customer_company, plan, amount_cents, payment_method, payment_id, status, created_at, updated_at FROM orders WHERE id = $1`,
	"get_bot_config":            `SELECT config, updated_at FROM bot_configurations WHERE user_id = $1`,
	"active_business_hours":     `SELECT id, day_of_week, start_time, end_time, is_active, timezone, updated_at FROM business_hours WHERE is_active = true ORDER BY day_of_week`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS subscriptions (
	id         BIGSERIAL PRIMARY KEY,
	email      TEXT NOT NULL,
	name       TEXT NOT NULL,
	company    TEXT,
	phone      TEXT,
	plan       TEXT NOT NULL,
	cnae       TEXT,
	message    TEXT,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_email ON subscriptions(email);
CREATE INDEX IF NOT EXISTS idx_subscriptions_created_at ON subscriptions(created_at);
CREATE INDEX IF NOT EXISTS idx_subscriptions_plan ON subscriptions(plan);

CREATE TABLE IF NOT EXISTS contacts (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	phone      TEXT,
	subject    TEXT NOT NULL,
	message    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_contacts_status ON contacts(status);
CREATE INDEX IF NOT EXISTS idx_contacts_created_at ON contacts(created_at);

CREATE TABLE IF NOT EXISTS orders (
	id                TEXT PRIMARY KEY,
	customer_name     TEXT NOT NULL,
	customer_email    TEXT NOT NULL,
	customer_phone    TEXT,
	customer_document TEXT NOT NULL,
	customer_company  TEXT,
	plan              TEXT NOT NULL,
	amount_cents      BIGINT NOT NULL,
	payment_method    TEXT NOT NULL,
	payment_id        TEXT,
	status            TEXT NOT NULL DEFAULT 'pending',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_orders_customer_email ON orders(customer_email);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);

CREATE TABLE IF NOT EXISTS bot_configurations (
	user_id    TEXT PRIMARY KEY,
	config     JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS business_hours (
	id          BIGSERIAL PRIMARY KEY,
	day_of_week INTEGER NOT NULL UNIQUE CHECK (day_of_week BETWEEN 0 AND 6),
	start_time  TEXT NOT NULL,
	end_time    TEXT NOT NULL,
	is_active   BOOLEAN NOT NULL DEFAULT true,
	timezone    TEXT NOT NULL DEFAULT 'America/Sao_Paulo',
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS holidays (
	id             BIGSERIAL PRIMARY KEY,
	holiday_date   DATE NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	is_working_day BOOLEAN NOT NULL DEFAULT false
);

CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(holiday_date);
`

// defaultBusinessHours seeds the standard Brazilian business week.
var defaultBusinessHours = []model.BusinessHour{
	{DayOfWeek: 1, StartTime: "09:00", EndTime: "18:00"},
	{DayOfWeek: 2, StartTime: "09:00", EndTime: "18:00"},
	{DayOfWeek: 3, StartTime: "09:00", EndTime: "18:00"},
	{DayOfWeek: 4, StartTime: "09:00", EndTime: "18:00"},
	{DayOfWeek: 5, StartTime: "09:00", EndTime: "18:00"},
	{DayOfWeek: 6, StartTime: "09:00", EndTime: "13:00"},
}

// defaultHolidays seeds the Brazilian national holiday calendar.
var defaultHolidays = []struct {
	date string
	name string
}{
	{"2025-12-25", "Natal"},
	{"2026-01-01", "Ano Novo"},
	{"2026-02-17", "Carnaval"},
	{"2026-04-03", "Sexta-feira Santa"},
	{"2026-04-21", "Tiradentes"},
	{"2026-05-01", "Dia do Trabalho"},
	{"2026-09-07", "Independência"},
	{"2026-10-12", "Nossa Senhora Aparecida"},
	{"2026-11-02", "Finados"},
	{"2026-11-15", "Proclamação da República"},
	{"2026-12-25", "Natal"},
	{"2027-01-01", "Ano Novo"},
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}

	for _, h := range defaultBusinessHours {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO business_hours (day_of_week, start_time, end_time, is_active)
			 VALUES ($1, $2, $3, true)
			 ON CONFLICT (day_of_week) DO NOTHING`,
			h.DayOfWeek, h.StartTime, h.EndTime,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: seed business hours day %d", h.DayOfWeek)
		}
	}
	for _, h := range defaultHolidays {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO holidays (holiday_date, name, is_working_day)
			 VALUES ($1, $2, false)
			 ON CONFLICT (holiday_date) DO NOTHING`,
			h.date, h.name,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: seed holiday %s", h.name)
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateSubscription(ctx context.Context, sub model.Subscription) (*model.Subscription, error) {
	now := time.Now().UTC()
	sub.Status = "pending"
	sub.CreatedAt = now
	sub.UpdatedAt = now

	err := s.pool.QueryRow(ctx,
		`INSERT INTO subscriptions (email, name, company, phone, plan, cnae, message, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		sub.Email, sub.Name, sub.Company, sub.Phone, string(sub.Plan), sub.CNAE, sub.Message, sub.Status, now, now,
	).Scan(&sub.ID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert subscription")
	}
	return &sub, nil
}

func (s *PostgresStore) GetSubscriptionByEmail(ctx context.Context, email string) (*model.Subscription, error) {
	var sub model.Subscription
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, company, phone, plan, cnae, message, status, created_at, updated_at
		 FROM subscriptions WHERE email = $1 ORDER BY created_at DESC LIMIT 1`,
		email,
	).Scan(&sub.ID, &sub.Email, &sub.Name, &sub.Company, &sub.Phone, &sub.Plan,
		&sub.CNAE, &sub.Message, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get subscription by email")
	}
	return &sub, nil
}

func (s *PostgresStore) ListSubscriptions(ctx context.Context, filter PageFilter) ([]model.Subscription, error) {
	query := `SELECT id, email, name, company, phone, plan, cnae, message, status, created_at, updated_at
	          FROM subscriptions WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list subscriptions")
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		var sub model.Subscription
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Name, &sub.Company, &sub.Phone, &sub.Plan,
			&sub.CNAE, &sub.Message, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan subscription")
		}
		subs = append(subs, sub)
	}
	return subs, eris.Wrap(rows.Err(), "postgres: list subscriptions iterate")
}

func (s *PostgresStore) CreateContact(ctx context.Context, c model.Contact) (*model.Contact, error) {
	now := time.Now().UTC()
	c.Status = "pending"
	c.CreatedAt = now
	c.UpdatedAt = now

	err := s.pool.QueryRow(ctx,
		`INSERT INTO contacts (name, email, phone, subject, message, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		c.Name, c.Email, c.Phone, c.Subject, c.Message, c.Status, now, now,
	).Scan(&c.ID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert contact")
	}
	return &c, nil
}

func (s *PostgresStore) ListContacts(ctx context.Context, filter PageFilter) ([]model.Contact, error) {
	query := `SELECT id, name, email, phone, subject, message, status, created_at, updated_at
	          FROM contacts WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Subject,
			&c.Message, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan contact")
		}
		contacts = append(contacts, c)
	}
	return contacts, eris.Wrap(rows.Err(), "postgres: list contacts iterate")
}

func (s *PostgresStore) CountPendingContacts(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM contacts WHERE status = 'pending'`,
	).Scan(&count)
	return count, eris.Wrap(err, "postgres: count pending contacts")
}

func (s *PostgresStore) CreateOrder(ctx context.Context, o model.Order) (*model.Order, error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	o.Status = model.OrderPending
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO orders (id, customer_name, customer_email, customer_phone, customer_document, customer_company,
		                     plan, amount_cents, payment_method, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.CustomerDocument, o.CustomerCompany,
		o.Plan, o.AmountCents, string(o.Method), string(o.Status), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert order")
	}
	return &o, nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	var paymentID *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, customer_name, customer_email, customer_phone, customer_document, customer_company,
		        plan, amount_cents, payment_method, payment_id, status, created_at, updated_at
		 FROM orders WHERE id = $1`,
		id,
	).Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.CustomerDocument, &o.CustomerCompany,
		&o.Plan, &o.AmountCents, &o.Method, &paymentID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get order %s", id)
	}
	if paymentID != nil {
		o.PaymentID = *paymentID
	}
	return &o, nil
}

func (s *PostgresStore) UpdateOrderPayment(ctx context.Context, id string, paymentID string, status model.OrderStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET payment_id = $1, status = $2, updated_at = $3 WHERE id = $4`,
		paymentID, string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update order payment %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("order not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update order status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("order not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) GetBotConfig(ctx context.Context, userID string) (*model.BotConfig, error) {
	var configJSON []byte
	var updatedAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT config, updated_at FROM bot_configurations WHERE user_id = $1`,
		userID,
	).Scan(&configJSON, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get bot config %s", userID)
	}

	var cfg model.BotConfig
	if err := json.Unmarshal(configJSON, &cfg); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal bot config")
	}
	cfg.UserID = userID
	cfg.UpdatedAt = updatedAt
	return &cfg, nil
}

func (s *PostgresStore) UpsertBotConfig(ctx context.Context, cfg model.BotConfig) error {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal bot config")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO bot_configurations (user_id, config, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET config = $2, updated_at = $3`,
		cfg.UserID, configJSON, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: upsert bot config")
}

func (s *PostgresStore) ActiveBusinessHours(ctx context.Context) ([]model.BusinessHour, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, day_of_week, start_time, end_time, is_active, timezone, updated_at
		 FROM business_hours WHERE is_active = true ORDER BY day_of_week`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: active business hours")
	}
	defer rows.Close()

	var hours []model.BusinessHour
	for rows.Next() {
		var h model.BusinessHour
		if err := rows.Scan(&h.ID, &h.DayOfWeek, &h.StartTime, &h.EndTime,
			&h.IsActive, &h.Timezone, &h.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan business hour")
		}
		hours = append(hours, h)
	}
	return hours, eris.Wrap(rows.Err(), "postgres: active business hours iterate")
}

func (s *PostgresStore) FutureHolidays(ctx context.Context, from time.Time) ([]model.Holiday, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, holiday_date, name, is_working_day FROM holidays
		 WHERE holiday_date >= $1 ORDER BY holiday_date`,
		from,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: future holidays")
	}
	defer rows.Close()

	var holidays []model.Holiday
	for rows.Next() {
		var h model.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.IsWorkingDay); err != nil {
			return nil, eris.Wrap(err, "postgres: scan holiday")
		}
		holidays = append(holidays, h)
	}
	return holidays, eris.Wrap(rows.Err(), "postgres: future holidays iterate")
}

func (s *PostgresStore) UpsertBusinessHours(ctx context.Context, h model.BusinessHour) error {
	tz := h.Timezone
	if tz == "" {
		tz = "America/Sao_Paulo"
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO business_hours (day_of_week, start_time, end_time, is_active, timezone, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (day_of_week) DO UPDATE SET
		   start_time = $2, end_time = $3, is_active = $4, timezone = $5, updated_at = $6`,
		h.DayOfWeek, h.StartTime, h.EndTime, h.IsActive, tz, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert business hours day %d", h.DayOfWeek)
}

func (s *PostgresStore) UpsertHoliday(ctx context.Context, h model.Holiday) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO holidays (holiday_date, name, is_working_day) VALUES ($1, $2, $3)
		 ON CONFLICT (holiday_date) DO UPDATE SET name = $2, is_working_day = $3`,
		h.Date, h.Name, h.IsWorkingDay,
	)
	return eris.Wrapf(err, "postgres: upsert holiday %s", h.Name)
}

func (s *PostgresStore) DeleteHoliday(ctx context.Context, date time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM holidays WHERE holiday_date = $1`,
		date,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: delete holiday")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("holiday not found: %s", date.Format("2006-01-02"))
	}
	return nil
}

func (s *PostgresStore) SubscriptionCounts(ctx context.Context) (*SubscriptionCounts, error) {
	var c SubscriptionCounts
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now())),
		        COUNT(*) FILTER (WHERE created_at >= now() - interval '7 days'),
		        COUNT(*) FILTER (WHERE created_at >= date_trunc('month', now()))
		 FROM subscriptions`,
	).Scan(&c.Total, &c.Today, &c.ThisWeek, &c.ThisMonth)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: subscription counts")
	}
	return &c, nil
}

func (s *PostgresStore) PlanDistribution(ctx context.Context) ([]model.PlanCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT plan, COUNT(*) FROM subscriptions GROUP BY plan ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: plan distribution")
	}
	defer rows.Close()

	var counts []model.PlanCount
	for rows.Next() {
		var pc model.PlanCount
		if err := rows.Scan(&pc.Plan, &pc.Count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan plan count")
		}
		counts = append(counts, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: plan distribution iterate")
	}
	return withPercentages(counts), nil
}

func (s *PostgresStore) SubscriptionTrends(ctx context.Context, days int) ([]model.TrendPoint, error) {
	if days <= 0 {
		days = 30
	}
	rows, err := s.pool.Query(ctx,
		`SELECT date_trunc('day', created_at) AS day, plan, COUNT(*)
		 FROM subscriptions
		 WHERE created_at >= now() - make_interval(days => $1)
		 GROUP BY day, plan ORDER BY day`,
		days,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: subscription trends")
	}
	defer rows.Close()

	var points []model.TrendPoint
	for rows.Next() {
		var p model.TrendPoint
		if err := rows.Scan(&p.Date, &p.Plan, &p.Count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan trend point")
		}
		points = append(points, p)
	}
	return points, eris.Wrap(rows.Err(), "postgres: subscription trends iterate")
}

// withPercentages annotates plan counts with their share of the total.
func withPercentages(counts []model.PlanCount) []model.PlanCount {
	total := 0
	for _, pc := range counts {
		total += pc.Count
	}
	if total == 0 {
		return counts
	}
	for i := range counts {
		counts[i].Percentage = float64(counts[i].Count) * 100 / float64(total)
	}
	return counts
}
