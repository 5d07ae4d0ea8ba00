package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS subscriptions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	email      TEXT NOT NULL,
	name       TEXT NOT NULL,
	company    TEXT,
	phone      TEXT,
	plan       TEXT NOT NULL,
	cnae       TEXT,
	message    TEXT,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS contacts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	phone      TEXT,
	subject    TEXT NOT NULL,
	message    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS orders (
	id                TEXT PRIMARY KEY,
	customer_name     TEXT NOT NULL,
	customer_email    TEXT NOT NULL,
	customer_phone    TEXT,
	customer_document TEXT NOT NULL,
	customer_company  TEXT,
	plan              TEXT NOT NULL,
	amount_cents      INTEGER NOT NULL,
	payment_method    TEXT NOT NULL,
	payment_id        TEXT,
	status            TEXT NOT NULL DEFAULT 'pending',
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS bot_configurations (
	user_id    TEXT PRIMARY KEY,
	config     TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS business_hours (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	day_of_week INTEGER NOT NULL UNIQUE CHECK (day_of_week BETWEEN 0 AND 6),
	start_time  TEXT NOT NULL,
	end_time    TEXT NOT NULL,
	is_active   BOOLEAN NOT NULL DEFAULT 1,
	timezone    TEXT NOT NULL DEFAULT 'America/Sao_Paulo',
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS holidays (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	holiday_date   TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	is_working_day BOOLEAN NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_email ON subscriptions(email);
CREATE INDEX IF NOT EXISTS idx_subscriptions_created_at ON subscriptions(created_at);
CREATE INDEX IF NOT EXISTS idx_contacts_status ON contacts(status);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(holiday_date);
`

const sqliteDateOnly = "2006-01-02"

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}

	for _, h := range defaultBusinessHours {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO business_hours (day_of_week, start_time, end_time, is_active)
			 VALUES (?, ?, ?, 1)`,
			h.DayOfWeek, h.StartTime, h.EndTime,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: seed business hours day %d", h.DayOfWeek)
		}
	}
	for _, h := range defaultHolidays {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO holidays (holiday_date, name, is_working_day) VALUES (?, ?, 0)`,
			h.date, h.name,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: seed holiday %s", h.name)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSubscription(ctx context.Context, sub model.Subscription) (*model.Subscription, error) {
	now := time.Now().UTC()
	sub.Status = "pending"
	sub.CreatedAt = now
	sub.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (email, name, company, phone, plan, cnae, message, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.Email, sub.Name, sub.Company, sub.Phone, string(sub.Plan), sub.CNAE, sub.Message, sub.Status, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert subscription")
	}
	sub.ID, err = res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: subscription id")
	}
	return &sub, nil
}

func (s *SQLiteStore) GetSubscriptionByEmail(ctx context.Context, email string) (*model.Subscription, error) {
	var sub model.Subscription
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, company, phone, plan, cnae, message, status, created_at, updated_at
		 FROM subscriptions WHERE email = ? ORDER BY created_at DESC LIMIT 1`,
		email,
	).Scan(&sub.ID, &sub.Email, &sub.Name, &sub.Company, &sub.Phone, &sub.Plan,
		&sub.CNAE, &sub.Message, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get subscription by email")
	}
	return &sub, nil
}

func (s *SQLiteStore) ListSubscriptions(ctx context.Context, filter PageFilter) ([]model.Subscription, error) {
	query := `SELECT id, email, name, company, phone, plan, cnae, message, status, created_at, updated_at
	          FROM subscriptions WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list subscriptions")
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		var sub model.Subscription
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Name, &sub.Company, &sub.Phone, &sub.Plan,
			&sub.CNAE, &sub.Message, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan subscription")
		}
		subs = append(subs, sub)
	}
	return subs, eris.Wrap(rows.Err(), "sqlite: list subscriptions iterate")
}

func (s *SQLiteStore) CreateContact(ctx context.Context, c model.Contact) (*model.Contact, error) {
	now := time.Now().UTC()
	c.Status = "pending"
	c.CreatedAt = now
	c.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (name, email, phone, subject, message, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Email, c.Phone, c.Subject, c.Message, c.Status, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert contact")
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: contact id")
	}
	return &c, nil
}

func (s *SQLiteStore) ListContacts(ctx context.Context, filter PageFilter) ([]model.Contact, error) {
	query := `SELECT id, name, email, phone, subject, message, status, created_at, updated_at
	          FROM contacts WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Subject,
			&c.Message, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		contacts = append(contacts, c)
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: list contacts iterate")
}

func (s *SQLiteStore) CountPendingContacts(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contacts WHERE status = 'pending'`,
	).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count pending contacts")
}

func (s *SQLiteStore) CreateOrder(ctx context.Context, o model.Order) (*model.Order, error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	o.Status = model.OrderPending
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (id, customer_name, customer_email, customer_phone, customer_document, customer_company,
		                     plan, amount_cents, payment_method, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.CustomerDocument, o.CustomerCompany,
		o.Plan, o.AmountCents, string(o.Method), string(o.Status), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert order")
	}
	return &o, nil
}

func (s *SQLiteStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	var paymentID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, customer_name, customer_email, customer_phone, customer_document, customer_company,
		        plan, amount_cents, payment_method, payment_id, status, created_at, updated_at
		 FROM orders WHERE id = ?`,
		id,
	).Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.CustomerDocument, &o.CustomerCompany,
		&o.Plan, &o.AmountCents, &o.Method, &paymentID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get order %s", id)
	}
	if paymentID.Valid {
		o.PaymentID = paymentID.String
	}
	return &o, nil
}

func (s *SQLiteStore) UpdateOrderPayment(ctx context.Context, id string, paymentID string, status model.OrderStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET payment_id = ?, status = ?, updated_at = ? WHERE id = ?`,
		paymentID, string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update order payment %s", id)
	}
	return checkRowsAffected(res, "order", id)
}

func (s *SQLiteStore) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update order status %s", id)
	}
	return checkRowsAffected(res, "order", id)
}

func (s *SQLiteStore) GetBotConfig(ctx context.Context, userID string) (*model.BotConfig, error) {
	var configJSON string
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT config, updated_at FROM bot_configurations WHERE user_id = ?`,
		userID,
	).Scan(&configJSON, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get bot config %s", userID)
	}

	var cfg model.BotConfig
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal bot config")
	}
	cfg.UserID = userID
	cfg.UpdatedAt = updatedAt
	return &cfg, nil
}

func (s *SQLiteStore) UpsertBotConfig(ctx context.Context, cfg model.BotConfig) error {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal bot config")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO bot_configurations (user_id, config, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET config = excluded.config, updated_at = excluded.updated_at`,
		cfg.UserID, string(configJSON), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: upsert bot config")
}

func (s *SQLiteStore) ActiveBusinessHours(ctx context.Context) ([]model.BusinessHour, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, day_of_week, start_time, end_time, is_active, timezone, updated_at
		 FROM business_hours WHERE is_active = 1 ORDER BY day_of_week`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: active business hours")
	}
	defer rows.Close()

	var hours []model.BusinessHour
	for rows.Next() {
		var h model.BusinessHour
		if err := rows.Scan(&h.ID, &h.DayOfWeek, &h.StartTime, &h.EndTime,
			&h.IsActive, &h.Timezone, &h.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan business hour")
		}
		hours = append(hours, h)
	}
	return hours, eris.Wrap(rows.Err(), "sqlite: active business hours iterate")
}

func (s *SQLiteStore) FutureHolidays(ctx context.Context, from time.Time) ([]model.Holiday, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, holiday_date, name, is_working_day FROM holidays
		 WHERE holiday_date >= ? ORDER BY holiday_date`,
		from.Format(sqliteDateOnly),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: future holidays")
	}
	defer rows.Close()

	var holidays []model.Holiday
	for rows.Next() {
		var h model.Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &dateStr, &h.Name, &h.IsWorkingDay); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan holiday")
		}
		h.Date, err = time.Parse(sqliteDateOnly, dateStr)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse holiday date %s", dateStr)
		}
		holidays = append(holidays, h)
	}
	return holidays, eris.Wrap(rows.Err(), "sqlite: future holidays iterate")
}

func (s *SQLiteStore) UpsertBusinessHours(ctx context.Context, h model.BusinessHour) error {
	tz := h.Timezone
	if tz == "" {
		tz = "America/Sao_Paulo"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO business_hours (day_of_week, start_time, end_time, is_active, timezone, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (day_of_week) DO UPDATE SET
		   start_time = excluded.start_time, end_time = excluded.end_time,
		   is_active = excluded.is_active, timezone = excluded.timezone, updated_at = excluded.updated_at`,
		h.DayOfWeek, h.StartTime, h.EndTime, h.IsActive, tz, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert business hours day %d", h.DayOfWeek)
}

func (s *SQLiteStore) UpsertHoliday(ctx context.Context, h model.Holiday) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO holidays (holiday_date, name, is_working_day) VALUES (?, ?, ?)
		 ON CONFLICT (holiday_date) DO UPDATE SET name = excluded.name, is_working_day = excluded.is_working_day`,
		h.Date.Format(sqliteDateOnly), h.Name, h.IsWorkingDay,
	)
	return eris.Wrapf(err, "sqlite: upsert holiday %s", h.Name)
}

func (s *SQLiteStore) DeleteHoliday(ctx context.Context, date time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM holidays WHERE holiday_date = ?`,
		date.Format(sqliteDateOnly),
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: delete holiday")
	}
	return checkRowsAffected(res, "holiday", date.Format(sqliteDateOnly))
}

func (s *SQLiteStore) SubscriptionCounts(ctx context.Context) (*SubscriptionCounts, error) {
	var c SubscriptionCounts
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(CASE WHEN created_at >= datetime('now', 'start of day') THEN 1 END),
		        COUNT(CASE WHEN created_at >= datetime('now', '-7 days') THEN 1 END),
		        COUNT(CASE WHEN created_at >= datetime('now', 'start of month') THEN 1 END)
		 FROM subscriptions`,
	).Scan(&c.Total, &c.Today, &c.ThisWeek, &c.ThisMonth)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: subscription counts")
	}
	return &c, nil
}

func (s *SQLiteStore) PlanDistribution(ctx context.Context) ([]model.PlanCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT plan, COUNT(*) FROM subscriptions GROUP BY plan ORDER BY COUNT(*) DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: plan distribution")
	}
	defer rows.Close()

	var counts []model.PlanCount
	for rows.Next() {
		var pc model.PlanCount
		if err := rows.Scan(&pc.Plan, &pc.Count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan plan count")
		}
		counts = append(counts, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: plan distribution iterate")
	}
	return withPercentages(counts), nil
}

func (s *SQLiteStore) SubscriptionTrends(ctx context.Context, days int) ([]model.TrendPoint, error) {
	if days <= 0 {
		days = 30
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT date(created_at), plan, COUNT(*)
		 FROM subscriptions
		 WHERE created_at >= datetime('now', '-' || ? || ' days')
		 GROUP BY date(created_at), plan ORDER BY date(created_at)`,
		days,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: subscription trends")
	}
	defer rows.Close()

	var points []model.TrendPoint
	for rows.Next() {
		var p model.TrendPoint
		var dateStr string
		if err := rows.Scan(&dateStr, &p.Plan, &p.Count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan trend point")
		}
		p.Date, err = time.Parse(sqliteDateOnly, dateStr)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse trend date %s", dateStr)
		}
		points = append(points, p)
	}
	return points, eris.Wrap(rows.Err(), "sqlite: subscription trends iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
