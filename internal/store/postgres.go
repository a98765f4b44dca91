// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/vitalgraph/vitalgraph/internal/baseline"
	"github.com/vitalgraph/vitalgraph/internal/freshness"
	"github.com/vitalgraph/vitalgraph/internal/series"
)

// Config holds Postgres connection settings.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

// Postgres implements Store on PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a pooled PostgreSQL connection.
func NewPostgres(cfg Config) (*Postgres, error) {
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error { return p.db.Close() }

// Ping verifies the database connection.
func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// CreateTables creates the engine's tables if they do not exist.
func (p *Postgres) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(255) PRIMARY KEY,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS exposure_events (
			id SERIAL PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			metric_key VARCHAR(255) NOT NULL,
			occurred_on DATE NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			time_of_day VARCHAR(16) NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS outcome_observations (
			id SERIAL PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			metric_key VARCHAR(255) NOT NULL,
			observed_on DATE NOT NULL,
			value DOUBLE PRECISION NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_baselines (
			user_id VARCHAR(255) NOT NULL,
			metric_key VARCHAR(255) NOT NULL,
			window_days INT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			sample_count INT NOT NULL,
			last_calculated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, metric_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exposures_user_metric_date
			ON exposure_events(user_id, metric_key, occurred_on)`,
		`CREATE INDEX IF NOT EXISTS idx_observations_user_metric_date
			ON outcome_observations(user_id, metric_key, observed_on)`,
	}

	for _, q := range queries {
		if _, err := p.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

func (p *Postgres) ActiveUsers(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id FROM users WHERE active = true ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying active users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

func (p *Postgres) ReadExposures(ctx context.Context, userID, metricKey string, from, to time.Time) ([]series.ExposureEvent, error) {
	query := `
		SELECT occurred_on, amount, time_of_day
		FROM exposure_events
		WHERE user_id = $1 AND metric_key = $2 AND occurred_on BETWEEN $3 AND $4
		ORDER BY occurred_on ASC`

	rows, err := p.db.QueryContext(ctx, query, userID, metricKey, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying exposures %s/%s: %w", userID, metricKey, err)
	}
	defer func() { _ = rows.Close() }()

	var events []series.ExposureEvent
	for rows.Next() {
		var e series.ExposureEvent
		var bucket string
		if err := rows.Scan(&e.OccurredOn, &e.Amount, &bucket); err != nil {
			return nil, fmt.Errorf("scanning exposure: %w", err)
		}
		e.TimeOfDay = series.TimeOfDay(bucket)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (p *Postgres) ReadObservations(ctx context.Context, userID, metricKey string, from, to time.Time) ([]series.OutcomeObservation, error) {
	query := `
		SELECT observed_on, value
		FROM outcome_observations
		WHERE user_id = $1 AND metric_key = $2 AND observed_on BETWEEN $3 AND $4
		ORDER BY observed_on ASC`

	rows, err := p.db.QueryContext(ctx, query, userID, metricKey, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying observations %s/%s: %w", userID, metricKey, err)
	}
	defer func() { _ = rows.Close() }()

	var obs []series.OutcomeObservation
	for rows.Next() {
		var o series.OutcomeObservation
		if err := rows.Scan(&o.ObservedOn, &o.Value); err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

func (p *Postgres) LastMeasured(ctx context.Context, userID string, signals []string) ([]freshness.Signal, error) {
	query := `
		SELECT metric_key, MAX(observed_on)
		FROM outcome_observations
		WHERE user_id = $1
		GROUP BY metric_key`
	args := []interface{}{userID}

	if len(signals) > 0 {
		query = `
			SELECT metric_key, MAX(observed_on)
			FROM outcome_observations
			WHERE user_id = $1 AND metric_key = ANY($2)
			GROUP BY metric_key`
		args = append(args, pq.Array(signals))
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying last measurements for %s: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []freshness.Signal
	for rows.Next() {
		var s freshness.Signal
		if err := rows.Scan(&s.Name, &s.LastMeasuredAt); err != nil {
			return nil, fmt.Errorf("scanning last measurement: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) UpsertBaseline(ctx context.Context, rec baseline.Record) error {
	query := `
		INSERT INTO user_baselines (user_id, metric_key, window_days, value, sample_count, last_calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, metric_key)
		DO UPDATE SET window_days = $3, value = $4, sample_count = $5, last_calculated_at = $6`

	_, err := p.db.ExecContext(ctx, query,
		rec.UserID, rec.MetricKey, rec.WindowDays, rec.Value, rec.SampleCount, rec.LastCalculatedAt)
	if err != nil {
		return fmt.Errorf("upserting baseline %s/%s: %w", rec.UserID, rec.MetricKey, err)
	}
	return nil
}

func (p *Postgres) Baselines(ctx context.Context, userID string) ([]baseline.Record, error) {
	query := `
		SELECT user_id, metric_key, window_days, value, sample_count, last_calculated_at
		FROM user_baselines
		WHERE user_id = $1
		ORDER BY metric_key`

	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying baselines for %s: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	var records []baseline.Record
	for rows.Next() {
		var rec baseline.Record
		if err := rows.Scan(&rec.UserID, &rec.MetricKey, &rec.WindowDays, &rec.Value, &rec.SampleCount, &rec.LastCalculatedAt); err != nil {
			return nil, fmt.Errorf("scanning baseline: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
