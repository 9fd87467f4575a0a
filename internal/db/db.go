// Package db provides PostgreSQL-backed repository implementations for the
// RainWatch bot. All repositories accept a DBTX interface that is satisfied
// by both *pgxpool.Pool (for normal queries) and pgx.Tx (for transactional
// execution).
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx.
// Repositories accept this so the same code works inside or outside a
// transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPool creates a pgx connection pool from a database URL with the given
// tuning parameters and verifies connectivity.
func NewPool(ctx context.Context, url string, maxConns int, maxConnLifetime time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("db: parsing database url: %w", err)
	}
	cfg.MaxConns = int32(maxConns)
	cfg.MaxConnLifetime = maxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db: creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db: pinging database: %w", err)
	}
	return pool, nil
}

// schema holds the embedded table definitions. Applied idempotently at
// startup; the deployment target has no separate migration step.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id     BIGINT PRIMARY KEY,
	language    TEXT NOT NULL DEFAULT 'en',
	city        TEXT NOT NULL DEFAULT '',
	rain_alerts BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS rain_alert_log (
	user_id      BIGINT NOT NULL,
	city         TEXT NOT NULL,
	event_bucket TEXT NOT NULL,
	last_sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, city, event_bucket)
);

CREATE INDEX IF NOT EXISTS idx_rain_alert_log_sent_at ON rain_alert_log (last_sent_at);
`

// Bootstrap applies the embedded schema.
func Bootstrap(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("db: applying schema: %w", err)
	}
	return nil
}
