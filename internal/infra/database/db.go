package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

const schema = `
CREATE TABLE IF NOT EXISTS sent_notifications (
    id         BIGSERIAL PRIMARY KEY,
    target     TEXT        NOT NULL,
    title      TEXT        NOT NULL,
    body       TEXT        NOT NULL,
    priority   TEXT        NOT NULL,
    sent_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sent_notifications_sent_at_idx ON sent_notifications (sent_at);

CREATE TABLE IF NOT EXISTS watch_windows (
    id           BIGSERIAL PRIMARY KEY,
    watch_key    TEXT        NOT NULL,
    start_time   BIGINT      NOT NULL,
    end_time     BIGINT      NOT NULL,
    days         SMALLINT[]  NOT NULL,
    from_station TEXT        NOT NULL,
    to_station   TEXT        NOT NULL,
    target       TEXT        NOT NULL,
    state        TEXT        NOT NULL DEFAULT 'ENABLED',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT watch_windows_key_unique UNIQUE (watch_key)
);
`

// NewPostgresConnection creates and returns a new PostgreSQL database connection.
// It also pings the database to ensure connectivity.
func NewPostgresConnection(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err = db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the tables used by the repositories if missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
