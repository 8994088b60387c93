package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"railwatch/internal/domain/notification"
)

// PostgresHistoryRepository stores the sent notification log.
type PostgresHistoryRepository struct {
	db *sql.DB
}

func NewPostgresHistoryRepository(db *sql.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

func (r *PostgresHistoryRepository) FindSince(ctx context.Context, since time.Time) ([]notification.SentRecord, error) {
	query := `SELECT target, title, body, priority, sent_at
              FROM sent_notifications
              WHERE sent_at >= $1
              ORDER BY sent_at`
	// sent_at holds microseconds; keep the boundary and let callers decide.
	rows, err := r.db.QueryContext(ctx, query, since.Truncate(time.Microsecond))
	if err != nil {
		return nil, fmt.Errorf("error querying sent notifications: %w", err)
	}
	defer rows.Close()

	var records []notification.SentRecord
	for rows.Next() {
		var rec notification.SentRecord
		var priority string
		if err := rows.Scan(&rec.Target, &rec.Title, &rec.Body, &priority, &rec.SentAt); err != nil {
			return nil, fmt.Errorf("error scanning sent notification: %w", err)
		}
		rec.Priority = notification.Priority(priority)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sent notifications: %w", err)
	}
	return records, nil
}

func (r *PostgresHistoryRepository) Append(ctx context.Context, rec notification.SentRecord) error {
	query := `INSERT INTO sent_notifications (target, title, body, priority, sent_at)
              VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, rec.Target, rec.Title, rec.Body, string(rec.Priority), rec.SentAt); err != nil {
		return fmt.Errorf("error inserting sent notification: %w", err)
	}
	return nil
}

// DeleteBefore drops history older than cutoff and returns the row count.
func (r *PostgresHistoryRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sent_notifications WHERE sent_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error pruning sent notifications: %w", err)
	}
	return res.RowsAffected()
}
