package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"railwatch/internal/domain/watch"

	"github.com/lib/pq" // For pq.Array and pq.Error
)

var ErrWatchNotFound = fmt.Errorf("watch window not found")
var ErrDuplicateWatch = fmt.Errorf("duplicate watch window")

const uniqueViolation = "23505"

type PostgresWatchRepository struct {
	db *sql.DB
}

func NewPostgresWatchRepository(db *sql.DB) *PostgresWatchRepository {
	return &PostgresWatchRepository{db: db}
}

func (r *PostgresWatchRepository) Save(ctx context.Context, w watch.TimeWindow) error {
	query := `INSERT INTO watch_windows (watch_key, start_time, end_time, days, from_station, to_station, target, state)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		string(w.Key()), int64(w.Start), int64(w.End), pq.Array(daysToInts(w.Days)),
		string(w.From), string(w.To), w.Target, w.State.String())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateWatch
		}
		return fmt.Errorf("error inserting watch window: %w", err)
	}
	return nil
}

func (r *PostgresWatchRepository) Delete(ctx context.Context, key watch.Key) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM watch_windows WHERE watch_key = $1`, string(key))
	if err != nil {
		return fmt.Errorf("error deleting watch window: %w", err)
	}
	return requireAffected(res)
}

func (r *PostgresWatchRepository) UpdateState(ctx context.Context, key watch.Key, state watch.State) error {
	query := `UPDATE watch_windows SET state = $1, updated_at = NOW() WHERE watch_key = $2`
	res, err := r.db.ExecContext(ctx, query, state.String(), string(key))
	if err != nil {
		return fmt.Errorf("error updating watch window state: %w", err)
	}
	return requireAffected(res)
}

func (r *PostgresWatchRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM watch_windows`); err != nil {
		return fmt.Errorf("error deleting watch windows: %w", err)
	}
	return nil
}

func (r *PostgresWatchRepository) ListAll(ctx context.Context) ([]watch.TimeWindow, error) {
	query := `SELECT start_time, end_time, days, from_station, to_station, target, state
              FROM watch_windows ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing watch windows: %w", err)
	}
	defer rows.Close()

	var windows []watch.TimeWindow
	for rows.Next() {
		var (
			start, end int64
			days       []int64
			from, to   string
			w          watch.TimeWindow
			state      string
		)
		if err := rows.Scan(&start, &end, pq.Array(&days), &from, &to, &w.Target, &state); err != nil {
			return nil, fmt.Errorf("error scanning watch window: %w", err)
		}
		w.Start = watch.TimeOfDay(time.Duration(start))
		w.End = watch.TimeOfDay(time.Duration(end))
		w.Days = intsToDays(days)
		w.From, w.To = watch.Station(from), watch.Station(to)
		if w.State, err = watch.ParseState(state); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrWatchNotFound
	}
	return nil
}

func daysToInts(r watch.DayRange) []int64 {
	days := r.Days()
	out := make([]int64, len(days))
	for i, d := range days {
		out[i] = int64(d)
	}
	return out
}

func intsToDays(days []int64) watch.DayRange {
	var r watch.DayRange
	for _, d := range days {
		r |= watch.DaysOf(time.Weekday(d))
	}
	return r
}
