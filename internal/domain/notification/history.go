package notification

import (
	"context"
	"time"
)

// HistoryStore keeps the log of sent notifications consulted for dedup.
type HistoryStore interface {
	// FindSince returns every record with SentAt strictly after since. Stores
	// with coarser timestamps may also return records at the since boundary;
	// callers compare SentAt themselves.
	FindSince(ctx context.Context, since time.Time) ([]SentRecord, error)
	Append(ctx context.Context, rec SentRecord) error
}
