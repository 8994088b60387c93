// Package memstore keeps notification history in process memory. History is
// lost on restart, which only widens the window for a repeated send.
package memstore

import (
	"context"
	"sync"
	"time"

	"railwatch/internal/domain/notification"
)

// HistoryStore is a notification.HistoryStore backed by a slice. Records
// older than the retention period are dropped on append.
type HistoryStore struct {
	mu        sync.RWMutex
	records   []notification.SentRecord
	retention time.Duration
}

// NewHistoryStore keeps records for retention; zero keeps them forever.
func NewHistoryStore(retention time.Duration) *HistoryStore {
	return &HistoryStore{retention: retention}
}

func (s *HistoryStore) FindSince(_ context.Context, since time.Time) ([]notification.SentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []notification.SentRecord
	for _, rec := range s.records {
		if rec.SentAt.After(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *HistoryStore) Append(_ context.Context, rec notification.SentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if s.retention > 0 {
		s.pruneLocked(rec.SentAt.Add(-s.retention))
	}
	return nil
}

func (s *HistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *HistoryStore) pruneLocked(cutoff time.Time) {
	kept := s.records[:0]
	for _, rec := range s.records {
		if !rec.SentAt.Before(cutoff) {
			kept = append(kept, rec)
		}
	}
	s.records = kept
}
