package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"railwatch/internal/domain/notification"
)

const sentKey = "railwatch:sent"

var ErrInvalidRecord = errors.New("invalid sent notification record")

type sentRecord struct {
	Target   string    `json:"target"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Priority string    `json:"priority"`
	SentAt   time.Time `json:"sent_at"`
}

// HistoryStore keeps sent notifications in a sorted set scored by send time.
// Scores are Unix milliseconds. Entries older than retention are trimmed on
// every append.
type HistoryStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewHistoryStore(client *redis.Client, retention time.Duration) *HistoryStore {
	return &HistoryStore{client: client, retention: retention}
}

func (s *HistoryStore) FindSince(ctx context.Context, since time.Time) ([]notification.SentRecord, error) {
	members, err := s.client.ZRangeByScore(ctx, sentKey, &redis.ZRangeBy{
		// Inclusive: scores are truncated to milliseconds.
		Min: strconv.FormatInt(since.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	records := make([]notification.SentRecord, 0, len(members))
	for _, m := range members {
		var rec sentRecord
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		records = append(records, notification.SentRecord{
			Target:   rec.Target,
			Title:    rec.Title,
			Body:     rec.Body,
			Priority: notification.Priority(rec.Priority),
			SentAt:   rec.SentAt,
		})
	}
	return records, nil
}

func (s *HistoryStore) Append(ctx context.Context, rec notification.SentRecord) error {
	data, err := json.Marshal(sentRecord{
		Target:   rec.Target,
		Title:    rec.Title,
		Body:     rec.Body,
		Priority: string(rec.Priority),
		SentAt:   rec.SentAt,
	})
	if err != nil {
		return ErrInvalidRecord
	}

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, sentKey, redis.Z{Score: float64(rec.SentAt.UnixMilli()), Member: data})
	if s.retention > 0 {
		cutoff := rec.SentAt.Add(-s.retention).UnixMilli()
		pipe.ZRemRangeByScore(ctx, sentKey, "-inf", "("+strconv.FormatInt(cutoff, 10))
		pipe.Expire(ctx, sentKey, s.retention)
	}
	_, err = pipe.Exec(ctx)
	return err
}
