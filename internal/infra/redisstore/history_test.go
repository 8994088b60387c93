package redisstore

import (
	"context"
	"testing"
	"time"

	"railwatch/internal/domain/notification"
	"railwatch/internal/testutil"
)

func TestHistoryStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	store := NewHistoryStore(client, time.Hour)
	t0 := time.Date(2017, 1, 1, 10, 0, 0, 0, time.UTC)

	records := []notification.SentRecord{
		{Target: "t", Title: "RailWatch", Body: "FOO -> BAR @ 12:00", Priority: notification.PriorityHigh, SentAt: t0},
		{Target: "t", Title: "RailWatch", Body: "FOO -> BAR @ 12:05", Priority: notification.PriorityHigh, SentAt: t0.Add(time.Minute)},
	}
	for _, rec := range records {
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	tests := []struct {
		name  string
		since time.Time
		want  int
	}{
		{"before everything", t0.Add(-time.Second), 2},
		{"boundary is included", t0, 2},
		{"sub-millisecond after first", t0.Add(500 * time.Microsecond), 2},
		{"after first", t0.Add(time.Millisecond), 1},
		{"after everything", t0.Add(time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.FindSince(ctx, tt.since)
			if err != nil {
				t.Fatalf("FindSince: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d records, want %d", len(got), tt.want)
			}
		})
	}

	got, _ := store.FindSince(ctx, t0.Add(time.Millisecond))
	if len(got) == 1 && !got[0].Matches("t", "RailWatch", "FOO -> BAR @ 12:05") {
		t.Errorf("unexpected record %+v", got[0])
	}

	// Appending far in the future trims records older than the retention.
	if err := store.Append(ctx, notification.SentRecord{Target: "t", Title: "RailWatch", Body: "later", SentAt: t0.Add(3 * time.Hour)}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	count, err := client.ZCard(ctx, sentKey).Result()
	if err != nil {
		t.Fatalf("ZCard: %v", err)
	}
	if count != 1 {
		t.Errorf("sorted set has %d members after trimming, want 1", count)
	}
}
