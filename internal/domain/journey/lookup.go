package journey

import (
	"context"

	"railwatch/internal/domain/watch"
)

// Lookup fetches live departures from one station to another.
// Results are ordered by scheduled time ascending. An empty slice means no
// services were found and is distinct from an error.
type Lookup interface {
	Lookup(ctx context.Context, from, to watch.Station) ([]Timing, error)
}
