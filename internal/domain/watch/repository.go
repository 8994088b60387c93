package watch

import "context"

// Repository persists watch windows so the registry can be rebuilt on start-up.
type Repository interface {
	Save(ctx context.Context, w TimeWindow) error
	Delete(ctx context.Context, key Key) error
	UpdateState(ctx context.Context, key Key, state State) error
	DeleteAll(ctx context.Context) error
	ListAll(ctx context.Context) ([]TimeWindow, error)
}
