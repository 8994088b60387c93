package app

import (
	"sync"

	"railwatch/internal/domain/watch"
)

// WatchRegistry is the working set of configured watch windows. Windows are
// keyed by watch.TimeWindow.Key, so inserting a window equal in value to an
// existing one is a no-op.
type WatchRegistry struct {
	mu      sync.RWMutex
	windows map[watch.Key]watch.TimeWindow
}

func NewWatchRegistry() *WatchRegistry {
	return &WatchRegistry{windows: make(map[watch.Key]watch.TimeWindow)}
}

// Add validates w and inserts it unless an equal window is already present.
// It reports whether the registry changed.
func (r *WatchRegistry) Add(w watch.TimeWindow) (bool, error) {
	if err := w.Validate(); err != nil {
		return false, err
	}

	key := w.Key()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.windows[key]; exists {
		return false, nil
	}
	r.windows[key] = w
	return true, nil
}

// Remove deletes the window equal in value to w.
func (r *WatchRegistry) Remove(w watch.TimeWindow) bool {
	key := w.Key()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.windows[key]; !exists {
		return false
	}
	delete(r.windows, key)
	return true
}

// SetState enables or disables the window equal in value to w.
func (r *WatchRegistry) SetState(w watch.TimeWindow, state watch.State) bool {
	key := w.Key()
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.windows[key]
	if !ok {
		return false
	}
	existing.State = state
	r.windows[key] = existing
	return true
}

// Get returns the stored window equal in value to w, including its state.
func (r *WatchRegistry) Get(w watch.TimeWindow) (watch.TimeWindow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	existing, ok := r.windows[w.Key()]
	return existing, ok
}

// All returns a snapshot of the working set in no particular order. Later
// mutations of the registry do not affect the returned slice.
func (r *WatchRegistry) All() []watch.TimeWindow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]watch.TimeWindow, 0, len(r.windows))
	for _, w := range r.windows {
		out = append(out, w)
	}
	return out
}

func (r *WatchRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows = make(map[watch.Key]watch.TimeWindow)
}

func (r *WatchRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.windows)
}
