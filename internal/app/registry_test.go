package app

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"railwatch/internal/domain/watch"
)

func TestWatchRegistry_AddValueEqualIsNoop(t *testing.T) {
	r := NewWatchRegistry()

	added, err := r.Add(allDayWindow("FOO", "BAR", "target"))
	if err != nil || !added {
		t.Fatalf("first Add = %v, %v", added, err)
	}
	added, err = r.Add(allDayWindow("FOO", "BAR", "target"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added {
		t.Error("second Add of an equal window should report no change")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestWatchRegistry_DifferentTargetsAreDistinct(t *testing.T) {
	r := NewWatchRegistry()
	r.Add(allDayWindow("FOO", "BAR", "target-1"))
	r.Add(allDayWindow("FOO", "BAR", "target-2"))

	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestWatchRegistry_SeparatorInStationIsDistinct(t *testing.T) {
	r := NewWatchRegistry()
	r.Add(allDayWindow("A|B", "C", "t"))
	added, err := r.Add(allDayWindow("A", "B|C", "t"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !added || r.Len() != 2 {
		t.Errorf("added=%v Len()=%d, want a second distinct window", added, r.Len())
	}
}

func TestWatchRegistry_RejectsInvalidWindow(t *testing.T) {
	r := NewWatchRegistry()
	_, err := r.Add(allDayWindow("", "BAR", "target"))
	if !errors.Is(err, watch.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	if r.Len() != 0 {
		t.Error("invalid window should not be stored")
	}
}

func TestWatchRegistry_RemoveAndClear(t *testing.T) {
	r := NewWatchRegistry()
	a := allDayWindow("FOO", "BAR", "t")
	b := allDayWindow("BAR", "FOO", "t")
	r.Add(a)
	r.Add(b)

	if !r.Remove(a) {
		t.Error("Remove of a present window should succeed")
	}
	if r.Remove(a) {
		t.Error("Remove of an absent window should report false")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	r.Clear()
	if len(r.All()) != 0 {
		t.Error("Clear should empty the registry")
	}
}

func TestWatchRegistry_SetState(t *testing.T) {
	r := NewWatchRegistry()
	w := allDayWindow("FOO", "BAR", "t")
	r.Add(w)

	if !r.SetState(w, watch.StateDisabled) {
		t.Fatal("SetState should find the window")
	}
	got, ok := r.Get(w)
	if !ok || got.State != watch.StateDisabled {
		t.Errorf("Get() = %v, %v; want disabled window", got, ok)
	}

	// An equal window in a different state is still the same watch.
	if added, _ := r.Add(w); added {
		t.Error("re-adding an existing window should be a no-op")
	}
	if r.SetState(allDayWindow("X", "Y", "t"), watch.StateEnabled) {
		t.Error("SetState on an unknown window should report false")
	}
}

func TestWatchRegistry_AllIsSnapshot(t *testing.T) {
	r := NewWatchRegistry()
	r.Add(allDayWindow("FOO", "BAR", "t"))

	snapshot := r.All()
	r.Add(allDayWindow("BAR", "FOO", "t"))
	r.Clear()

	if len(snapshot) != 1 {
		t.Errorf("snapshot changed after mutation: %v", snapshot)
	}
}

func TestWatchRegistry_ConcurrentAccess(t *testing.T) {
	r := NewWatchRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Add(allDayWindow("FOO", "BAR", fmt.Sprintf("t-%d", i%10)))
		}(i)
		go func() {
			defer wg.Done()
			_ = r.All()
		}()
	}
	wg.Wait()

	if r.Len() != 10 {
		t.Errorf("Len() = %d, want 10", r.Len())
	}
}
