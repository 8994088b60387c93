package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"railwatch/internal/domain/journey"
	"railwatch/internal/domain/notification"
	"railwatch/internal/domain/watch"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// 2017-01-02 was a Monday.
var monday1030 = time.Date(2017, time.January, 2, 10, 30, 0, 0, time.UTC)

func allDayWindow(from, to watch.Station, target string) watch.TimeWindow {
	return watch.TimeWindow{
		Start:  watch.StartOfDay,
		End:    watch.EndOfDay,
		Days:   watch.AllDays,
		From:   from,
		To:     to,
		Target: target,
	}
}

func mustTiming(scheduled watch.TimeOfDay, opts ...journey.Option) journey.Timing {
	t, err := journey.NewTiming(scheduled, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

type lookupResult struct {
	timings []journey.Timing
	err     error
	panic   bool
	block   bool
}

type fakeLookup struct {
	mu      sync.Mutex
	results map[string]lookupResult
	calls   []string
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{results: make(map[string]lookupResult)}
}

func (f *fakeLookup) set(from, to watch.Station, r lookupResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[string(from)+">"+string(to)] = r
}

func (f *fakeLookup) Lookup(ctx context.Context, from, to watch.Station) ([]journey.Timing, error) {
	key := string(from) + ">" + string(to)
	f.mu.Lock()
	f.calls = append(f.calls, key)
	r := f.results[key]
	f.mu.Unlock()

	switch {
	case r.panic:
		panic("lookup exploded")
	case r.block:
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return r.timings, r.err
}

func (f *fakeLookup) called(from, to watch.Station) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == string(from)+">"+string(to) {
			n++
		}
	}
	return n
}

type sentMessage struct {
	target, title, body string
	priority            notification.Priority
}

type fakeTransport struct {
	mu     sync.Mutex
	sent   []sentMessage
	err    error
	onSend func()
}

func (f *fakeTransport) Send(_ context.Context, target, title, body string, priority notification.Priority) error {
	if f.onSend != nil {
		f.onSend()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{target, title, body, priority})
	return nil
}

func (f *fakeTransport) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeTransport) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

// fakeHistory is an in-memory notification.HistoryStore with error injection.
type fakeHistory struct {
	mu       sync.Mutex
	records  []notification.SentRecord
	findErr  error
	appendFn func(ctx context.Context) error
}

func (f *fakeHistory) FindSince(_ context.Context, since time.Time) ([]notification.SentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []notification.SentRecord
	for _, r := range f.records {
		if r.SentAt.After(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeHistory) Append(ctx context.Context, rec notification.SentRecord) error {
	if f.appendFn != nil {
		if err := f.appendFn(ctx); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeHistory) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

var errBoom = errors.New("boom")

// fakeRepo is a watch.Repository keyed like the registry.
type fakeRepo struct {
	mu       sync.Mutex
	windows  map[watch.Key]watch.TimeWindow
	saveErr  error
	writeErr error // fails Delete, UpdateState and DeleteAll
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{windows: make(map[watch.Key]watch.TimeWindow)}
}

func (f *fakeRepo) Save(_ context.Context, w watch.TimeWindow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.windows[w.Key()] = w
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, key watch.Key) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	delete(f.windows, key)
	return nil
}

func (f *fakeRepo) UpdateState(_ context.Context, key watch.Key, state watch.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	w, ok := f.windows[key]
	if !ok {
		return errors.New("not found")
	}
	w.State = state
	f.windows[key] = w
	return nil
}

func (f *fakeRepo) DeleteAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.windows = make(map[watch.Key]watch.TimeWindow)
	return nil
}

func (f *fakeRepo) ListAll(context.Context) ([]watch.TimeWindow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []watch.TimeWindow
	for _, w := range f.windows {
		out = append(out, w)
	}
	return out, nil
}
