package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"railwatch/internal/domain/journey"
	"railwatch/internal/domain/watch"

	"github.com/sirupsen/logrus"
)

// NotificationTitle is the title of every journey notification.
const NotificationTitle = "RailWatch"

// ErrLookupFailed wraps journey lookup errors for a single window.
var ErrLookupFailed = errors.New("journey lookup failed")

const defaultMaxConcurrentLookups = 4

// OrchestratorConfig bounds the work done in one cycle.
type OrchestratorConfig struct {
	CallTimeout          time.Duration
	MaxConcurrentLookups int
}

// CycleReport summarises one evaluation pass.
type CycleReport struct {
	Evaluated        int
	Active           int
	LookupFailures   int
	NoServices       int
	Sent             int
	Suppressed       int
	DispatchFailures int
}

// Orchestrator drives evaluation cycles over the registry.
type Orchestrator struct {
	registry *WatchRegistry
	lookup   journey.Lookup
	deduper  *Deduper
	cfg      OrchestratorConfig
	logger   *logrus.Entry

	// cycleMu keeps cycles from overlapping.
	cycleMu sync.Mutex
}

func NewOrchestrator(registry *WatchRegistry, lookup journey.Lookup, deduper *Deduper, cfg OrchestratorConfig, logger *logrus.Entry) *Orchestrator {
	if cfg.MaxConcurrentLookups <= 0 {
		cfg.MaxConcurrentLookups = defaultMaxConcurrentLookups
	}
	return &Orchestrator{
		registry: registry,
		lookup:   lookup,
		deduper:  deduper,
		cfg:      cfg,
		logger:   logger,
	}
}

// RunCycle evaluates every registered window at now. Failures are contained
// to the window they happen in; cancelling ctx abandons windows that have not
// dispatched yet.
func (o *Orchestrator) RunCycle(ctx context.Context, now time.Time) CycleReport {
	o.cycleMu.Lock()
	defer o.cycleMu.Unlock()

	windows := o.registry.All()
	active, _ := watch.Partition(windows, now)

	report := CycleReport{Evaluated: len(windows), Active: len(active)}
	cycleLogger := o.logger.WithFields(logrus.Fields{
		"cycle_at": now.Format(time.RFC3339),
		"windows":  len(windows),
		"active":   len(active),
	})
	if len(active) == 0 {
		cycleLogger.Debug("No active watch windows")
		return report
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, o.cfg.MaxConcurrentLookups)
	)
	for _, w := range active {
		wg.Add(1)
		go func(w watch.TimeWindow) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			outcome := o.processWindow(ctx, w, now)
			mu.Lock()
			outcome.apply(&report)
			mu.Unlock()
		}(w)
	}
	wg.Wait()

	cycleLogger.WithFields(logrus.Fields{
		"sent":              report.Sent,
		"suppressed":        report.Suppressed,
		"lookup_failures":   report.LookupFailures,
		"dispatch_failures": report.DispatchFailures,
	}).Info("Watch cycle complete")
	return report
}

type windowOutcome int

const (
	outcomeAbandoned windowOutcome = iota
	outcomeLookupFailed
	outcomeNoServices
	outcomeSent
	outcomeSuppressed
	outcomeDispatchFailed
)

func (w windowOutcome) apply(r *CycleReport) {
	switch w {
	case outcomeLookupFailed:
		r.LookupFailures++
	case outcomeNoServices:
		r.NoServices++
	case outcomeSent:
		r.Sent++
	case outcomeSuppressed:
		r.Suppressed++
	case outcomeDispatchFailed:
		r.DispatchFailures++
	}
}

func (o *Orchestrator) processWindow(ctx context.Context, w watch.TimeWindow, now time.Time) windowOutcome {
	logCtx := o.logger.WithFields(logrus.Fields{
		"journey": w.Journey(),
		"target":  w.Target,
	})

	timings, err := o.lookupTimings(ctx, w)
	if err != nil {
		if ctx.Err() != nil {
			logCtx.WithError(err).Warn("Cycle cancelled during journey lookup")
			return outcomeAbandoned
		}
		logCtx.WithError(err).Error("Journey lookup failed")
		return outcomeLookupFailed
	}
	if len(timings) == 0 {
		logCtx.Info("No services found")
		return outcomeNoServices
	}

	body := RenderMessage(w, timings[0])
	sent, err := o.deduper.Deliver(ctx, w.Target, NotificationTitle, body, now)
	switch {
	case err != nil && errors.Is(err, ErrDispatchFailed):
		logCtx.WithError(err).Error("Failed to dispatch notification")
		return outcomeDispatchFailed
	case err != nil && ctx.Err() != nil:
		logCtx.WithError(err).Warn("Cycle cancelled before dispatch")
		return outcomeAbandoned
	case err != nil:
		logCtx.WithError(err).Error("Dedup check failed, notification skipped")
		return outcomeDispatchFailed
	case !sent:
		return outcomeSuppressed
	}
	logCtx.WithField("body", body).Info("Notification sent")
	return outcomeSent
}

// lookupTimings calls the lookup under the per-call timeout and turns a
// panicking lookup into an error for this window only.
func (o *Orchestrator) lookupTimings(ctx context.Context, w watch.TimeWindow) (timings []journey.Timing, err error) {
	lookupCtx, cancel := withOptionalTimeout(ctx, o.cfg.CallTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			timings, err = nil, fmt.Errorf("%w: %s: panic: %v", ErrLookupFailed, w.Journey(), r)
		}
	}()

	timings, err = o.lookup.Lookup(lookupCtx, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLookupFailed, w.Journey(), err)
	}
	return timings, nil
}

// RenderMessage formats the first departure as "FROM -> TO @ HH:MM".
func RenderMessage(w watch.TimeWindow, t journey.Timing) string {
	return fmt.Sprintf("%s @ %s", w.Journey(), t.Departure())
}
