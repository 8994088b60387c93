package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"railwatch/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// ErrDispatchFailed wraps transport errors. A failed dispatch is never
// recorded, so the same content is retried on a later cycle.
var ErrDispatchFailed = errors.New("notification dispatch failed")

var errMissingHorizon = errors.New("dedup horizon must be positive")

// DeduperConfig carries the tunables of the dedup gate.
type DeduperConfig struct {
	// Horizon is the rolling look-back used to suppress identical content.
	// It is required; a value of one tick interval is typical.
	Horizon     time.Duration
	CallTimeout time.Duration
	Priority    notification.Priority
}

// Deduper suppresses notifications whose (target, title, body) was already
// sent within the horizon and dispatches the rest.
type Deduper struct {
	history   notification.HistoryStore
	transport notification.Transport
	cfg       DeduperConfig
	locks     *keyedMutex
	logger    *logrus.Entry
}

func NewDeduper(history notification.HistoryStore, transport notification.Transport, cfg DeduperConfig, logger *logrus.Entry) (*Deduper, error) {
	if cfg.Horizon <= 0 {
		return nil, errMissingHorizon
	}
	if cfg.Priority == "" {
		cfg.Priority = notification.PriorityHigh
	}
	return &Deduper{
		history:   history,
		transport: transport,
		cfg:       cfg,
		locks:     newKeyedMutex(),
		logger:    logger,
	}, nil
}

// Horizon returns the configured look-back.
func (d *Deduper) Horizon() time.Duration {
	return d.cfg.Horizon
}

// ShouldSend reports whether no record with the same content was sent after
// now-horizon.
func (d *Deduper) ShouldSend(ctx context.Context, target, title, body string, now time.Time, horizon time.Duration) (bool, error) {
	since := now.Add(-horizon)
	records, err := d.history.FindSince(ctx, since)
	if err != nil {
		return false, fmt.Errorf("failed to load notification history: %w", err)
	}
	for _, rec := range records {
		if rec.SentAt.After(since) && rec.Matches(target, title, body) {
			return false, nil
		}
	}
	return true, nil
}

// Record appends a sent notification to the history.
func (d *Deduper) Record(ctx context.Context, target, title, body string, now time.Time) error {
	rec := notification.SentRecord{
		Target:   target,
		Title:    title,
		Body:     body,
		Priority: d.cfg.Priority,
		SentAt:   now,
	}
	if err := d.history.Append(ctx, rec); err != nil {
		return fmt.Errorf("failed to record sent notification: %w", err)
	}
	return nil
}

// Deliver runs check, dispatch and record as one step per content key and
// reports whether the notification was sent. Suppressed notifications return
// (false, nil). The record is only written after a successful dispatch.
func (d *Deduper) Deliver(ctx context.Context, target, title, body string, now time.Time) (bool, error) {
	unlock := d.locks.lock(contentKey(target, title, body))
	defer unlock()

	logCtx := d.logger.WithFields(logrus.Fields{"target": target, "body": body})

	send, err := d.ShouldSend(ctx, target, title, body, now, d.cfg.Horizon)
	if err != nil {
		return false, err
	}
	if !send {
		logCtx.Debug("Identical notification sent within horizon, suppressing")
		return false, nil
	}

	// Abandoned cycles must not dispatch.
	if err := ctx.Err(); err != nil {
		return false, err
	}

	sendCtx, cancel := withOptionalTimeout(ctx, d.cfg.CallTimeout)
	err = d.transport.Send(sendCtx, target, title, body, d.cfg.Priority)
	cancel()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	// The dispatch happened, so the record must survive cycle cancellation.
	recCtx, cancelRec := withOptionalTimeout(context.WithoutCancel(ctx), d.cfg.CallTimeout)
	defer cancelRec()
	if err := d.Record(recCtx, target, title, body, now); err != nil {
		logCtx.WithError(err).Error("Notification sent but not recorded; it may be sent again")
	}
	return true, nil
}

func contentKey(target, title, body string) string {
	return strings.Join([]string{target, title, body}, "\x00")
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
