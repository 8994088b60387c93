package scheduler

import (
	"context"
	"fmt"
	"time"

	"railwatch/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const pruneSpec = "@daily"

// CycleRunner runs one evaluation pass.
type CycleRunner interface {
	RunCycle(ctx context.Context, now time.Time) app.CycleReport
}

// HistoryPruner drops notification history older than a cutoff.
type HistoryPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Options configures the watch scheduler.
type Options struct {
	TickInterval time.Duration
	CycleTimeout time.Duration
	Location     *time.Location
	// Pruner and Retention enable the daily history clean-up.
	Pruner    HistoryPruner
	Retention time.Duration
}

type WatchScheduler struct {
	cronEngine *cron.Cron
	runner     CycleRunner
	logger     *logrus.Entry
	opts       Options

	baseCtx context.Context
	cancel  context.CancelFunc
	now     func() time.Time
}

func NewWatchScheduler(runner CycleRunner, logger *logrus.Entry, opts Options) *WatchScheduler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.CycleTimeout <= 0 {
		opts.CycleTimeout = opts.TickInterval
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	cronLogger := cron.PrintfLogger(logger)
	return &WatchScheduler{
		// A tick that fires while the previous cycle is still running is skipped.
		cronEngine: cron.New(
			cron.WithLocation(opts.Location),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
		),
		runner:  runner,
		logger:  logger,
		opts:    opts,
		baseCtx: baseCtx,
		cancel:  cancel,
		now:     time.Now,
	}
}

func (s *WatchScheduler) Start() error {
	if s.opts.TickInterval < time.Second {
		return fmt.Errorf("tick interval %s is below one second", s.opts.TickInterval)
	}
	s.logger.WithField("interval", s.opts.TickInterval).Info("Starting watch scheduler...")

	if _, err := s.cronEngine.AddFunc("@every "+s.opts.TickInterval.String(), s.tick); err != nil {
		return fmt.Errorf("could not add watch cycle job: %w", err)
	}

	if s.opts.Pruner != nil && s.opts.Retention > 0 {
		if _, err := s.cronEngine.AddFunc(pruneSpec, s.prune); err != nil {
			return fmt.Errorf("could not add history prune job: %w", err)
		}
	}

	s.cronEngine.Start()
	s.logger.Info("Watch scheduler started.")
	return nil
}

func (s *WatchScheduler) tick() {
	ctx, cancel := context.WithTimeout(s.baseCtx, s.opts.CycleTimeout)
	defer cancel()
	s.runner.RunCycle(ctx, s.now().In(s.opts.Location))
}

func (s *WatchScheduler) prune() {
	ctx, cancel := context.WithTimeout(s.baseCtx, time.Minute)
	defer cancel()
	cutoff := s.now().Add(-s.opts.Retention)
	n, err := s.opts.Pruner.DeleteBefore(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Error("Failed to prune notification history")
		return
	}
	s.logger.WithField("deleted", n).Info("Pruned notification history")
}

// Stop cancels any in-flight cycle and waits for running jobs to return.
func (s *WatchScheduler) Stop() {
	s.logger.Info("Stopping watch scheduler...")
	s.cancel()
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Watch scheduler gracefully stopped.")
}
