package app

import (
	"context"
	"fmt"
	"sort"

	"railwatch/internal/domain/watch"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrWatchAlreadyExists = fmt.Errorf("an identical watch window already exists")
var ErrWatchNotFound = fmt.Errorf("watch window not found")

// AdminService is the management layer over the registry. When a repository
// is configured every change is persisted as well.
type AdminService struct {
	registry        *WatchRegistry
	repo            watch.Repository // nil disables persistence
	adminTelegramID int64
	logger          *logrus.Entry
}

func NewAdminService(registry *WatchRegistry, repo watch.Repository, adminID int64, logger *logrus.Entry) *AdminService {
	return &AdminService{
		registry:        registry,
		repo:            repo,
		adminTelegramID: adminID,
		logger:          logger,
	}
}

func (s *AdminService) authorize(performingAdminID int64) error {
	if performingAdminID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	return nil
}

// AddWatch validates and registers a new window.
func (s *AdminService) AddWatch(ctx context.Context, performingAdminID int64, w watch.TimeWindow) error {
	if err := s.authorize(performingAdminID); err != nil {
		return err
	}

	added, err := s.registry.Add(w)
	if err != nil {
		return err
	}
	if !added {
		return ErrWatchAlreadyExists
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, w); err != nil {
			s.registry.Remove(w)
			return fmt.Errorf("failed to persist watch window: %w", err)
		}
	}
	s.logger.WithField("watch", w.String()).Info("Watch window added")
	return nil
}

// RemoveWatch deletes the window equal in value to w.
func (s *AdminService) RemoveWatch(ctx context.Context, performingAdminID int64, w watch.TimeWindow) error {
	if err := s.authorize(performingAdminID); err != nil {
		return err
	}
	if _, ok := s.registry.Get(w); !ok {
		return ErrWatchNotFound
	}
	// The registry only changes once the repository has.
	if s.repo != nil {
		if err := s.repo.Delete(ctx, w.Key()); err != nil {
			return fmt.Errorf("failed to delete persisted watch window: %w", err)
		}
	}
	if !s.registry.Remove(w) {
		return ErrWatchNotFound
	}
	s.logger.WithField("watch", w.String()).Info("Watch window removed")
	return nil
}

// SetWatchState pauses or resumes a window without removing it.
func (s *AdminService) SetWatchState(ctx context.Context, performingAdminID int64, w watch.TimeWindow, state watch.State) error {
	if err := s.authorize(performingAdminID); err != nil {
		return err
	}
	if _, ok := s.registry.Get(w); !ok {
		return ErrWatchNotFound
	}
	if s.repo != nil {
		if err := s.repo.UpdateState(ctx, w.Key(), state); err != nil {
			return fmt.Errorf("failed to persist watch state: %w", err)
		}
	}
	if !s.registry.SetState(w, state) {
		return ErrWatchNotFound
	}
	s.logger.WithFields(logrus.Fields{"watch": w.String(), "state": state}).Info("Watch window state changed")
	return nil
}

// ClearWatches empties the registry.
func (s *AdminService) ClearWatches(ctx context.Context, performingAdminID int64) error {
	if err := s.authorize(performingAdminID); err != nil {
		return err
	}
	if s.repo != nil {
		if err := s.repo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to clear persisted watch windows: %w", err)
		}
	}
	s.registry.Clear()
	s.logger.Info("All watch windows cleared")
	return nil
}

// ListWatches returns the registered windows sorted for display.
func (s *AdminService) ListWatches(ctx context.Context, performingAdminID int64) ([]watch.TimeWindow, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	windows := s.registry.All()
	sort.Slice(windows, func(i, j int) bool {
		a, b := windows[i], windows[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Key() < b.Key()
	})
	return windows, nil
}

// Restore loads windows into the registry without persisting them again.
// Invalid windows are logged and skipped. It returns the number added.
func (s *AdminService) Restore(windows []watch.TimeWindow) int {
	added := 0
	for _, w := range windows {
		ok, err := s.registry.Add(w)
		if err != nil {
			s.logger.WithError(err).WithField("watch", w.String()).Warn("Skipping invalid stored watch window")
			continue
		}
		if ok {
			added++
		}
	}
	return added
}

// LoadPersisted rebuilds the registry from the repository.
func (s *AdminService) LoadPersisted(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}
	windows, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load watch windows: %w", err)
	}
	return s.Restore(windows), nil
}

// Seed adds windows from a seed file and persists the new ones.
func (s *AdminService) Seed(ctx context.Context, windows []watch.TimeWindow) (int, error) {
	added := 0
	for _, w := range windows {
		err := s.AddWatch(ctx, s.adminTelegramID, w)
		switch {
		case err == ErrWatchAlreadyExists:
			continue
		case err != nil:
			return added, fmt.Errorf("failed to seed watch %s: %w", w, err)
		}
		added++
	}
	return added, nil
}
