package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jarvis/internal/domain"
)

const DefaultPollInterval = 30 * time.Second

// SplitDue partitions reminders into those due at now and those still
// pending, keeping the original order in both.
func SplitDue(reminders []domain.Reminder, now time.Time) (due, pending []domain.Reminder) {
	for _, r := range reminders {
		if r.Due(now) {
			due = append(due, r)
		} else {
			pending = append(pending, r)
		}
	}
	return due, pending
}

// Scheduler polls the reminder store and announces reminders whose due
// time has passed. Firing may lag the due time by up to one interval.
type Scheduler struct {
	store    ReminderStore
	notifier Notifier
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewScheduler(store ReminderStore, notifier Notifier, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Scheduler{
		store:    store,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// SetClock replaces the time source used by Tick.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Tick fires every due reminder once and drops it from the store. The store
// is rewritten only when at least one reminder fired.
func (s *Scheduler) Tick(ctx context.Context) ([]domain.Reminder, error) {
	now := s.now()

	var fired []domain.Reminder
	err := s.store.UpdateReminders(ctx, func(current []domain.Reminder) ([]domain.Reminder, bool) {
		due, pending := SplitDue(current, now)
		fired = due
		return pending, len(due) > 0
	})
	if err != nil {
		return nil, fmt.Errorf("updating reminders: %w", err)
	}

	for _, r := range fired {
		s.logger.Info("reminder due", "text", r.Text, "due_at", r.DueAt)
		if err := s.notifier.Notify(ctx, "Reminder: "+r.Text); err != nil {
			s.logger.Error("announcing reminder", "error", err, "text", r.Text)
		}
	}

	return fired, nil
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("reminder scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				s.logger.Error("reminder tick failed", "error", err)
			}
		}
	}
}

// Start runs the scheduler in a background goroutine. Run's error is logged
// unless it is the cancellation that stopped it.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("reminder scheduler stopped", "error", err)
		}
	}()
}
