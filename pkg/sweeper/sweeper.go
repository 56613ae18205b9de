// Package sweeper implements the time-triggered transition scanner. On a
// recurring schedule it expires sent offers whose expiry date has passed,
// flags in-progress onboarding records past their due date, and notes
// overdue tasks. Forced transitions go through the same workflow machine as
// user-driven ones, so a concurrent move to a terminal state degrades to a
// logged no-op rather than an error.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/talentops/hireflow/pkg/log"
	"github.com/talentops/hireflow/pkg/models"
	"github.com/talentops/hireflow/pkg/persistence"
	"github.com/talentops/hireflow/pkg/services"
)

// DefaultSchedule runs one sweep per minute.
const DefaultSchedule = "@every 1m"

// Result records one forced transition applied during a sweep.
type Result struct {
	EntityID string `json:"entity_id"`
	Applied  string `json:"applied"`
}

// Sweeper periodically scans for entities whose wall-clock deadline has
// passed. One pass completes before the next is scheduled, so sweeps never
// overlap.
type Sweeper struct {
	persistence persistence.Persistence
	offers      *services.Offers
	onboarding  *services.Onboarding
	tasks       *services.Tasks
	logger      *slog.Logger
	clock       services.Clock
	schedule    cron.Schedule

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// New creates a sweeper. spec is a cron expression or descriptor
// (e.g. "@every 1m"); an empty spec uses DefaultSchedule.
func New(
	persistence persistence.Persistence,
	offers *services.Offers,
	onboarding *services.Onboarding,
	tasks *services.Tasks,
	logger *slog.Logger,
	clock services.Clock,
	spec string,
) (*Sweeper, error) {
	if spec == "" {
		spec = DefaultSchedule
	}

	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}

	if clock == nil {
		clock = services.SystemClock
	}

	return &Sweeper{
		persistence: persistence,
		offers:      offers,
		onboarding:  onboarding,
		tasks:       tasks,
		logger:      log.Named(logger, "sweeper"),
		clock:       clock,
		schedule:    sched,
	}, nil
}

// Start launches the recurring sweep loop. Calling Start on a running
// sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.done = make(chan struct{})
	s.started = true

	go s.run(ctx)

	s.logger.InfoContext(ctx, "Sweeper started")

	return nil
}

// Stop halts the sweep loop. A sweep already in flight finishes first.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	close(s.done)
	s.started = false

	s.logger.InfoContext(ctx, "Sweeper stopped")

	return nil
}

func (s *Sweeper) run(ctx context.Context) {
	for {
		now := s.clock()
		next := s.schedule.Next(now)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-s.done:
			timer.Stop()

			return
		case <-ctx.Done():
			timer.Stop()

			return
		case <-timer.C:
			if _, err := s.Sweep(ctx, s.clock()); err != nil {
				s.logger.ErrorContext(ctx, "Sweep pass failed", "error", err)
			}
		}
	}
}

// Sweep performs one full pass and returns every transition it applied.
// Safe to call repeatedly: a second pass with no intervening mutation finds
// nothing left to do.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) ([]Result, error) {
	results := make([]Result, 0)

	expired, err := s.expireOffers(ctx, now)
	if err != nil {
		return results, err
	}

	results = append(results, expired...)

	overdue, err := s.flagOverdueOnboarding(ctx, now)
	if err != nil {
		return results, err
	}

	results = append(results, overdue...)

	tasks, err := s.flagOverdueTasks(ctx, now)
	if err != nil {
		return results, err
	}

	results = append(results, tasks...)

	if len(results) > 0 {
		s.logger.InfoContext(ctx, "Sweep applied transitions", "count", len(results))
	}

	return results, nil
}

// expireOffers forces sent offers past their expiry date to expired. Only
// sent offers are expirable; everything else is skipped by the status query.
func (s *Sweeper) expireOffers(ctx context.Context, now time.Time) ([]Result, error) {
	sent, err := s.persistence.Offers().ListByStatus(ctx, models.OfferStatusSent)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent offers: %w", err)
	}

	var results []Result

	for _, offer := range sent {
		if !offer.ExpiryDate.Before(now) {
			continue
		}

		if _, err := s.offers.Expire(ctx, offer.ID, now); err != nil {
			// Another writer moved the offer to a terminal state between
			// the read and the write; the machine already rejected the
			// forced transition, so there is nothing to undo.
			if services.IsInvalidTransition(err) {
				s.logger.DebugContext(ctx, "Offer no longer expirable, skipping",
					"offer_id", offer.ID)

				continue
			}

			return results, err
		}

		results = append(results, Result{EntityID: offer.ID, Applied: string(models.OfferStatusExpired)})
	}

	return results, nil
}

func (s *Sweeper) flagOverdueOnboarding(ctx context.Context, now time.Time) ([]Result, error) {
	inProgress, err := s.persistence.Onboarding().ListByStatus(ctx, models.OnboardingStatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to list in-progress onboarding: %w", err)
	}

	var results []Result

	for _, record := range inProgress {
		if !record.DueDate.Before(now) {
			continue
		}

		if _, err := s.onboarding.MarkOverdue(ctx, record.ID, now); err != nil {
			if services.IsInvalidTransition(err) {
				s.logger.DebugContext(ctx, "Onboarding no longer flaggable, skipping",
					"onboarding_id", record.ID)

				continue
			}

			return results, err
		}

		results = append(results, Result{EntityID: record.ID, Applied: string(models.OnboardingStatusOverdue)})
	}

	return results, nil
}

func (s *Sweeper) flagOverdueTasks(ctx context.Context, now time.Time) ([]Result, error) {
	all, err := s.persistence.Tasks().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var results []Result

	for _, task := range all {
		if task.DueDate == nil || !task.DueDate.Before(now) || task.OverdueFlaggedAt != nil {
			continue
		}

		if _, err := s.tasks.FlagOverdue(ctx, task.ID, now); err != nil {
			if errors.Is(err, services.ErrAlreadyFlagged) || errors.Is(err, services.ErrTerminalState) {
				continue
			}

			return results, err
		}

		results = append(results, Result{EntityID: task.ID, Applied: "overdue_flagged"})
	}

	return results, nil
}
