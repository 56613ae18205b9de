package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/talentops/hireflow/pkg/log"
	"github.com/talentops/hireflow/pkg/models"
	"github.com/talentops/hireflow/pkg/notifications"
	"github.com/talentops/hireflow/pkg/persistence"
	"github.com/talentops/hireflow/pkg/workflow"
)

// Onboarding tracks a new hire's checklist progress through the shared
// workflow machine.
type Onboarding struct {
	persistence persistence.Persistence
	dispatcher  notifications.Dispatcher
	logger      *slog.Logger
	validate    *validator.Validate
	clock       Clock
	machine     *workflow.Machine[models.OnboardingStatus]
}

// NewOnboarding creates the onboarding progress service.
func NewOnboarding(
	persistence persistence.Persistence,
	dispatcher notifications.Dispatcher,
	logger *slog.Logger,
	clock Clock,
) *Onboarding {
	return &Onboarding{
		persistence: persistence,
		dispatcher:  dispatcher,
		logger:      log.Named(logger, "onboarding"),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		clock:       orSystemClock(clock),
		machine:     workflow.New(models.OnboardingTransitions),
	}
}

// CreateOnboardingRequest describes a new onboarding record.
type CreateOnboardingRequest struct {
	EmployeeID string    `json:"employee_id" validate:"required"`
	DueDate    time.Time `json:"due_date"    validate:"required"`
	TaskLabels []string  `json:"task_labels" validate:"required,min=1,dive,required"`
}

// Create stores a new record in not_started with a fresh checklist.
func (s *Onboarding) Create(ctx context.Context, req CreateOnboardingRequest) (*models.Onboarding, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	now := s.clock()
	tasks := make([]models.ChecklistItem, 0, len(req.TaskLabels))

	for _, label := range req.TaskLabels {
		tasks = append(tasks, models.ChecklistItem{
			ID:    uuid.New().String(),
			Label: label,
		})
	}

	record := &models.Onboarding{
		ID:         uuid.New().String(),
		EmployeeID: req.EmployeeID,
		Status:     models.OnboardingStatusNotStarted,
		DueDate:    req.DueDate,
		Tasks:      tasks,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := record.Timeline.Append("created", "onboarding record created", now); err != nil {
		return nil, err
	}

	if err := s.persistence.Onboarding().Create(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// Start moves the record from not_started to in_progress.
func (s *Onboarding) Start(ctx context.Context, id string) (*models.Onboarding, error) {
	return s.persistence.Onboarding().Update(ctx, id, func(record *models.Onboarding) error {
		return s.machine.Transition(record, models.OnboardingStatusInProgress, "onboarding started", s.clock())
	})
}

// ToggleTask flips one checklist item and records the change on the
// timeline. Records in a terminal state reject edits.
func (s *Onboarding) ToggleTask(ctx context.Context, id, taskID string) (*models.Onboarding, error) {
	return s.persistence.Onboarding().Update(ctx, id, func(record *models.Onboarding) error {
		if s.machine.IsTerminal(record.Status) {
			return fmt.Errorf("%w: onboarding is %s", ErrTerminalState, record.Status)
		}

		for i := range record.Tasks {
			if record.Tasks[i].ID != taskID {
				continue
			}

			record.Tasks[i].Done = !record.Tasks[i].Done

			kind := "task_unchecked"
			if record.Tasks[i].Done {
				kind = "task_checked"
			}

			now := s.clock()
			record.UpdatedAt = now

			_, err := record.Timeline.Append(kind, record.Tasks[i].Label, now)

			return err
		}

		return fmt.Errorf("%w: %s", ErrChecklistItemNotFound, taskID)
	})
}

// MarkCompleted finishes onboarding. Every checklist item must be done.
func (s *Onboarding) MarkCompleted(ctx context.Context, id string) (*models.Onboarding, error) {
	return s.persistence.Onboarding().Update(ctx, id, func(record *models.Onboarding) error {
		if !record.AllTasksDone() {
			return ErrChecklistIncomplete
		}

		return s.machine.Transition(record, models.OnboardingStatusCompleted, "onboarding completed", s.clock())
	})
}

// Resume moves an overdue record back to in_progress.
func (s *Onboarding) Resume(ctx context.Context, id string) (*models.Onboarding, error) {
	return s.persistence.Onboarding().Update(ctx, id, func(record *models.Onboarding) error {
		return s.machine.Transition(record, models.OnboardingStatusInProgress, "onboarding resumed", s.clock())
	})
}

// Archive retires a completed record while preserving its history.
func (s *Onboarding) Archive(ctx context.Context, id string) (*models.Onboarding, error) {
	return s.persistence.Onboarding().Update(ctx, id, func(record *models.Onboarding) error {
		return s.machine.Transition(record, models.OnboardingStatusArchived, "onboarding archived", s.clock())
	})
}

// MarkOverdue flags an in-progress record past its due date. Invoked by the
// sweeper; a record concurrently moved elsewhere surfaces InvalidTransition
// for the caller to treat as a no-op.
func (s *Onboarding) MarkOverdue(ctx context.Context, id string, now time.Time) (*models.Onboarding, error) {
	reason := fmt.Sprintf("onboarding past due date, flagged on %s", now.Format(time.RFC3339))

	updated, err := s.persistence.Onboarding().Update(ctx, id, func(record *models.Onboarding) error {
		return s.machine.Transition(record, models.OnboardingStatusOverdue, reason, now)
	})
	if err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		err := s.dispatcher.Dispatch(ctx, notifications.Notification{
			Kind:       notifications.OnboardingOverdue,
			EntityID:   updated.ID,
			Recipient:  updated.EmployeeID,
			OccurredAt: now,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to dispatch notification",
				"kind", notifications.OnboardingOverdue, "onboarding_id", updated.ID, "error", err)
		}
	}

	return updated, nil
}

// Get returns one record for display.
func (s *Onboarding) Get(ctx context.Context, id string) (*models.Onboarding, error) {
	return s.persistence.Onboarding().GetByID(ctx, id)
}

// List returns every record.
func (s *Onboarding) List(ctx context.Context) ([]*models.Onboarding, error) {
	return s.persistence.Onboarding().List(ctx)
}
