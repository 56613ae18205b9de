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
	"github.com/talentops/hireflow/pkg/persistence"
	"github.com/talentops/hireflow/pkg/workflow"
)

// Tasks manages standalone work items with the same machine-plus-ledger
// shape as the recruitment entities.
type Tasks struct {
	persistence persistence.Persistence
	logger      *slog.Logger
	validate    *validator.Validate
	clock       Clock
	machine     *workflow.Machine[models.TaskStatus]
}

// NewTasks creates the task service.
func NewTasks(persistence persistence.Persistence, logger *slog.Logger, clock Clock) *Tasks {
	return &Tasks{
		persistence: persistence,
		logger:      log.Named(logger, "tasks"),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		clock:       orSystemClock(clock),
		machine:     workflow.New(models.TaskTransitions),
	}
}

// CreateTaskRequest describes a new work item.
type CreateTaskRequest struct {
	Title      string     `json:"title" validate:"required"`
	AssigneeID string     `json:"assignee_id"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

// Create stores a new open task.
func (s *Tasks) Create(ctx context.Context, req CreateTaskRequest) (*models.Task, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	now := s.clock()
	task := &models.Task{
		ID:         uuid.New().String(),
		Title:      req.Title,
		AssigneeID: req.AssigneeID,
		Status:     models.TaskStatusOpen,
		DueDate:    req.DueDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := task.Timeline.Append("created", "task created", now); err != nil {
		return nil, err
	}

	if err := s.persistence.Tasks().Create(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// Start moves the task to in_progress.
func (s *Tasks) Start(ctx context.Context, id string) (*models.Task, error) {
	return s.transition(ctx, id, models.TaskStatusInProgress, "task started")
}

// MarkBlocked records that the task cannot proceed.
func (s *Tasks) MarkBlocked(ctx context.Context, id, reason string) (*models.Task, error) {
	if reason == "" {
		reason = "task blocked"
	}

	return s.transition(ctx, id, models.TaskStatusBlocked, reason)
}

// MarkDone finishes the task.
func (s *Tasks) MarkDone(ctx context.Context, id string) (*models.Task, error) {
	return s.transition(ctx, id, models.TaskStatusDone, "task completed")
}

// Cancel abandons the task while preserving its history.
func (s *Tasks) Cancel(ctx context.Context, id, reason string) (*models.Task, error) {
	if reason == "" {
		reason = "task canceled"
	}

	return s.transition(ctx, id, models.TaskStatusCanceled, reason)
}

// FlagOverdue records a past-due note on the timeline without changing
// status. Invoked by the sweeper; repeated sweeps are no-ops once flagged.
func (s *Tasks) FlagOverdue(ctx context.Context, id string, now time.Time) (*models.Task, error) {
	return s.persistence.Tasks().Update(ctx, id, func(task *models.Task) error {
		if s.machine.IsTerminal(task.Status) {
			return fmt.Errorf("%w: task is %s", ErrTerminalState, task.Status)
		}

		if task.OverdueFlaggedAt != nil {
			return ErrAlreadyFlagged
		}

		flagged := now
		task.OverdueFlaggedAt = &flagged
		task.UpdatedAt = now

		_, err := task.Timeline.Append("overdue", "task past its due date", now)

		return err
	})
}

// Get returns one task for display.
func (s *Tasks) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.persistence.Tasks().GetByID(ctx, id)
}

// List returns every task.
func (s *Tasks) List(ctx context.Context) ([]*models.Task, error) {
	return s.persistence.Tasks().List(ctx)
}

func (s *Tasks) transition(ctx context.Context, id string, target models.TaskStatus, reason string) (*models.Task, error) {
	return s.persistence.Tasks().Update(ctx, id, func(task *models.Task) error {
		return s.machine.Transition(task, target, reason, s.clock())
	})
}
