package models

import "time"

// TaskStatus represents the lifecycle state of a standalone work item.
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCanceled   TaskStatus = "canceled"
)

// TaskTransitions is the allowed-transition table for tasks.
var TaskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusOpen: {
		TaskStatusInProgress,
		TaskStatusDone,
		TaskStatusCanceled,
	},
	TaskStatusInProgress: {
		TaskStatusDone,
		TaskStatusBlocked,
		TaskStatusCanceled,
	},
	TaskStatusBlocked: {
		TaskStatusInProgress,
		TaskStatusCanceled,
	},
	TaskStatusDone:     {},
	TaskStatusCanceled: {},
}

// Task is a generic assignable work item carrying the same
// state-machine-with-ledger shape as the recruitment entities.
type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title" validate:"required"`
	AssigneeID string     `json:"assignee_id,omitempty"`
	Status     TaskStatus `json:"status"`
	DueDate    *time.Time `json:"due_date,omitempty"`

	// OverdueFlaggedAt records when the sweeper last noted the task as
	// past due, so repeated sweeps do not spam the timeline.
	OverdueFlaggedAt *time.Time `json:"overdue_flagged_at,omitempty"`

	Timeline Timeline `json:"timeline"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

func (t *Task) CurrentStatus() TaskStatus { return t.Status }

func (t *Task) SetStatus(status TaskStatus, at time.Time) {
	t.Status = status
	t.UpdatedAt = at
}

func (t *Task) Ledger() *Timeline { return &t.Timeline }

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	out := *t

	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}

	if t.OverdueFlaggedAt != nil {
		flagged := *t.OverdueFlaggedAt
		out.OverdueFlaggedAt = &flagged
	}

	out.Timeline = t.Timeline.clone()

	return &out
}
