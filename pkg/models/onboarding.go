package models

import "time"

// OnboardingStatus represents the lifecycle state of an onboarding record.
type OnboardingStatus string

const (
	OnboardingStatusNotStarted OnboardingStatus = "not_started"
	OnboardingStatusInProgress OnboardingStatus = "in_progress"
	OnboardingStatusOverdue    OnboardingStatus = "overdue"
	OnboardingStatusCompleted  OnboardingStatus = "completed"
	OnboardingStatusArchived   OnboardingStatus = "archived"
)

// OnboardingTransitions is the allowed-transition table for onboarding
// records. Overdue is recoverable: work resumed past the due date moves
// back to in_progress.
var OnboardingTransitions = map[OnboardingStatus][]OnboardingStatus{
	OnboardingStatusNotStarted: {
		OnboardingStatusInProgress,
	},
	OnboardingStatusInProgress: {
		OnboardingStatusCompleted,
		OnboardingStatusOverdue,
	},
	OnboardingStatusOverdue: {
		OnboardingStatusInProgress,
		OnboardingStatusCompleted,
	},
	OnboardingStatusCompleted: {
		OnboardingStatusArchived,
	},
	OnboardingStatusArchived: {},
}

// ChecklistItem is a single step of an onboarding checklist.
type ChecklistItem struct {
	ID    string `json:"id"`
	Label string `json:"label" validate:"required"`
	Done  bool   `json:"done"`
}

// Onboarding tracks a new hire's progress through a task checklist.
type Onboarding struct {
	ID         string           `json:"id"`
	EmployeeID string           `json:"employee_id" validate:"required"`
	Status     OnboardingStatus `json:"status"`

	// DueDate is the deadline for finishing the checklist. The sweeper
	// flags in_progress records past this point as overdue.
	DueDate time.Time       `json:"due_date" validate:"required"`
	Tasks   []ChecklistItem `json:"tasks"    validate:"dive"`

	Timeline Timeline `json:"timeline"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

func (o *Onboarding) CurrentStatus() OnboardingStatus { return o.Status }

func (o *Onboarding) SetStatus(status OnboardingStatus, at time.Time) {
	o.Status = status
	o.UpdatedAt = at
}

func (o *Onboarding) Ledger() *Timeline { return &o.Timeline }

// AllTasksDone reports whether every checklist item is checked off.
func (o *Onboarding) AllTasksDone() bool {
	for _, task := range o.Tasks {
		if !task.Done {
			return false
		}
	}

	return true
}

// Clone returns a deep copy of the onboarding record.
func (o *Onboarding) Clone() *Onboarding {
	out := *o
	out.Tasks = append([]ChecklistItem(nil), o.Tasks...)
	out.Timeline = o.Timeline.clone()

	return &out
}
