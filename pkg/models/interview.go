// Package models defines the core domain models for the recruitment workflow engine.
package models

import "time"

// InterviewStatus represents the lifecycle state of an interview.
type InterviewStatus string

const (
	InterviewStatusScheduled   InterviewStatus = "scheduled"
	InterviewStatusRescheduled InterviewStatus = "rescheduled"
	InterviewStatusCompleted   InterviewStatus = "completed"
	InterviewStatusCanceled    InterviewStatus = "canceled"
	InterviewStatusNoShow      InterviewStatus = "no_show"
)

// InterviewTransitions is the allowed-transition table for interviews.
// Statuses with no outgoing edges are terminal.
var InterviewTransitions = map[InterviewStatus][]InterviewStatus{
	InterviewStatusScheduled: {
		InterviewStatusCompleted,
		InterviewStatusCanceled,
		InterviewStatusRescheduled,
		InterviewStatusNoShow,
	},
	InterviewStatusRescheduled: {
		InterviewStatusCompleted,
		InterviewStatusCanceled,
		InterviewStatusNoShow,
	},
	InterviewStatusCompleted: {},
	InterviewStatusCanceled:  {},
	InterviewStatusNoShow:    {},
}

// Interview represents a scheduled conversation between an applicant and
// one or more interviewers occupying a [start, start+duration) slot.
type Interview struct {
	ID             string          `json:"id"`
	ApplicantID    string          `json:"applicant_id"    validate:"required"`
	InterviewerIDs []string        `json:"interviewer_ids" validate:"required,min=1,dive,required"`
	Status         InterviewStatus `json:"status"`

	// Date is the calendar day of the slot in 2006-01-02 form; StartTime is
	// the wall-clock start in 15:04 form. Conflict detection works in
	// minutes since midnight, so the two are kept separate on purpose.
	Date            string `json:"date"             validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time"       validate:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1"`

	Notes    string   `json:"notes,omitempty"`
	Timeline Timeline `json:"timeline"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Version is bumped by the store on every successful write and is used
	// for optimistic concurrency checks.
	Version int64 `json:"version"`
}

func (i *Interview) CurrentStatus() InterviewStatus { return i.Status }

func (i *Interview) SetStatus(status InterviewStatus, at time.Time) {
	i.Status = status
	i.UpdatedAt = at
}

func (i *Interview) Ledger() *Timeline { return &i.Timeline }

// Clone returns a deep copy, so store snapshots cannot be mutated by callers.
func (i *Interview) Clone() *Interview {
	out := *i
	out.InterviewerIDs = append([]string(nil), i.InterviewerIDs...)
	out.Timeline = i.Timeline.clone()

	return &out
}
