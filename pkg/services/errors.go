// Package services provides the mutation surface of the recruitment
// workflow engine: the interview scheduler, the offer lifecycle manager,
// the onboarding tracker, and the task manager. All status changes funnel
// through the generic workflow machine so every mutation is audited.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/talentops/hireflow/pkg/persistence"
	"github.com/talentops/hireflow/pkg/schedule"
	"github.com/talentops/hireflow/pkg/workflow"
)

// Persistence sentinels re-exported for callers that only import services.
var (
	ErrInterviewNotFound  = persistence.ErrInterviewNotFound
	ErrOfferNotFound      = persistence.ErrOfferNotFound
	ErrOnboardingNotFound = persistence.ErrOnboardingNotFound
	ErrTaskNotFound       = persistence.ErrTaskNotFound
)

// Business logic errors.
var (
	// ErrInvalidRequest indicates a request failed structural validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTerminalState indicates an attempt to edit an entity whose status
	// permits no further changes.
	ErrTerminalState = errors.New("entity is in a terminal state")

	// ErrChecklistIncomplete indicates onboarding completion was requested
	// with unchecked tasks remaining.
	ErrChecklistIncomplete = errors.New("onboarding checklist has unfinished tasks")

	// ErrChecklistItemNotFound indicates an unknown checklist item id.
	ErrChecklistItemNotFound = errors.New("checklist item not found")

	// ErrAlreadyFlagged indicates a task already carries an overdue flag.
	ErrAlreadyFlagged = errors.New("task already flagged overdue")
)

// ConflictError reports interviewer double-booking on schedule or
// reschedule. It carries every clashing interviewer and interval so the
// caller can surface a precise message.
type ConflictError struct {
	Conflicts []schedule.Conflict
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Conflicts))
	seen := make(map[string]bool)

	for _, c := range e.Conflicts {
		if !seen[c.InterviewerID] {
			seen[c.InterviewerID] = true

			ids = append(ids, c.InterviewerID)
		}
	}

	return fmt.Sprintf("scheduling conflict for interviewer(s) %s", strings.Join(ids, ", "))
}

// IsConflict checks whether err reports an interviewer double-booking.
func IsConflict(err error) bool {
	var ce *ConflictError

	return errors.As(err, &ce)
}

// IsNotFound checks whether err reports an unknown entity id.
func IsNotFound(err error) bool {
	return persistence.IsNotFound(err)
}

// IsInvalidTransition checks whether err reports a rejected status change.
func IsInvalidTransition(err error) bool {
	return workflow.IsInvalidTransition(err)
}

// IsTimeout checks whether err reports an exceeded store deadline.
func IsTimeout(err error) bool {
	return persistence.IsTimeout(err)
}

// IsValidationError checks whether err should surface as a bad request.
func IsValidationError(err error) bool {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return true
	}

	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrTerminalState) ||
		errors.Is(err, ErrChecklistIncomplete) ||
		errors.Is(err, ErrChecklistItemNotFound)
}
