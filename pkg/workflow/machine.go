// Package workflow provides the generic status-transition machine shared by
// every recruitment entity. A machine is parameterized by an entity type's
// allowed-transition table; each successful transition mutates the status,
// touches the updated-at timestamp, and records exactly one timeline event.
package workflow

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/talentops/hireflow/pkg/models"
)

// Entity is the shape every workflow-managed model exposes to the machine.
type Entity[S ~string] interface {
	CurrentStatus() S
	SetStatus(status S, at time.Time)
	Ledger() *models.Timeline
}

// InvalidTransitionError reports a status change not present in the
// transition table. The entity is left unmodified.
type InvalidTransitionError struct {
	Current   string
	Attempted string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.Current, e.Attempted)
}

// IsInvalidTransition checks whether err is an invalid-transition error.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError

	return errors.As(err, &ite)
}

// Machine validates and applies status transitions for one entity type.
type Machine[S ~string] struct {
	table map[S][]S
}

// New creates a machine from an allowed-transition table. Statuses mapped to
// an empty set (or absent from the table) are terminal.
func New[S ~string](table map[S][]S) *Machine[S] {
	return &Machine[S]{table: table}
}

// CanTransition reports whether the table permits moving from one status to another.
func (m *Machine[S]) CanTransition(from, to S) bool {
	return slices.Contains(m.table[from], to)
}

// IsTerminal reports whether a status has no outgoing transitions.
func (m *Machine[S]) IsTerminal(status S) bool {
	return len(m.table[status]) == 0
}

// Transition moves the entity to target, stamping it with at and appending a
// single timeline event whose kind is the target status. When reason is
// empty a default message naming both statuses is recorded. On failure the
// entity is untouched.
func (m *Machine[S]) Transition(entity Entity[S], target S, reason string, at time.Time) error {
	current := entity.CurrentStatus()

	if !m.CanTransition(current, target) {
		return &InvalidTransitionError{
			Current:   string(current),
			Attempted: string(target),
		}
	}

	if reason == "" {
		reason = fmt.Sprintf("status changed from %s to %s", current, target)
	}

	// The target status came from the table, so the kind is never empty and
	// the append cannot fail after validation.
	if _, err := entity.Ledger().Append(string(target), reason, at); err != nil {
		return err
	}

	entity.SetStatus(target, at)

	return nil
}
