package persistence

import (
	"context"
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrInterviewNotFound indicates an interview was not found by the given identifier.
	ErrInterviewNotFound = errors.New("interview not found")

	// ErrOfferNotFound indicates an offer was not found by the given identifier.
	ErrOfferNotFound = errors.New("offer not found")

	// ErrOnboardingNotFound indicates an onboarding record was not found by the given identifier.
	ErrOnboardingNotFound = errors.New("onboarding record not found")

	// ErrTaskNotFound indicates a task was not found by the given identifier.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAlreadyExists indicates an entity with the same identifier already exists.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrVersionConflict indicates a concurrent write beat an optimistic update.
	ErrVersionConflict = errors.New("entity version conflict")

	// ErrTimeout indicates a store operation exceeded its deadline and made no change.
	ErrTimeout = errors.New("store operation timed out")
)

// EntityError wraps storage errors with operation context.
type EntityError struct {
	Op   string // Operation being performed (e.g., "GetByID", "Update")
	Kind string // Entity kind (e.g., "interview", "offer")
	ID   string // Entity ID if applicable
	Err  error  // Underlying error
}

func (e *EntityError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s operation failed for %s: %v", e.Op, e.Kind, e.Err)
	}

	return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for entity errors.
func (e *EntityError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewEntityError creates a new entity error with context.
func NewEntityError(op, kind, id string, err error) *EntityError {
	return &EntityError{Op: op, Kind: kind, ID: id, Err: err}
}

// IsNotFound checks if an error indicates any entity was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInterviewNotFound) ||
		errors.Is(err, ErrOfferNotFound) ||
		errors.Is(err, ErrOnboardingNotFound) ||
		errors.Is(err, ErrTaskNotFound)
}

// IsVersionConflict checks if an error indicates a lost optimistic write.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsTimeout checks if an error indicates an exceeded store deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// CheckContext maps a canceled or expired context to the timeout sentinel so
// callers see one taxonomy regardless of backend. Implementations call it at
// operation entry, before any state is touched.
func CheckContext(ctx context.Context, op, kind, id string) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewEntityError(op, kind, id, fmt.Errorf("%w: %w", ErrTimeout, err))
	}

	return NewEntityError(op, kind, id, err)
}
