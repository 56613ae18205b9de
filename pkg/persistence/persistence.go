// Package persistence provides the data storage abstraction for recruitment
// workflow entities. Every mutation funnels through a repository's atomic
// Update so there is a single logical writer per entity.
package persistence

import (
	"context"

	"github.com/talentops/hireflow/pkg/models"
)

// InterviewRepository stores interviews.
type InterviewRepository interface {
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	List(ctx context.Context) ([]*models.Interview, error)

	// ListByInterviewer returns a snapshot of every interview that names the
	// interviewer, regardless of status. Conflict detection filters
	// terminal entries itself.
	ListByInterviewer(ctx context.Context, interviewerID string) ([]*models.Interview, error)

	Create(ctx context.Context, interview *models.Interview) error

	// Update applies mutate to the current stored entity under the store's
	// write lock and persists the result, bumping its version. When mutate
	// returns an error nothing is written and the error is passed through.
	Update(ctx context.Context, id string, mutate func(*models.Interview) error) (*models.Interview, error)

	// CreateValidated persists the interview only after check passes against
	// a snapshot of every stored interview taken inside the store's write
	// boundary. Stores with concurrent writers re-run the check when another
	// write lands between the snapshot and the commit, so no conflicting
	// slot can slip in. A check error aborts the create and passes through.
	CreateValidated(ctx context.Context, interview *models.Interview, check func(existing []*models.Interview) error) error

	// UpdateValidated is Update with the same snapshot check as
	// CreateValidated, run before mutate inside the write boundary.
	UpdateValidated(ctx context.Context, id string, mutate func(*models.Interview) error, check func(existing []*models.Interview) error) (*models.Interview, error)
}

// OfferRepository stores offers.
type OfferRepository interface {
	GetByID(ctx context.Context, id string) (*models.Offer, error)
	List(ctx context.Context) ([]*models.Offer, error)
	ListByStatus(ctx context.Context, status models.OfferStatus) ([]*models.Offer, error)
	Create(ctx context.Context, offer *models.Offer) error
	Update(ctx context.Context, id string, mutate func(*models.Offer) error) (*models.Offer, error)
}

// OnboardingRepository stores onboarding records.
type OnboardingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Onboarding, error)
	List(ctx context.Context) ([]*models.Onboarding, error)
	ListByStatus(ctx context.Context, status models.OnboardingStatus) ([]*models.Onboarding, error)
	Create(ctx context.Context, record *models.Onboarding) error
	Update(ctx context.Context, id string, mutate func(*models.Onboarding) error) (*models.Onboarding, error)
}

// TaskRepository stores tasks.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	ListByStatus(ctx context.Context, status models.TaskStatus) ([]*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, id string, mutate func(*models.Task) error) (*models.Task, error)
}

// Persistence aggregates the entity repositories behind one handle.
type Persistence interface {
	Interviews() InterviewRepository
	Offers() OfferRepository
	Onboarding() OnboardingRepository
	Tasks() TaskRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
