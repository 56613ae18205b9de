// Package memory provides an in-memory persistence implementation. It is the
// default store for tests and single-process deployments; every write happens
// under a per-collection mutex and hands out deep copies so callers can never
// mutate stored state directly.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/talentops/hireflow/pkg/models"
	"github.com/talentops/hireflow/pkg/persistence"
)

// collection is a mutex-guarded map of one entity kind. clone must deep-copy
// and bump must increment the entity's version counter.
type collection[T any] struct {
	mu       sync.RWMutex
	items    map[string]T
	kind     string
	notFound error
	clone    func(T) T
	bump     func(T)
}

func newCollection[T any](kind string, notFound error, clone func(T) T, bump func(T)) *collection[T] {
	return &collection[T]{
		items:    make(map[string]T),
		kind:     kind,
		notFound: notFound,
		clone:    clone,
		bump:     bump,
	}
}

func (c *collection[T]) getByID(ctx context.Context, id string) (T, error) {
	var zero T

	if err := persistence.CheckContext(ctx, "GetByID", c.kind, id); err != nil {
		return zero, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		return zero, persistence.NewEntityError("GetByID", c.kind, id, c.notFound)
	}

	return c.clone(item), nil
}

func (c *collection[T]) list(ctx context.Context, keep func(T) bool) ([]T, error) {
	if err := persistence.CheckContext(ctx, "List", c.kind, ""); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.items))

	for _, item := range c.items {
		if keep == nil || keep(item) {
			out = append(out, c.clone(item))
		}
	}

	return out, nil
}

func (c *collection[T]) create(ctx context.Context, id string, item T) error {
	if err := persistence.CheckContext(ctx, "Create", c.kind, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[id]; exists {
		return persistence.NewEntityError("Create", c.kind, id, persistence.ErrAlreadyExists)
	}

	c.items[id] = c.clone(item)

	return nil
}

// snapshot returns a deep copy of every stored entity. Callers must hold
// the collection lock.
func (c *collection[T]) snapshot() []T {
	out := make([]T, 0, len(c.items))

	for _, item := range c.items {
		out = append(out, c.clone(item))
	}

	return out
}

// createValidated runs check against a snapshot of the whole collection
// while holding the write lock, then inserts. No other writer can slip a
// row in between the check and the insert.
func (c *collection[T]) createValidated(ctx context.Context, id string, item T, check func([]T) error) error {
	if err := persistence.CheckContext(ctx, "CreateValidated", c.kind, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[id]; exists {
		return persistence.NewEntityError("CreateValidated", c.kind, id, persistence.ErrAlreadyExists)
	}

	if err := check(c.snapshot()); err != nil {
		return err
	}

	c.items[id] = c.clone(item)

	return nil
}

func (c *collection[T]) updateValidated(ctx context.Context, id string, mutate func(T) error, check func([]T) error) (T, error) {
	var zero T

	if err := persistence.CheckContext(ctx, "UpdateValidated", c.kind, id); err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[id]
	if !ok {
		return zero, persistence.NewEntityError("UpdateValidated", c.kind, id, c.notFound)
	}

	if err := check(c.snapshot()); err != nil {
		return zero, err
	}

	next := c.clone(item)

	if err := mutate(next); err != nil {
		return zero, err
	}

	c.bump(next)
	c.items[id] = next

	return c.clone(next), nil
}

// update runs mutate on a copy of the stored entity while holding the write
// lock, so user-driven transitions and sweeper-forced transitions are
// serialized. Nothing is written when mutate fails.
func (c *collection[T]) update(ctx context.Context, id string, mutate func(T) error) (T, error) {
	var zero T

	if err := persistence.CheckContext(ctx, "Update", c.kind, id); err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[id]
	if !ok {
		return zero, persistence.NewEntityError("Update", c.kind, id, c.notFound)
	}

	next := c.clone(item)

	if err := mutate(next); err != nil {
		return zero, err
	}

	c.bump(next)
	c.items[id] = next

	return c.clone(next), nil
}

// Persistence implements persistence.Persistence entirely in memory.
type Persistence struct {
	interviews *interviewRepository
	offers     *offerRepository
	onboarding *onboardingRepository
	tasks      *taskRepository
}

// NewPersistence creates an empty in-memory store.
func NewPersistence() *Persistence {
	return &Persistence{
		interviews: &interviewRepository{
			collection: newCollection("interview", persistence.ErrInterviewNotFound,
				(*models.Interview).Clone, func(i *models.Interview) { i.Version++ }),
		},
		offers: &offerRepository{
			collection: newCollection("offer", persistence.ErrOfferNotFound,
				(*models.Offer).Clone, func(o *models.Offer) { o.Version++ }),
		},
		onboarding: &onboardingRepository{
			collection: newCollection("onboarding", persistence.ErrOnboardingNotFound,
				(*models.Onboarding).Clone, func(o *models.Onboarding) { o.Version++ }),
		},
		tasks: &taskRepository{
			collection: newCollection("task", persistence.ErrTaskNotFound,
				(*models.Task).Clone, func(t *models.Task) { t.Version++ }),
		},
	}
}

func (p *Persistence) Interviews() persistence.InterviewRepository { return p.interviews }

func (p *Persistence) Offers() persistence.OfferRepository { return p.offers }

func (p *Persistence) Onboarding() persistence.OnboardingRepository { return p.onboarding }

func (p *Persistence) Tasks() persistence.TaskRepository { return p.tasks }

func (p *Persistence) HealthCheck(_ context.Context) error { return nil }

func (p *Persistence) Close(_ context.Context) error { return nil }

type interviewRepository struct {
	collection *collection[*models.Interview]
}

func (r *interviewRepository) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	return r.collection.getByID(ctx, id)
}

func (r *interviewRepository) List(ctx context.Context) ([]*models.Interview, error) {
	return r.collection.list(ctx, nil)
}

func (r *interviewRepository) ListByInterviewer(ctx context.Context, interviewerID string) ([]*models.Interview, error) {
	return r.collection.list(ctx, func(i *models.Interview) bool {
		return slices.Contains(i.InterviewerIDs, interviewerID)
	})
}

func (r *interviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	return r.collection.create(ctx, interview.ID, interview)
}

func (r *interviewRepository) Update(ctx context.Context, id string, mutate func(*models.Interview) error) (*models.Interview, error) {
	return r.collection.update(ctx, id, mutate)
}

func (r *interviewRepository) CreateValidated(ctx context.Context, interview *models.Interview, check func([]*models.Interview) error) error {
	return r.collection.createValidated(ctx, interview.ID, interview, check)
}

func (r *interviewRepository) UpdateValidated(ctx context.Context, id string, mutate func(*models.Interview) error, check func([]*models.Interview) error) (*models.Interview, error) {
	return r.collection.updateValidated(ctx, id, mutate, check)
}

type offerRepository struct {
	collection *collection[*models.Offer]
}

func (r *offerRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	return r.collection.getByID(ctx, id)
}

func (r *offerRepository) List(ctx context.Context) ([]*models.Offer, error) {
	return r.collection.list(ctx, nil)
}

func (r *offerRepository) ListByStatus(ctx context.Context, status models.OfferStatus) ([]*models.Offer, error) {
	return r.collection.list(ctx, func(o *models.Offer) bool {
		return o.Status == status
	})
}

func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	return r.collection.create(ctx, offer.ID, offer)
}

func (r *offerRepository) Update(ctx context.Context, id string, mutate func(*models.Offer) error) (*models.Offer, error) {
	return r.collection.update(ctx, id, mutate)
}

type onboardingRepository struct {
	collection *collection[*models.Onboarding]
}

func (r *onboardingRepository) GetByID(ctx context.Context, id string) (*models.Onboarding, error) {
	return r.collection.getByID(ctx, id)
}

func (r *onboardingRepository) List(ctx context.Context) ([]*models.Onboarding, error) {
	return r.collection.list(ctx, nil)
}

func (r *onboardingRepository) ListByStatus(ctx context.Context, status models.OnboardingStatus) ([]*models.Onboarding, error) {
	return r.collection.list(ctx, func(o *models.Onboarding) bool {
		return o.Status == status
	})
}

func (r *onboardingRepository) Create(ctx context.Context, record *models.Onboarding) error {
	return r.collection.create(ctx, record.ID, record)
}

func (r *onboardingRepository) Update(ctx context.Context, id string, mutate func(*models.Onboarding) error) (*models.Onboarding, error) {
	return r.collection.update(ctx, id, mutate)
}

type taskRepository struct {
	collection *collection[*models.Task]
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	return r.collection.getByID(ctx, id)
}

func (r *taskRepository) List(ctx context.Context) ([]*models.Task, error) {
	return r.collection.list(ctx, nil)
}

func (r *taskRepository) ListByStatus(ctx context.Context, status models.TaskStatus) ([]*models.Task, error) {
	return r.collection.list(ctx, func(t *models.Task) bool {
		return t.Status == status
	})
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.collection.create(ctx, task.ID, task)
}

func (r *taskRepository) Update(ctx context.Context, id string, mutate func(*models.Task) error) (*models.Task, error) {
	return r.collection.update(ctx, id, mutate)
}
