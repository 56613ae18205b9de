// Package file provides a file-based persistence implementation. Each entity
// is stored as one JSON document under <root>/<kind>/<id>.json, which keeps
// the store inspectable during development and trivially portable.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/talentops/hireflow/pkg/models"
	"github.com/talentops/hireflow/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root       string
	interviews *interviewRepository
	offers     *offerRepository
	onboarding *onboardingRepository
	tasks      *taskRepository
}

// NewPersistence creates a file store rooted at the given directory. A
// leading file:// scheme is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root: cleanRoot,
		interviews: &interviewRepository{
			store: newStore(cleanRoot, "interviews", "interview", persistence.ErrInterviewNotFound,
				func() *models.Interview { return &models.Interview{} },
				func(i *models.Interview) string { return i.ID },
				func(i *models.Interview) { i.Version++ }),
		},
		offers: &offerRepository{
			store: newStore(cleanRoot, "offers", "offer", persistence.ErrOfferNotFound,
				func() *models.Offer { return &models.Offer{} },
				func(o *models.Offer) string { return o.ID },
				func(o *models.Offer) { o.Version++ }),
		},
		onboarding: &onboardingRepository{
			store: newStore(cleanRoot, "onboarding", "onboarding", persistence.ErrOnboardingNotFound,
				func() *models.Onboarding { return &models.Onboarding{} },
				func(o *models.Onboarding) string { return o.ID },
				func(o *models.Onboarding) { o.Version++ }),
		},
		tasks: &taskRepository{
			store: newStore(cleanRoot, "tasks", "task", persistence.ErrTaskNotFound,
				func() *models.Task { return &models.Task{} },
				func(t *models.Task) string { return t.ID },
				func(t *models.Task) { t.Version++ }),
		},
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (p *Persistence) Close(_ context.Context) error { return nil }

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (p *Persistence) Interviews() persistence.InterviewRepository { return p.interviews }

func (p *Persistence) Offers() persistence.OfferRepository { return p.offers }

func (p *Persistence) Onboarding() persistence.OnboardingRepository { return p.onboarding }

func (p *Persistence) Tasks() persistence.TaskRepository { return p.tasks }

// store handles the JSON-per-entity plumbing for one entity kind. The mutex
// serializes writers so Update is atomic at the process level.
type store[T any] struct {
	mu       sync.RWMutex
	dir      string
	kind     string
	notFound error
	blank    func() T
	idOf     func(T) string
	bump     func(T)
}

func newStore[T any](root, subdir, kind string, notFound error, blank func() T, idOf func(T) string, bump func(T)) *store[T] {
	return &store[T]{
		dir:      filepath.Join(root, subdir),
		kind:     kind,
		notFound: notFound,
		blank:    blank,
		idOf:     idOf,
		bump:     bump,
	}
}

func (s *store[T]) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *store[T]) read(id string) (T, error) {
	var zero T

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return zero, s.notFound
		}

		return zero, fmt.Errorf("failed to read %s %s: %w", s.kind, id, err)
	}

	item := s.blank()
	if err := json.Unmarshal(data, item); err != nil {
		return zero, fmt.Errorf("failed to decode %s %s: %w", s.kind, id, err)
	}

	return item, nil
}

func (s *store[T]) write(item T) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", s.kind, err)
	}

	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.kind, err)
	}

	id := s.idOf(item)
	if err := os.WriteFile(s.path(id), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s %s: %w", s.kind, id, err)
	}

	return nil
}

func (s *store[T]) getByID(ctx context.Context, id string) (T, error) {
	var zero T

	if err := persistence.CheckContext(ctx, "GetByID", s.kind, id); err != nil {
		return zero, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	item, err := s.read(id)
	if err != nil {
		return zero, persistence.NewEntityError("GetByID", s.kind, id, err)
	}

	return item, nil
}

func (s *store[T]) list(ctx context.Context, keep func(T) bool) ([]T, error) {
	if err := persistence.CheckContext(ctx, "List", s.kind, ""); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.readAll(keep)
}

// readAll loads every document in the kind directory. Callers must hold at
// least the read lock.
func (s *store[T]) readAll(keep func(T) bool) ([]T, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []T{}, nil
		}

		return nil, persistence.NewEntityError("List", s.kind, "", err)
	}

	out := make([]T, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		item, err := s.read(strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, persistence.NewEntityError("List", s.kind, name, err)
		}

		if keep == nil || keep(item) {
			out = append(out, item)
		}
	}

	return out, nil
}

func (s *store[T]) create(ctx context.Context, item T) error {
	id := s.idOf(item)

	if err := persistence.CheckContext(ctx, "Create", s.kind, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(id)); err == nil {
		return persistence.NewEntityError("Create", s.kind, id, persistence.ErrAlreadyExists)
	}

	if err := s.write(item); err != nil {
		return persistence.NewEntityError("Create", s.kind, id, err)
	}

	return nil
}

// createValidated runs check against every stored document while holding
// the write lock, then writes. The lock spans the snapshot and the write,
// so no conflicting document can land in between.
func (s *store[T]) createValidated(ctx context.Context, item T, check func([]T) error) error {
	id := s.idOf(item)

	if err := persistence.CheckContext(ctx, "CreateValidated", s.kind, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(id)); err == nil {
		return persistence.NewEntityError("CreateValidated", s.kind, id, persistence.ErrAlreadyExists)
	}

	existing, err := s.readAll(nil)
	if err != nil {
		return persistence.NewEntityError("CreateValidated", s.kind, id, err)
	}

	if err := check(existing); err != nil {
		return err
	}

	if err := s.write(item); err != nil {
		return persistence.NewEntityError("CreateValidated", s.kind, id, err)
	}

	return nil
}

func (s *store[T]) updateValidated(ctx context.Context, id string, mutate func(T) error, check func([]T) error) (T, error) {
	var zero T

	if err := persistence.CheckContext(ctx, "UpdateValidated", s.kind, id); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.read(id)
	if err != nil {
		return zero, persistence.NewEntityError("UpdateValidated", s.kind, id, err)
	}

	existing, err := s.readAll(nil)
	if err != nil {
		return zero, persistence.NewEntityError("UpdateValidated", s.kind, id, err)
	}

	if err := check(existing); err != nil {
		return zero, err
	}

	if err := mutate(item); err != nil {
		return zero, err
	}

	s.bump(item)

	if err := s.write(item); err != nil {
		return zero, persistence.NewEntityError("UpdateValidated", s.kind, id, err)
	}

	return item, nil
}

func (s *store[T]) update(ctx context.Context, id string, mutate func(T) error) (T, error) {
	var zero T

	if err := persistence.CheckContext(ctx, "Update", s.kind, id); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.read(id)
	if err != nil {
		return zero, persistence.NewEntityError("Update", s.kind, id, err)
	}

	if err := mutate(item); err != nil {
		return zero, err
	}

	s.bump(item)

	if err := s.write(item); err != nil {
		return zero, persistence.NewEntityError("Update", s.kind, id, err)
	}

	return item, nil
}

type interviewRepository struct {
	store *store[*models.Interview]
}

func (r *interviewRepository) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	return r.store.getByID(ctx, id)
}

func (r *interviewRepository) List(ctx context.Context) ([]*models.Interview, error) {
	return r.store.list(ctx, nil)
}

func (r *interviewRepository) ListByInterviewer(ctx context.Context, interviewerID string) ([]*models.Interview, error) {
	return r.store.list(ctx, func(i *models.Interview) bool {
		return slices.Contains(i.InterviewerIDs, interviewerID)
	})
}

func (r *interviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	return r.store.create(ctx, interview)
}

func (r *interviewRepository) Update(ctx context.Context, id string, mutate func(*models.Interview) error) (*models.Interview, error) {
	return r.store.update(ctx, id, mutate)
}

func (r *interviewRepository) CreateValidated(ctx context.Context, interview *models.Interview, check func([]*models.Interview) error) error {
	return r.store.createValidated(ctx, interview, check)
}

func (r *interviewRepository) UpdateValidated(ctx context.Context, id string, mutate func(*models.Interview) error, check func([]*models.Interview) error) (*models.Interview, error) {
	return r.store.updateValidated(ctx, id, mutate, check)
}

type offerRepository struct {
	store *store[*models.Offer]
}

func (r *offerRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	return r.store.getByID(ctx, id)
}

func (r *offerRepository) List(ctx context.Context) ([]*models.Offer, error) {
	return r.store.list(ctx, nil)
}

func (r *offerRepository) ListByStatus(ctx context.Context, status models.OfferStatus) ([]*models.Offer, error) {
	return r.store.list(ctx, func(o *models.Offer) bool {
		return o.Status == status
	})
}

func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	return r.store.create(ctx, offer)
}

func (r *offerRepository) Update(ctx context.Context, id string, mutate func(*models.Offer) error) (*models.Offer, error) {
	return r.store.update(ctx, id, mutate)
}

type onboardingRepository struct {
	store *store[*models.Onboarding]
}

func (r *onboardingRepository) GetByID(ctx context.Context, id string) (*models.Onboarding, error) {
	return r.store.getByID(ctx, id)
}

func (r *onboardingRepository) List(ctx context.Context) ([]*models.Onboarding, error) {
	return r.store.list(ctx, nil)
}

func (r *onboardingRepository) ListByStatus(ctx context.Context, status models.OnboardingStatus) ([]*models.Onboarding, error) {
	return r.store.list(ctx, func(o *models.Onboarding) bool {
		return o.Status == status
	})
}

func (r *onboardingRepository) Create(ctx context.Context, record *models.Onboarding) error {
	return r.store.create(ctx, record)
}

func (r *onboardingRepository) Update(ctx context.Context, id string, mutate func(*models.Onboarding) error) (*models.Onboarding, error) {
	return r.store.update(ctx, id, mutate)
}

type taskRepository struct {
	store *store[*models.Task]
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	return r.store.getByID(ctx, id)
}

func (r *taskRepository) List(ctx context.Context) ([]*models.Task, error) {
	return r.store.list(ctx, nil)
}

func (r *taskRepository) ListByStatus(ctx context.Context, status models.TaskStatus) ([]*models.Task, error) {
	return r.store.list(ctx, func(t *models.Task) bool {
		return t.Status == status
	})
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.store.create(ctx, task)
}

func (r *taskRepository) Update(ctx context.Context, id string, mutate func(*models.Task) error) (*models.Task, error) {
	return r.store.update(ctx, id, mutate)
}
