// Package redis provides a Redis-backed persistence implementation. Entities
// are stored as JSON strings under hireflow:<kind>:<id> with a per-kind id
// set for listing; Update runs under WATCH so a concurrent writer forces an
// optimistic retry instead of a lost write.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/talentops/hireflow/pkg/models"
	"github.com/talentops/hireflow/pkg/persistence"
)

const (
	keyPrefix = "hireflow"

	// updateRetries bounds the WATCH retry loop; contention on a single
	// entity beyond this is treated as a version conflict.
	updateRetries = 5
)

// Persistence implements the persistence.Persistence interface on Redis.
type Persistence struct {
	client     *redis.Client
	interviews *interviewRepository
	offers     *offerRepository
	onboarding *onboardingRepository
	tasks      *taskRepository
}

// NewPersistence connects to the Redis instance named by url
// (redis://host:port/db form).
func NewPersistence(url string) (*Persistence, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	p := &Persistence{client: client}
	p.interviews = &interviewRepository{
		store: newStore(client, "interview", persistence.ErrInterviewNotFound,
			func() *models.Interview { return &models.Interview{} },
			func(i *models.Interview) string { return i.ID },
			func(i *models.Interview) { i.Version++ }),
	}
	p.offers = &offerRepository{
		store: newStore(client, "offer", persistence.ErrOfferNotFound,
			func() *models.Offer { return &models.Offer{} },
			func(o *models.Offer) string { return o.ID },
			func(o *models.Offer) { o.Version++ }),
	}
	p.onboarding = &onboardingRepository{
		store: newStore(client, "onboarding", persistence.ErrOnboardingNotFound,
			func() *models.Onboarding { return &models.Onboarding{} },
			func(o *models.Onboarding) string { return o.ID },
			func(o *models.Onboarding) { o.Version++ }),
	}
	p.tasks = &taskRepository{
		store: newStore(client, "task", persistence.ErrTaskNotFound,
			func() *models.Task { return &models.Task{} },
			func(t *models.Task) string { return t.ID },
			func(t *models.Task) { t.Version++ }),
	}

	return p, nil
}

func (p *Persistence) Interviews() persistence.InterviewRepository { return p.interviews }

func (p *Persistence) Offers() persistence.OfferRepository { return p.offers }

func (p *Persistence) Onboarding() persistence.OnboardingRepository { return p.onboarding }

func (p *Persistence) Tasks() persistence.TaskRepository { return p.tasks }

// HealthCheck pings the Redis server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close releases the client connection pool.
func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

// wrapErr folds driver errors into the persistence taxonomy.
func wrapErr(op, kind, id string, notFound, err error) error {
	switch {
	case errors.Is(err, redis.Nil):
		return persistence.NewEntityError(op, kind, id, notFound)
	case errors.Is(err, context.DeadlineExceeded):
		return persistence.NewEntityError(op, kind, id, fmt.Errorf("%w: %w", persistence.ErrTimeout, err))
	default:
		return persistence.NewEntityError(op, kind, id, err)
	}
}

type store[T any] struct {
	client   *redis.Client
	kind     string
	notFound error
	blank    func() T
	idOf     func(T) string
	bump     func(T)
}

func newStore[T any](client *redis.Client, kind string, notFound error, blank func() T, idOf func(T) string, bump func(T)) *store[T] {
	return &store[T]{
		client:   client,
		kind:     kind,
		notFound: notFound,
		blank:    blank,
		idOf:     idOf,
		bump:     bump,
	}
}

func (s *store[T]) key(id string) string {
	return strings.Join([]string{keyPrefix, s.kind, id}, ":")
}

func (s *store[T]) idSetKey() string {
	return strings.Join([]string{keyPrefix, s.kind, "ids"}, ":")
}

// revKey is a per-kind write counter. Every write bumps it, and validated
// operations WATCH it, so a concurrent write of any entity of the kind
// forces the snapshot check to rerun.
func (s *store[T]) revKey() string {
	return strings.Join([]string{keyPrefix, s.kind, "rev"}, ":")
}

func (s *store[T]) decode(data string) (T, error) {
	item := s.blank()
	if err := json.Unmarshal([]byte(data), item); err != nil {
		var zero T

		return zero, fmt.Errorf("failed to decode %s: %w", s.kind, err)
	}

	return item, nil
}

func (s *store[T]) getByID(ctx context.Context, id string) (T, error) {
	var zero T

	data, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		return zero, wrapErr("GetByID", s.kind, id, s.notFound, err)
	}

	item, err := s.decode(data)
	if err != nil {
		return zero, persistence.NewEntityError("GetByID", s.kind, id, err)
	}

	return item, nil
}

func (s *store[T]) list(ctx context.Context, keep func(T) bool) ([]T, error) {
	ids, err := s.client.SMembers(ctx, s.idSetKey()).Result()
	if err != nil {
		return nil, wrapErr("List", s.kind, "", s.notFound, err)
	}

	out := make([]T, 0, len(ids))

	for _, id := range ids {
		item, err := s.getByID(ctx, id)
		if err != nil {
			// An id set member without a value means a half-removed
			// entity; skip rather than failing the whole listing.
			if errors.Is(err, s.notFound) {
				continue
			}

			return nil, err
		}

		if keep == nil || keep(item) {
			out = append(out, item)
		}
	}

	return out, nil
}

func (s *store[T]) create(ctx context.Context, item T) error {
	id := s.idOf(item)

	data, err := json.Marshal(item)
	if err != nil {
		return persistence.NewEntityError("Create", s.kind, id, err)
	}

	ok, err := s.client.SetNX(ctx, s.key(id), data, 0).Result()
	if err != nil {
		return wrapErr("Create", s.kind, id, s.notFound, err)
	}

	if !ok {
		return persistence.NewEntityError("Create", s.kind, id, persistence.ErrAlreadyExists)
	}

	if err := s.client.SAdd(ctx, s.idSetKey(), id).Err(); err != nil {
		return wrapErr("Create", s.kind, id, s.notFound, err)
	}

	if err := s.client.Incr(ctx, s.revKey()).Err(); err != nil {
		return wrapErr("Create", s.kind, id, s.notFound, err)
	}

	return nil
}

// snapshotTx reads every entity of the kind through the transaction
// connection. Members without a value are half-removed entities and are
// skipped, matching list.
func (s *store[T]) snapshotTx(ctx context.Context, tx *redis.Tx) ([]T, error) {
	ids, err := tx.SMembers(ctx, s.idSetKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	out := make([]T, 0, len(ids))

	for _, id := range ids {
		data, err := tx.Get(ctx, s.key(id)).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}

		if err != nil {
			return nil, err
		}

		item, err := s.decode(data)
		if err != nil {
			return nil, err
		}

		out = append(out, item)
	}

	return out, nil
}

// createValidated inserts the entity only after check passes against a
// snapshot of the whole kind, taken under WATCH on the kind's write
// counter. A concurrent write fails the EXEC and the check reruns against
// the fresh snapshot.
func (s *store[T]) createValidated(ctx context.Context, item T, check func([]T) error) error {
	id := s.idOf(item)

	encoded, err := json.Marshal(item)
	if err != nil {
		return persistence.NewEntityError("CreateValidated", s.kind, id, err)
	}

	txn := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, s.key(id)).Result()
		if err != nil {
			return err
		}

		if exists > 0 {
			return persistence.ErrAlreadyExists
		}

		snapshot, err := s.snapshotTx(ctx, tx)
		if err != nil {
			return err
		}

		if err := check(snapshot); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key(id), encoded, 0)
			pipe.SAdd(ctx, s.idSetKey(), id)
			pipe.Incr(ctx, s.revKey())

			return nil
		})

		return err
	}

	for range updateRetries {
		err := s.client.Watch(ctx, txn, s.revKey())
		if err == nil {
			return nil
		}

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if errors.Is(err, persistence.ErrAlreadyExists) {
			return persistence.NewEntityError("CreateValidated", s.kind, id, persistence.ErrAlreadyExists)
		}

		if errors.Is(err, context.DeadlineExceeded) {
			return wrapErr("CreateValidated", s.kind, id, s.notFound, err)
		}

		return err
	}

	return persistence.NewEntityError("CreateValidated", s.kind, id, persistence.ErrVersionConflict)
}

func (s *store[T]) updateValidated(ctx context.Context, id string, mutate func(T) error, check func([]T) error) (T, error) {
	var (
		zero   T
		result T
	)

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, s.key(id)).Result()
		if err != nil {
			return err
		}

		item, err := s.decode(data)
		if err != nil {
			return err
		}

		snapshot, err := s.snapshotTx(ctx, tx)
		if err != nil {
			return err
		}

		if err := check(snapshot); err != nil {
			return err
		}

		if err := mutate(item); err != nil {
			return err
		}

		s.bump(item)

		encoded, err := json.Marshal(item)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key(id), encoded, 0)
			pipe.Incr(ctx, s.revKey())

			return nil
		})
		if err != nil {
			return err
		}

		result = item

		return nil
	}

	for range updateRetries {
		err := s.client.Watch(ctx, txn, s.revKey())
		if err == nil {
			return result, nil
		}

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if errors.Is(err, redis.Nil) || errors.Is(err, context.DeadlineExceeded) {
			return zero, wrapErr("UpdateValidated", s.kind, id, s.notFound, err)
		}

		return zero, err
	}

	return zero, persistence.NewEntityError("UpdateValidated", s.kind, id, persistence.ErrVersionConflict)
}

func (s *store[T]) update(ctx context.Context, id string, mutate func(T) error) (T, error) {
	var (
		zero   T
		result T
	)

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, s.key(id)).Result()
		if err != nil {
			return err
		}

		item, err := s.decode(data)
		if err != nil {
			return err
		}

		if err := mutate(item); err != nil {
			return err
		}

		s.bump(item)

		encoded, err := json.Marshal(item)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key(id), encoded, 0)
			pipe.Incr(ctx, s.revKey())

			return nil
		})
		if err != nil {
			return err
		}

		result = item

		return nil
	}

	for range updateRetries {
		err := s.client.Watch(ctx, txn, s.key(id))
		if err == nil {
			return result, nil
		}

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		return zero, wrapErr("Update", s.kind, id, s.notFound, err)
	}

	return zero, persistence.NewEntityError("Update", s.kind, id, persistence.ErrVersionConflict)
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
