package redis

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentops/hireflow/pkg/models"
	"github.com/talentops/hireflow/pkg/persistence"
)

func newTestPersistence(t *testing.T) (*Persistence, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	p, err := NewPersistence("redis://" + mr.Addr())
	require.NoError(t, err)

	t.Cleanup(func() { _ = p.Close(t.Context()) })

	return p, mr
}

// secondClient simulates a concurrent writer on its own connection, so its
// writes invalidate WATCHed keys the way a second process would.
func secondClient(t *testing.T, mr *miniredis.Miniredis) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func sampleOffer(id string, status models.OfferStatus) *models.Offer {
	return &models.Offer{
		ID:          id,
		ApplicantID: "applicant-1",
		Position:    "Backend Engineer",
		Salary:      "85000 EUR",
		Status:      status,
		ExpiryDate:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func sampleInterview(id string) *models.Interview {
	return &models.Interview{
		ID:              id,
		ApplicantID:     "applicant-1",
		InterviewerIDs:  []string{"alice"},
		Status:          models.InterviewStatusScheduled,
		Date:            "2024-03-01",
		StartTime:       "09:00",
		DurationMinutes: 45,
	}
}

func TestNewPersistence_RejectsBadURL(t *testing.T) {
	_, err := NewPersistence("not a url")
	require.Error(t, err)
}

func TestOffers_RoundTrip(t *testing.T) {
	p, _ := newTestPersistence(t)

	require.NoError(t, p.Offers().Create(t.Context(), sampleOffer("off-1", models.OfferStatusDraft)))

	got, err := p.Offers().GetByID(t.Context(), "off-1")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got.Position)
	assert.Equal(t, models.OfferStatusDraft, got.Status)
	assert.True(t, got.ExpiryDate.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
}

func TestOffers_CreateDuplicate(t *testing.T) {
	p, _ := newTestPersistence(t)

	require.NoError(t, p.Offers().Create(t.Context(), sampleOffer("off-1", models.OfferStatusDraft)))

	err := p.Offers().Create(t.Context(), sampleOffer("off-1", models.OfferStatusDraft))
	require.ErrorIs(t, err, persistence.ErrAlreadyExists)
}

func TestOffers_GetUnknownMapsRedisNil(t *testing.T) {
	p, _ := newTestPersistence(t)

	_, err := p.Offers().GetByID(t.Context(), "missing")
	require.ErrorIs(t, err, persistence.ErrOfferNotFound)
	assert.True(t, persistence.IsNotFound(err))
}

func TestOffers_ListByStatus(t *testing.T) {
	p, _ := newTestPersistence(t)

	require.NoError(t, p.Offers().Create(t.Context(), sampleOffer("off-1", models.OfferStatusDraft)))
	require.NoError(t, p.Offers().Create(t.Context(), sampleOffer("off-2", models.OfferStatusSent)))
	require.NoError(t, p.Offers().Create(t.Context(), sampleOffer("off-3", models.OfferStatusSent)))

	sent, err := p.Offers().ListByStatus(t.Context(), models.OfferStatusSent)
	require.NoError(t, err)
	assert.Len(t, sent, 2)
}

func TestOffers_UpdateBumpsVersion(t *testing.T) {
	p, _ := newTestPersistence(t)

	require.NoError(t, p.Offers().Create(t.Context(), sampleOffer("off-1", models.OfferStatusDraft)))

	updated, err := p.Offers().Update(t.Context(), "off-1", func(o *models.Offer) error {
		o.Salary = "90000 EUR"

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Version)

	got, err := p.Offers().GetByID(t.Context(), "off-1")
	require.NoError(t, err)
	assert.Equal(t, "90000 EUR", got.Salary)
	assert.Equal(t, int64(1), got.Version)
}

func TestOffers_UpdateUnknown(t *testing.T) {
	p, _ := newTestPersistence(t)

	_, err := p.Offers().Update(t.Context(), "missing", func(*models.Offer) error { return nil })
	require.ErrorIs(t, err, persistence.ErrOfferNotFound)
}

func TestOffers_UpdateMutateFailureWritesNothing(t *testing.T) {
	p, _ := newTestPersistence(t)

	require.NoError(t, p.Offers().Create(t.Context(), sampleOffer("off-1", models.OfferStatusDraft)))

	boom := errors.New("boom")

	_, err := p.Offers().Update(t.Context(), "off-1", func(o *models.Offer) error {
		o.Salary = "should not persist"

		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := p.Offers().GetByID(t.Context(), "off-1")
	require.NoError(t, err)
	assert.Equal(t, "85000 EUR", got.Salary)
	assert.Equal(t, int64(0), got.Version)
}

func TestOffers_UpdateRetriesOnContention(t *testing.T) {
	p, mr := newTestPersistence(t)
	other := secondClient(t, mr)

	require.NoError(t, p.Offers().Create(t.Context(), sampleOffer("off-1", models.OfferStatusDraft)))

	overwritten, err := json.Marshal(sampleOffer("off-1", models.OfferStatusSent))
	require.NoError(t, err)

	attempts := 0

	updated, err := p.Offers().Update(t.Context(), "off-1", func(o *models.Offer) error {
		attempts++

		// The first attempt loses its WATCH to a concurrent writer.
		if attempts == 1 {
			require.NoError(t, other.Set(t.Context(), "hireflow:offer:off-1", overwritten, 0).Err())
		}

		o.Salary = "90000 EUR"

		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, attempts)
	// The retry mutated the concurrent writer's value, not the stale read.
	assert.Equal(t, models.OfferStatusSent, updated.Status)
	assert.Equal(t, "90000 EUR", updated.Salary)
}

func TestOffers_UpdateContentionExhaustsRetries(t *testing.T) {
	p, mr := newTestPersistence(t)
	other := secondClient(t, mr)

	require.NoError(t, p.Offers().Create(t.Context(), sampleOffer("off-1", models.OfferStatusDraft)))

	overwritten, err := json.Marshal(sampleOffer("off-1", models.OfferStatusDraft))
	require.NoError(t, err)

	attempts := 0

	_, err = p.Offers().Update(t.Context(), "off-1", func(o *models.Offer) error {
		attempts++

		require.NoError(t, other.Set(t.Context(), "hireflow:offer:off-1", overwritten, 0).Err())

		return nil
	})
	require.ErrorIs(t, err, persistence.ErrVersionConflict)
	assert.True(t, persistence.IsVersionConflict(err))
	assert.Equal(t, updateRetries, attempts)
}

func TestInterviews_CreateValidated(t *testing.T) {
	p, _ := newTestPersistence(t)

	require.NoError(t, p.Interviews().Create(t.Context(), sampleInterview("int-1")))

	taken := errors.New("slot taken")

	err := p.Interviews().CreateValidated(t.Context(), sampleInterview("int-2"), func(existing []*models.Interview) error {
		require.Len(t, existing, 1)
		assert.Equal(t, "int-1", existing[0].ID)

		return taken
	})
	require.ErrorIs(t, err, taken)

	all, err := p.Interviews().List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, p.Interviews().CreateValidated(t.Context(), sampleInterview("int-2"), func([]*models.Interview) error {
		return nil
	}))

	all, err = p.Interviews().List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInterviews_CreateValidatedRerunsCheckOnConcurrentWrite(t *testing.T) {
	p, mr := newTestPersistence(t)
	other := secondClient(t, mr)

	checks := 0

	err := p.Interviews().CreateValidated(t.Context(), sampleInterview("int-1"), func([]*models.Interview) error {
		checks++

		// A write of the kind lands between the snapshot and the commit.
		if checks == 1 {
			require.NoError(t, other.Incr(t.Context(), "hireflow:interview:rev").Err())
		}

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, checks)

	_, err = p.Interviews().GetByID(t.Context(), "int-1")
	require.NoError(t, err)
}

func TestInterviews_UpdateValidated(t *testing.T) {
	p, _ := newTestPersistence(t)

	require.NoError(t, p.Interviews().Create(t.Context(), sampleInterview("int-1")))

	taken := errors.New("slot taken")

	_, err := p.Interviews().UpdateValidated(t.Context(), "int-1",
		func(i *models.Interview) error {
			i.StartTime = "10:00"

			return nil
		},
		func([]*models.Interview) error { return taken })
	require.ErrorIs(t, err, taken)

	stored, err := p.Interviews().GetByID(t.Context(), "int-1")
	require.NoError(t, err)
	assert.Equal(t, "09:00", stored.StartTime)

	updated, err := p.Interviews().UpdateValidated(t.Context(), "int-1",
		func(i *models.Interview) error {
			i.StartTime = "10:00"

			return nil
		},
		func([]*models.Interview) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, "10:00", updated.StartTime)
	assert.Equal(t, int64(1), updated.Version)
}

func TestInterviews_UpdateValidatedUnknown(t *testing.T) {
	p, _ := newTestPersistence(t)

	_, err := p.Interviews().UpdateValidated(t.Context(), "missing",
		func(*models.Interview) error { return nil },
		func([]*models.Interview) error { return nil })
	require.ErrorIs(t, err, persistence.ErrInterviewNotFound)
}

func TestHealthCheck(t *testing.T) {
	p, mr := newTestPersistence(t)

	require.NoError(t, p.HealthCheck(t.Context()))

	mr.Close()

	require.Error(t, p.HealthCheck(t.Context()))
}
