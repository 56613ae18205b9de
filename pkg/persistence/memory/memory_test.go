package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentops/hireflow/pkg/models"
	"github.com/talentops/hireflow/pkg/persistence"
)

func sampleInterview(id string) *models.Interview {
	return &models.Interview{
		ID:              id,
		ApplicantID:     "applicant-1",
		InterviewerIDs:  []string{"alice", "bob"},
		Status:          models.InterviewStatusScheduled,
		Date:            "2024-03-01",
		StartTime:       "09:00",
		DurationMinutes: 45,
	}
}

func sampleOffer(id string, status models.OfferStatus) *models.Offer {
	return &models.Offer{
		ID:          id,
		ApplicantID: "applicant-1",
		Position:    "Backend Engineer",
		Status:      status,
		ExpiryDate:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestInterviews_CreateAndGet(t *testing.T) {
	store := NewPersistence()

	require.NoError(t, store.Interviews().Create(t.Context(), sampleInterview("int-1")))

	got, err := store.Interviews().GetByID(t.Context(), "int-1")
	require.NoError(t, err)
	assert.Equal(t, "applicant-1", got.ApplicantID)
	assert.Equal(t, []string{"alice", "bob"}, got.InterviewerIDs)
}

func TestInterviews_CreateDuplicate(t *testing.T) {
	store := NewPersistence()

	require.NoError(t, store.Interviews().Create(t.Context(), sampleInterview("int-1")))

	err := store.Interviews().Create(t.Context(), sampleInterview("int-1"))
	require.ErrorIs(t, err, persistence.ErrAlreadyExists)
}

func TestInterviews_GetUnknown(t *testing.T) {
	store := NewPersistence()

	_, err := store.Interviews().GetByID(t.Context(), "missing")
	require.ErrorIs(t, err, persistence.ErrInterviewNotFound)
	assert.True(t, persistence.IsNotFound(err))
}

func TestInterviews_ListByInterviewer(t *testing.T) {
	store := NewPersistence()

	first := sampleInterview("int-1")
	second := sampleInterview("int-2")
	second.InterviewerIDs = []string{"carol"}

	require.NoError(t, store.Interviews().Create(t.Context(), first))
	require.NoError(t, store.Interviews().Create(t.Context(), second))

	mine, err := store.Interviews().ListByInterviewer(t.Context(), "alice")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "int-1", mine[0].ID)

	none, err := store.Interviews().ListByInterviewer(t.Context(), "dave")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInterviews_UpdateBumpsVersion(t *testing.T) {
	store := NewPersistence()

	require.NoError(t, store.Interviews().Create(t.Context(), sampleInterview("int-1")))

	updated, err := store.Interviews().Update(t.Context(), "int-1", func(i *models.Interview) error {
		i.Notes = "great candidate"

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Version)
	assert.Equal(t, "great candidate", updated.Notes)

	again, err := store.Interviews().Update(t.Context(), "int-1", func(*models.Interview) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, int64(2), again.Version)
}

func TestInterviews_UpdateFailureWritesNothing(t *testing.T) {
	store := NewPersistence()

	require.NoError(t, store.Interviews().Create(t.Context(), sampleInterview("int-1")))

	boom := errors.New("boom")

	_, err := store.Interviews().Update(t.Context(), "int-1", func(i *models.Interview) error {
		i.Notes = "should not persist"

		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Interviews().GetByID(t.Context(), "int-1")
	require.NoError(t, err)
	assert.Empty(t, got.Notes)
	assert.Equal(t, int64(0), got.Version)
}

func TestInterviews_SnapshotsAreCopies(t *testing.T) {
	store := NewPersistence()

	require.NoError(t, store.Interviews().Create(t.Context(), sampleInterview("int-1")))

	got, err := store.Interviews().GetByID(t.Context(), "int-1")
	require.NoError(t, err)

	got.InterviewerIDs[0] = "mallory"
	got.Notes = "tampered"

	fresh, err := store.Interviews().GetByID(t.Context(), "int-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", fresh.InterviewerIDs[0])
	assert.Empty(t, fresh.Notes)
}

func TestInterviews_CreateValidated(t *testing.T) {
	store := NewPersistence()

	require.NoError(t, store.Interviews().Create(t.Context(), sampleInterview("int-1")))

	var seen int

	err := store.Interviews().CreateValidated(t.Context(), sampleInterview("int-2"), func(existing []*models.Interview) error {
		seen = len(existing)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)

	all, err := store.Interviews().List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInterviews_CreateValidatedCheckFailureWritesNothing(t *testing.T) {
	store := NewPersistence()

	boom := errors.New("slot taken")

	err := store.Interviews().CreateValidated(t.Context(), sampleInterview("int-1"), func([]*models.Interview) error {
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, err := store.Interviews().List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInterviews_UpdateValidated(t *testing.T) {
	store := NewPersistence()

	require.NoError(t, store.Interviews().Create(t.Context(), sampleInterview("int-1")))

	boom := errors.New("slot taken")

	_, err := store.Interviews().UpdateValidated(t.Context(), "int-1",
		func(i *models.Interview) error {
			i.StartTime = "10:00"

			return nil
		},
		func([]*models.Interview) error { return boom })
	require.ErrorIs(t, err, boom)

	stored, err := store.Interviews().GetByID(t.Context(), "int-1")
	require.NoError(t, err)
	assert.Equal(t, "09:00", stored.StartTime)

	updated, err := store.Interviews().UpdateValidated(t.Context(), "int-1",
		func(i *models.Interview) error {
			i.StartTime = "10:00"

			return nil
		},
		func(existing []*models.Interview) error {
			require.Len(t, existing, 1)

			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, "10:00", updated.StartTime)
	assert.Equal(t, int64(1), updated.Version)
}

func TestOffers_ListByStatus(t *testing.T) {
	store := NewPersistence()

	require.NoError(t, store.Offers().Create(t.Context(), sampleOffer("off-1", models.OfferStatusDraft)))
	require.NoError(t, store.Offers().Create(t.Context(), sampleOffer("off-2", models.OfferStatusSent)))
	require.NoError(t, store.Offers().Create(t.Context(), sampleOffer("off-3", models.OfferStatusSent)))

	sent, err := store.Offers().ListByStatus(t.Context(), models.OfferStatusSent)
	require.NoError(t, err)
	assert.Len(t, sent, 2)

	drafts, err := store.Offers().ListByStatus(t.Context(), models.OfferStatusDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "off-1", drafts[0].ID)
}

func TestExpiredContextSurfacesTimeout(t *testing.T) {
	store := NewPersistence()

	ctx, cancel := context.WithDeadline(t.Context(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := store.Offers().GetByID(ctx, "off-1")
	require.Error(t, err)
	assert.True(t, persistence.IsTimeout(err))
}

func TestHealthCheckAndClose(t *testing.T) {
	store := NewPersistence()

	require.NoError(t, store.HealthCheck(t.Context()))
	require.NoError(t, store.Close(t.Context()))
}
