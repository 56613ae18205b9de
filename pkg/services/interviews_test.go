package services

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentops/hireflow/pkg/models"
	"github.com/talentops/hireflow/pkg/persistence/memory"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func fixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}

func newTestInterviews(t *testing.T) (*Interviews, *memory.Persistence) {
	t.Helper()

	store := memory.NewPersistence()
	service := NewInterviews(store, nil, testLogger(), fixedClock(testNow()))

	return service, store
}

func testNow() time.Time {
	return time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
}

func scheduleRequest(interviewers ...string) ScheduleInterviewRequest {
	return ScheduleInterviewRequest{
		ApplicantID:     "applicant-1",
		InterviewerIDs:  interviewers,
		Date:            "2024-01-10",
		StartTime:       "09:00",
		DurationMinutes: 45,
	}
}

func TestInterviews_Schedule(t *testing.T) {
	service, _ := newTestInterviews(t)

	interview, err := service.Schedule(t.Context(), scheduleRequest("alice"))
	require.NoError(t, err)
	require.NotNil(t, interview)

	assert.NotEmpty(t, interview.ID)
	assert.Equal(t, models.InterviewStatusScheduled, interview.Status)
	assert.Equal(t, testNow(), interview.CreatedAt)
	require.Len(t, interview.Timeline, 1)
	assert.Equal(t, "created", interview.Timeline[0].Kind)
}

func TestInterviews_ScheduleRejectsInvalidRequest(t *testing.T) {
	service, _ := newTestInterviews(t)

	req := scheduleRequest("alice")
	req.StartTime = "9am"

	_, err := service.Schedule(t.Context(), req)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestInterviews_ScheduleAllOrNothing(t *testing.T) {
	service, store := newTestInterviews(t)

	// Bob is busy 09:30-10:00; Alice is free.
	busy := scheduleRequest("bob")
	busy.StartTime = "09:30"
	busy.DurationMinutes = 30

	_, err := service.Schedule(t.Context(), busy)
	require.NoError(t, err)

	_, err = service.Schedule(t.Context(), scheduleRequest("alice", "bob"))
	require.Error(t, err)
	require.True(t, IsConflict(err))

	var conflictErr *ConflictError

	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, "bob", conflictErr.Conflicts[0].InterviewerID)

	// The failed operation must not have created anything.
	all, err := store.Interviews().List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInterviews_ScheduleTouchingSlots(t *testing.T) {
	service, _ := newTestInterviews(t)

	first := scheduleRequest("alice")
	first.StartTime = "09:00"
	first.DurationMinutes = 30

	_, err := service.Schedule(t.Context(), first)
	require.NoError(t, err)

	// [09:00,09:30) and [09:30,10:00) share only an endpoint.
	second := scheduleRequest("alice")
	second.StartTime = "09:30"
	second.DurationMinutes = 30

	_, err = service.Schedule(t.Context(), second)
	require.NoError(t, err)
}

func TestInterviews_RescheduleExcludesOwnSlot(t *testing.T) {
	service, _ := newTestInterviews(t)

	interview, err := service.Schedule(t.Context(), scheduleRequest("alice"))
	require.NoError(t, err)

	// Move by 15 minutes; the new slot overlaps only the interview's own
	// prior booking, which is excluded from the check.
	updated, err := service.Reschedule(t.Context(), interview.ID, RescheduleInterviewRequest{
		Date:      "2024-01-10",
		StartTime: "09:15",
	})
	require.NoError(t, err)

	assert.Equal(t, models.InterviewStatusRescheduled, updated.Status)
	assert.Equal(t, "09:15", updated.StartTime)
	require.Len(t, updated.Timeline, 2)
	assert.Equal(t, string(models.InterviewStatusRescheduled), updated.Timeline[0].Kind)
}

func TestInterviews_RescheduleConflictLeavesEntityUnchanged(t *testing.T) {
	service, store := newTestInterviews(t)

	blocker := scheduleRequest("alice")
	blocker.StartTime = "11:00"
	blocker.DurationMinutes = 60

	_, err := service.Schedule(t.Context(), blocker)
	require.NoError(t, err)

	interview, err := service.Schedule(t.Context(), scheduleRequest("alice"))
	require.NoError(t, err)

	_, err = service.Reschedule(t.Context(), interview.ID, RescheduleInterviewRequest{
		Date:      "2024-01-10",
		StartTime: "11:30",
	})
	require.True(t, IsConflict(err))

	stored, err := store.Interviews().GetByID(t.Context(), interview.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewStatusScheduled, stored.Status)
	assert.Equal(t, "09:00", stored.StartTime)
	assert.Len(t, stored.Timeline, 1)
}

func TestInterviews_ConcurrentServicesShareOneCalendar(t *testing.T) {
	// Two service instances over one store, as two API replicas would be.
	// The conflict check runs inside the store's write boundary, so exactly
	// one of two simultaneous bookings of the same slot can win.
	store := memory.NewPersistence()
	serviceA := NewInterviews(store, nil, testLogger(), fixedClock(testNow()))
	serviceB := NewInterviews(store, nil, testLogger(), fixedClock(testNow()))

	errs := make(chan error, 2)

	var wg sync.WaitGroup

	for _, service := range []*Interviews{serviceA, serviceB} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := service.Schedule(t.Context(), scheduleRequest("alice"))
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	var conflicts, successes int

	for err := range errs {
		switch {
		case err == nil:
			successes++
		case IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	all, err := store.Interviews().List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInterviews_CanceledInterviewFreesSlot(t *testing.T) {
	service, _ := newTestInterviews(t)

	interview, err := service.Schedule(t.Context(), scheduleRequest("alice"))
	require.NoError(t, err)

	canceled, err := service.Cancel(t.Context(), interview.ID, "applicant withdrew")
	require.NoError(t, err)
	assert.Equal(t, models.InterviewStatusCanceled, canceled.Status)

	// The identical slot is free again immediately.
	_, err = service.Schedule(t.Context(), scheduleRequest("alice"))
	require.NoError(t, err)
}

func TestInterviews_MarkCompleted(t *testing.T) {
	service, _ := newTestInterviews(t)

	interview, err := service.Schedule(t.Context(), scheduleRequest("alice"))
	require.NoError(t, err)

	completed, err := service.MarkCompleted(t.Context(), interview.ID, "strong candidate")
	require.NoError(t, err)
	assert.Equal(t, models.InterviewStatusCompleted, completed.Status)
	assert.Equal(t, "strong candidate", completed.Notes)
	require.Len(t, completed.Timeline, 2)

	// Completed is terminal.
	_, err = service.Cancel(t.Context(), interview.ID, "")
	assert.True(t, IsInvalidTransition(err))

	stored, err := service.Get(t.Context(), interview.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Timeline, 2)
}

func TestInterviews_NotFound(t *testing.T) {
	service, _ := newTestInterviews(t)

	_, err := service.Cancel(t.Context(), "missing", "")
	assert.True(t, IsNotFound(err))

	_, err = service.Reschedule(t.Context(), "missing", RescheduleInterviewRequest{
		Date:      "2024-01-10",
		StartTime: "09:00",
	})
	assert.True(t, IsNotFound(err))

	_, err = service.Get(t.Context(), "missing")
	assert.True(t, IsNotFound(err))
}
