package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(id, date, start string, duration int) Slot {
	return Slot{InterviewID: id, Date: date, StartTime: start, DurationMinutes: duration}
}

func TestSlot_Window(t *testing.T) {
	window, err := slot("a", "2024-01-10", "09:30", 45).Window()
	require.NoError(t, err)
	assert.Equal(t, 570, window.Start)
	assert.Equal(t, 615, window.End)
}

func TestSlot_WindowRejectsBadInput(t *testing.T) {
	_, err := slot("a", "2024-01-10", "930", 30).Window()
	assert.Error(t, err)

	_, err = slot("a", "2024-01-10", "25:00", 30).Window()
	assert.Error(t, err)

	_, err = slot("a", "2024-01-10", "09:61", 30).Window()
	assert.Error(t, err)

	_, err = slot("a", "2024-01-10", "09:00", 0).Window()
	assert.Error(t, err)
}

func TestDetect_TouchingEndpointsDoNotConflict(t *testing.T) {
	proposed := slot("", "2024-01-10", "09:00", 30)
	existing := []Slot{slot("other", "2024-01-10", "09:30", 30)}

	conflicts, err := Detect("alice", proposed, existing, "")
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestDetect_OverlapConflicts(t *testing.T) {
	proposed := slot("", "2024-01-10", "09:00", 45)
	existing := []Slot{slot("other", "2024-01-10", "09:30", 30)}

	conflicts, err := Detect("alice", proposed, existing, "")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)

	assert.Equal(t, "alice", conflicts[0].InterviewerID)
	assert.Equal(t, "other", conflicts[0].InterviewID)
	assert.Equal(t, 570, conflicts[0].StartMinutes)
	assert.Equal(t, 600, conflicts[0].EndMinutes)
}

func TestDetect_ContainmentConflicts(t *testing.T) {
	proposed := slot("", "2024-01-10", "09:15", 10)
	existing := []Slot{slot("other", "2024-01-10", "09:00", 60)}

	ok, err := HasConflict("alice", proposed, existing, "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDetect_DifferentDatesDoNotConflict(t *testing.T) {
	proposed := slot("", "2024-01-11", "09:00", 60)
	existing := []Slot{slot("other", "2024-01-10", "09:00", 60)}

	conflicts, err := Detect("alice", proposed, existing, "")
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestDetect_ExcludeIDSkipsOwnSlot(t *testing.T) {
	proposed := slot("", "2024-01-10", "09:00", 60)
	existing := []Slot{
		slot("self", "2024-01-10", "09:00", 60),
		slot("other", "2024-01-10", "10:00", 60),
	}

	conflicts, err := Detect("alice", proposed, existing, "self")
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestDetect_ReportsEveryClash(t *testing.T) {
	proposed := slot("", "2024-01-10", "09:00", 120)
	existing := []Slot{
		slot("one", "2024-01-10", "09:15", 30),
		slot("two", "2024-01-10", "10:30", 30),
		slot("three", "2024-01-10", "11:00", 30),
	}

	conflicts, err := Detect("alice", proposed, existing, "")
	require.NoError(t, err)
	require.Len(t, conflicts, 2)
	assert.Equal(t, "one", conflicts[0].InterviewID)
	assert.Equal(t, "two", conflicts[1].InterviewID)
}

func TestWindow_Overlaps(t *testing.T) {
	assert.False(t, Window{Start: 540, End: 570}.Overlaps(Window{Start: 570, End: 600}))
	assert.True(t, Window{Start: 540, End: 585}.Overlaps(Window{Start: 570, End: 600}))
	assert.True(t, Window{Start: 540, End: 600}.Overlaps(Window{Start: 550, End: 560}))
	assert.False(t, Window{Start: 540, End: 570}.Overlaps(Window{Start: 600, End: 630}))
}
