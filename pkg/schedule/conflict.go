// Package schedule provides interval conflict detection for interview slots.
// All math happens in minutes since midnight over half-open [start, end)
// windows: a slot ending exactly when another begins does not conflict.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// Slot is one interview's claim on an interviewer's calendar.
type Slot struct {
	// InterviewID identifies the owning interview so a reschedule can
	// exclude its own prior slot.
	InterviewID     string
	Date            string // 2006-01-02
	StartTime       string // 15:04
	DurationMinutes int
}

// Window is a half-open [Start, End) interval in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open windows intersect.
func (w Window) Overlaps(other Window) bool {
	return max(w.Start, other.Start) < min(w.End, other.End)
}

// Window converts the slot's wall-clock start and duration to minute form.
func (s Slot) Window() (Window, error) {
	start, err := parseMinutes(s.StartTime)
	if err != nil {
		return Window{}, err
	}

	if s.DurationMinutes <= 0 {
		return Window{}, fmt.Errorf("slot duration must be positive, got %d", s.DurationMinutes)
	}

	return Window{Start: start, End: start + s.DurationMinutes}, nil
}

// Conflict identifies one clashing slot on one interviewer's calendar.
type Conflict struct {
	InterviewerID string `json:"interviewer_id"`
	InterviewID   string `json:"interview_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndMinutes    int    `json:"end_minutes"`
	StartMinutes  int    `json:"start_minutes"`
}

// Detect compares a proposed slot against one interviewer's existing slots
// and returns every clash. Only slots on the same date are compared, and the
// slot owned by excludeID is skipped so reschedules do not collide with
// their own prior booking. Callers are expected to pass only slots of
// non-terminal interviews; canceled slots never count.
func Detect(interviewerID string, proposed Slot, existing []Slot, excludeID string) ([]Conflict, error) {
	proposedWindow, err := proposed.Window()
	if err != nil {
		return nil, fmt.Errorf("invalid proposed slot: %w", err)
	}

	var conflicts []Conflict

	for _, slot := range existing {
		if excludeID != "" && slot.InterviewID == excludeID {
			continue
		}

		if slot.Date != proposed.Date {
			continue
		}

		window, err := slot.Window()
		if err != nil {
			return nil, fmt.Errorf("invalid existing slot %s: %w", slot.InterviewID, err)
		}

		if proposedWindow.Overlaps(window) {
			conflicts = append(conflicts, Conflict{
				InterviewerID: interviewerID,
				InterviewID:   slot.InterviewID,
				Date:          slot.Date,
				StartTime:     slot.StartTime,
				StartMinutes:  window.Start,
				EndMinutes:    window.End,
			})
		}
	}

	return conflicts, nil
}

// HasConflict is the boolean convenience form of Detect.
func HasConflict(interviewerID string, proposed Slot, existing []Slot, excludeID string) (bool, error) {
	conflicts, err := Detect(interviewerID, proposed, existing, excludeID)
	if err != nil {
		return false, err
	}

	return len(conflicts) > 0, nil
}

// parseMinutes converts an HH:MM string to minutes since midnight.
func parseMinutes(value string) (int, error) {
	hourPart, minutePart, found := strings.Cut(value, ":")
	if !found {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", value, err)
	}

	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", value, err)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", value)
	}

	return hour*60 + minute, nil
}
