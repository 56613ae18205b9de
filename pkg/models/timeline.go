package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyEventKind indicates an attempt to record a timeline event without a kind.
var ErrEmptyEventKind = errors.New("timeline event kind cannot be empty")

// TimelineEvent is a single immutable entry in an entity's audit history.
type TimelineEvent struct {
	ID   string    `json:"id"`
	Kind string    `json:"kind"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Timeline is the append-only audit history of a workflow entity.
// Entries are kept newest-first; existing entries are never reordered,
// rewritten, or removed.
type Timeline []TimelineEvent

// Append records a new event at the head of the timeline and returns it.
func (t *Timeline) Append(kind, text string, at time.Time) (*TimelineEvent, error) {
	if kind == "" {
		return nil, ErrEmptyEventKind
	}

	event := TimelineEvent{
		ID:   uuid.New().String(),
		Kind: kind,
		Text: text,
		At:   at,
	}

	*t = append(Timeline{event}, *t...)

	return &event, nil
}

// Latest returns the most recent event, or nil for an empty timeline.
func (t Timeline) Latest() *TimelineEvent {
	if len(t) == 0 {
		return nil
	}

	return &t[0]
}

func (t Timeline) clone() Timeline {
	if t == nil {
		return nil
	}

	out := make(Timeline, len(t))
	copy(out, t)

	return out
}
