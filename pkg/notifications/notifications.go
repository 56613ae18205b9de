// Package notifications provides the fire-and-forget dispatch channel used
// to hand state-change notices to external collaborators (email, SMS). A
// dispatch failure is logged by the caller and never rolls back the state
// transition that produced it.
package notifications

import (
	"context"
	"time"
)

// Kind identifies the event being announced.
type Kind string

const (
	InterviewScheduled   Kind = "interview.scheduled"
	InterviewRescheduled Kind = "interview.rescheduled"
	InterviewCanceled    Kind = "interview.canceled"
	OfferSent            Kind = "offer.sent"
	OfferAccepted        Kind = "offer.accepted"
	OfferExpired         Kind = "offer.expired"
	OnboardingOverdue    Kind = "onboarding.overdue"
)

// Notification is one notice destined for an external delivery channel.
type Notification struct {
	Kind       Kind           `json:"kind"`
	EntityID   string         `json:"entity_id"`
	Recipient  string         `json:"recipient,omitempty"`
	Detail     string         `json:"detail,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Dispatcher delivers notifications to whatever transport is configured.
type Dispatcher interface {
	Dispatch(ctx context.Context, notification Notification) error
	Close() error
}

// NopDispatcher discards every notification. Useful when no delivery
// channel is configured.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(_ context.Context, _ Notification) error { return nil }

func (NopDispatcher) Close() error { return nil }
