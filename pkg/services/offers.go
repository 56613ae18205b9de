package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/talentops/hireflow/pkg/log"
	"github.com/talentops/hireflow/pkg/models"
	"github.com/talentops/hireflow/pkg/notifications"
	"github.com/talentops/hireflow/pkg/persistence"
	"github.com/talentops/hireflow/pkg/workflow"
)

// errSendNoop signals that Send found the offer already sent or accepted and
// should return it unchanged. Never escapes this package.
var errSendNoop = errors.New("send is a no-op")

// Offers manages the offer lifecycle. Each operation is a thin wrapper
// around the workflow machine with an offer-specific audit message.
type Offers struct {
	persistence persistence.Persistence
	dispatcher  notifications.Dispatcher
	logger      *slog.Logger
	validate    *validator.Validate
	clock       Clock
	machine     *workflow.Machine[models.OfferStatus]
}

// NewOffers creates the offer lifecycle service.
func NewOffers(
	persistence persistence.Persistence,
	dispatcher notifications.Dispatcher,
	logger *slog.Logger,
	clock Clock,
) *Offers {
	return &Offers{
		persistence: persistence,
		dispatcher:  dispatcher,
		logger:      log.Named(logger, "offers"),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		clock:       orSystemClock(clock),
		machine:     workflow.New(models.OfferTransitions),
	}
}

// CreateOfferRequest describes a new draft offer.
type CreateOfferRequest struct {
	ApplicantID string    `json:"applicant_id" validate:"required"`
	Position    string    `json:"position"     validate:"required"`
	Salary      string    `json:"salary"`
	ExpiryDate  time.Time `json:"expiry_date"  validate:"required"`
}

// Create stores a new offer in draft with a single created timeline entry.
func (s *Offers) Create(ctx context.Context, req CreateOfferRequest) (*models.Offer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	now := s.clock()
	offer := &models.Offer{
		ID:          uuid.New().String(),
		ApplicantID: req.ApplicantID,
		Position:    req.Position,
		Salary:      req.Salary,
		Status:      models.OfferStatusDraft,
		ExpiryDate:  req.ExpiryDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := offer.Timeline.Append("created", "offer drafted", now); err != nil {
		return nil, err
	}

	if err := s.persistence.Offers().Create(ctx, offer); err != nil {
		return nil, err
	}

	return offer, nil
}

// UpdateOfferRequest carries a partial edit of offer terms.
type UpdateOfferRequest struct {
	Position   *string    `json:"position,omitempty"`
	Salary     *string    `json:"salary,omitempty"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
}

// Update edits offer terms. Offers in a terminal state reject edits.
func (s *Offers) Update(ctx context.Context, id string, req UpdateOfferRequest) (*models.Offer, error) {
	return s.persistence.Offers().Update(ctx, id, func(offer *models.Offer) error {
		if s.machine.IsTerminal(offer.Status) {
			return fmt.Errorf("%w: offer is %s", ErrTerminalState, offer.Status)
		}

		if req.Position != nil {
			offer.Position = *req.Position
		}

		if req.Salary != nil {
			offer.Salary = *req.Salary
		}

		if req.ExpiryDate != nil {
			offer.ExpiryDate = *req.ExpiryDate
		}

		now := s.clock()
		offer.UpdatedAt = now

		_, err := offer.Timeline.Append("updated", "offer terms updated", now)

		return err
	})
}

// Send moves a draft offer to sent and notifies the applicant. Calling Send
// on an offer that is already sent or accepted is an idempotent no-op.
func (s *Offers) Send(ctx context.Context, id string) (*models.Offer, error) {
	updated, err := s.persistence.Offers().Update(ctx, id, func(offer *models.Offer) error {
		if offer.Status == models.OfferStatusSent || offer.Status == models.OfferStatusAccepted {
			return errSendNoop
		}

		return s.machine.Transition(offer, models.OfferStatusSent, "offer sent to applicant", s.clock())
	})
	if err != nil {
		if errors.Is(err, errSendNoop) {
			return s.persistence.Offers().GetByID(ctx, id)
		}

		return nil, err
	}

	s.notify(ctx, notifications.OfferSent, updated)

	return updated, nil
}

// MarkAccepted records the applicant's acceptance.
func (s *Offers) MarkAccepted(ctx context.Context, id string) (*models.Offer, error) {
	updated, err := s.persistence.Offers().Update(ctx, id, func(offer *models.Offer) error {
		return s.machine.Transition(offer, models.OfferStatusAccepted, "offer accepted by applicant", s.clock())
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notifications.OfferAccepted, updated)

	return updated, nil
}

// MarkDeclined records the applicant's refusal.
func (s *Offers) MarkDeclined(ctx context.Context, id, reason string) (*models.Offer, error) {
	if reason == "" {
		reason = "offer declined by applicant"
	}

	return s.persistence.Offers().Update(ctx, id, func(offer *models.Offer) error {
		return s.machine.Transition(offer, models.OfferStatusDeclined, reason, s.clock())
	})
}

// Withdraw retracts the offer.
func (s *Offers) Withdraw(ctx context.Context, id, reason string) (*models.Offer, error) {
	if reason == "" {
		reason = "offer withdrawn"
	}

	return s.persistence.Offers().Update(ctx, id, func(offer *models.Offer) error {
		return s.machine.Transition(offer, models.OfferStatusWithdrawn, reason, s.clock())
	})
}

// Expire forces a sent offer past its expiry date to expired. Invoked by the
// sweeper; the transition is recorded identically to a user-driven one, and
// a concurrent move to a terminal state surfaces as InvalidTransition for
// the caller to treat as a no-op.
func (s *Offers) Expire(ctx context.Context, id string, now time.Time) (*models.Offer, error) {
	reason := fmt.Sprintf("offer expired on %s", now.Format(time.RFC3339))

	updated, err := s.persistence.Offers().Update(ctx, id, func(offer *models.Offer) error {
		return s.machine.Transition(offer, models.OfferStatusExpired, reason, now)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notifications.OfferExpired, updated)

	return updated, nil
}

// Get returns one offer for display.
func (s *Offers) Get(ctx context.Context, id string) (*models.Offer, error) {
	return s.persistence.Offers().GetByID(ctx, id)
}

// List returns every offer.
func (s *Offers) List(ctx context.Context) ([]*models.Offer, error) {
	return s.persistence.Offers().List(ctx)
}

func (s *Offers) notify(ctx context.Context, kind notifications.Kind, offer *models.Offer) {
	if s.dispatcher == nil {
		return
	}

	err := s.dispatcher.Dispatch(ctx, notifications.Notification{
		Kind:       kind,
		EntityID:   offer.ID,
		Recipient:  offer.ApplicantID,
		Detail:     offer.Position,
		OccurredAt: s.clock(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to dispatch notification",
			"kind", kind, "offer_id", offer.ID, "error", err)
	}
}
