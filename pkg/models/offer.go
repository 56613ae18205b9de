package models

import "time"

// OfferStatus represents the lifecycle state of an offer.
type OfferStatus string

const (
	OfferStatusDraft     OfferStatus = "draft"
	OfferStatusSent      OfferStatus = "sent"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusDeclined  OfferStatus = "declined"
	OfferStatusWithdrawn OfferStatus = "withdrawn"
	OfferStatusExpired   OfferStatus = "expired"
)

// OfferTransitions is the allowed-transition table for offers. Once an offer
// reaches accepted, declined, withdrawn, or expired, no further transition
// is permitted.
var OfferTransitions = map[OfferStatus][]OfferStatus{
	OfferStatusDraft: {
		OfferStatusSent,
		OfferStatusWithdrawn,
	},
	OfferStatusSent: {
		OfferStatusAccepted,
		OfferStatusDeclined,
		OfferStatusWithdrawn,
		OfferStatusExpired,
	},
	OfferStatusAccepted:  {},
	OfferStatusDeclined:  {},
	OfferStatusWithdrawn: {},
	OfferStatusExpired:   {},
}

// Offer represents an employment offer extended to an applicant.
type Offer struct {
	ID          string      `json:"id"`
	ApplicantID string      `json:"applicant_id" validate:"required"`
	Position    string      `json:"position"     validate:"required"`
	Salary      string      `json:"salary,omitempty"`
	Status      OfferStatus `json:"status"`

	// ExpiryDate is the moment after which a sent offer is no longer valid.
	// The sweeper forces sent offers past this point to expired.
	ExpiryDate time.Time `json:"expiry_date" validate:"required"`

	Timeline Timeline `json:"timeline"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

func (o *Offer) CurrentStatus() OfferStatus { return o.Status }

func (o *Offer) SetStatus(status OfferStatus, at time.Time) {
	o.Status = status
	o.UpdatedAt = at
}

func (o *Offer) Ledger() *Timeline { return &o.Timeline }

// Clone returns a deep copy of the offer.
func (o *Offer) Clone() *Offer {
	out := *o
	out.Timeline = o.Timeline.clone()

	return &out
}
