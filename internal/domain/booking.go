package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingHold                BookingStatus = "hold"
	BookingPendingVerification BookingStatus = "pending_verification"
	BookingConfirmed           BookingStatus = "confirmed"
	BookingExpired             BookingStatus = "expired"
	BookingCancelled           BookingStatus = "cancelled"
	BookingCompleted           BookingStatus = "completed"
)

// ActiveStatuses occupy a slot. The partial unique index on bookings uses the same set.
var ActiveStatuses = []BookingStatus{
	BookingHold,
	BookingPendingVerification,
	BookingConfirmed,
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingHold:                {BookingPendingVerification, BookingExpired},
	BookingPendingVerification: {BookingConfirmed, BookingCancelled},
	BookingConfirmed:           {BookingCancelled, BookingCompleted},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingHold, BookingPendingVerification, BookingConfirmed,
		BookingExpired, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

func (s BookingStatus) Active() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, n := range bookingTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
)

type RefundStatus string

const (
	RefundNone      RefundStatus = "none"
	RefundPending   RefundStatus = "pending"
	RefundProcessed RefundStatus = "processed"
	RefundFailed    RefundStatus = "failed"
)

// AdminProofRef marks bookings an admin created without a payment proof upload.
const AdminProofRef = "admin_created"

// RejectionReason is recorded when an admin rejects a payment proof.
const RejectionReason = "payment verification failed"

type Booking struct {
	ID                 uuid.UUID     `json:"id"`
	CourtID            int64         `json:"court_id"`
	UserID             int64         `json:"user_id"`
	Date               string        `json:"date"`
	Time               string        `json:"time"`
	Duration           int           `json:"duration"`
	Players            int           `json:"players"`
	TotalAmount        int64         `json:"total_amount"`
	PromoCode          string        `json:"promo_code,omitempty"`
	DiscountAmount     int64         `json:"discount_amount"`
	Status             BookingStatus `json:"status"`
	HoldExpiresAt      *time.Time    `json:"hold_expires_at,omitempty"`
	PaymentProofURL    *string       `json:"payment_proof_url,omitempty"`
	PaymentMethod      PaymentMethod `json:"payment_method"`
	Notes              string        `json:"notes,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	RefundAmount       int64         `json:"refund_amount"`
	RefundStatus       RefundStatus  `json:"refund_status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	Court *CourtSummary `json:"court,omitempty"`
	User  *UserSummary  `json:"user,omitempty"`
}

func (b *Booking) Slot() Slot {
	return Slot{Date: b.Date, Time: b.Time, Duration: b.Duration}
}

// HoldLapsed reports whether b is a hold whose deadline is strictly before now.
func (b *Booking) HoldLapsed(now time.Time) bool {
	return b.Status == BookingHold &&
		b.HoldExpiresAt != nil &&
		now.After(*b.HoldExpiresAt)
}

type BookingFilter struct {
	UserID  int64
	OwnerID int64
	CourtID int64
	Status  BookingStatus
	Date    string
	Limit   int
	Offset  int
}

type StatusCount struct {
	Status BookingStatus `json:"status"`
	Count  int64         `json:"count"`
	Amount int64         `json:"amount"`
}

type BookingStats struct {
	Total    int64         `json:"total_bookings"`
	Revenue  int64         `json:"total_revenue"`
	ByStatus []StatusCount `json:"status_breakdown"`
}
