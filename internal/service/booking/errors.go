package booking

import (
	"fmt"
	"time"

	"github.com/kirinyoku/padelgo/internal/domain"
)

var (
	ErrCourtNotFound    = domain.NewError(domain.KindNotFound, "court_not_found", "court not found")
	ErrUserNotFound     = domain.NewError(domain.KindNotFound, "user_not_found", "user not found")
	ErrCourtUnavailable = domain.NewError(domain.KindPrecondition, "court_unavailable", "court is not available for booking")
	ErrOutsideHours     = domain.NewError(domain.KindPrecondition, "outside_operating_hours", "slot is outside the court's operating hours")
	ErrSlotInPast       = domain.NewError(domain.KindValidation, "slot_in_past", "slot has already started")
	ErrSlotTaken        = domain.NewError(domain.KindConflict, "slot_taken", "this time slot is already booked")

	ErrPromoNotFound      = domain.NewError(domain.KindNotFound, "promo_not_found", "promo code not found")
	ErrPromoNotApplicable = domain.NewError(domain.KindValidation, "promo_not_applicable", "promo code does not apply to this court")
	ErrPromoInactive      = domain.NewError(domain.KindPrecondition, "promo_inactive", "promo code is not active")
	ErrPromoExhausted     = domain.NewError(domain.KindPrecondition, "promo_exhausted", "promo code usage limit reached")

	ErrBookingNotFound = domain.NewError(domain.KindNotFound, "booking_not_found", "booking not found")
	ErrNotModifiable   = domain.NewError(domain.KindNotFound, "booking_not_modifiable", "booking not found or cannot be updated")
	ErrHoldExpired     = domain.NewError(domain.KindPrecondition, "hold_expired", "booking has expired, please create a new booking")
	ErrNotPending      = domain.NewError(domain.KindPrecondition, "not_pending_verification", "booking is not pending verification")
	ErrInvalidAction   = domain.NewError(domain.KindValidation, "invalid_action", `invalid action, use "approve" or "reject"`)
	ErrNotCancellable  = domain.NewError(domain.KindPrecondition, "not_cancellable", "booking cannot be cancelled")
	ErrNotCompletable  = domain.NewError(domain.KindPrecondition, "not_completable", "only confirmed bookings can be completed")
	ErrStateChanged    = domain.NewError(domain.KindPrecondition, "state_changed", "booking was modified concurrently")
	ErrForbidden       = domain.NewError(domain.KindForbidden, "forbidden", "access denied")
	ErrRateLimited     = domain.NewError(domain.KindRateLimited, "rate_limited", "too many booking requests")
)

// RateLimitedError carries the wait before the caller may retry.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrRateLimited.Message, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
