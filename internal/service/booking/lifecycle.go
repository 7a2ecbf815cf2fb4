package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// AttachProof records the payment proof for a hold owned by the caller and
// moves it to pending_verification. A hold whose deadline passed is expired
// on the spot and ErrHoldExpired is returned.
func (s *Service) AttachProof(ctx context.Context, caller domain.Caller, id uuid.UUID, proofURL string) (*domain.Booking, error) {
	const op = "service.booking.AttachProof"

	proofURL = strings.TrimSpace(proofURL)
	if proofURL == "" {
		return nil, fmt.Errorf("%s: %w", op, domain.Validation("payment proof url is required"))
	}

	b, err := s.load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			err = ErrNotModifiable
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if b.UserID != caller.UserID || b.Status != domain.BookingHold {
		return nil, fmt.Errorf("%s: %w", op, ErrNotModifiable)
	}

	now := s.clock.Now()
	if b.HoldLapsed(now) {
		if _, err := s.expire(ctx, b, now); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, fmt.Errorf("%s: %w", op, ErrHoldExpired)
	}

	b.PaymentProofURL = &proofURL
	b.Status = domain.BookingPendingVerification

	if err := s.transition(ctx, b, domain.BookingHold); err != nil {
		if errors.Is(err, ErrStateChanged) {
			err = ErrNotModifiable
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notifyRole(ctx, domain.RoleAdmin, domain.Notification{
		Type:     domain.NotifyPayment,
		Title:    "Payment proof uploaded",
		Message:  fmt.Sprintf("Payment proof uploaded for booking #%s", b.ID),
		Metadata: bookingMeta(b),
	})

	return b, nil
}

// Verify applies an admin decision to a booking pending verification.
// approve confirms it; reject cancels it with RejectionReason.
func (s *Service) Verify(ctx context.Context, caller domain.Caller, id uuid.UUID, action string) (*domain.Booking, error) {
	const op = "service.booking.Verify"

	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	b, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if b.Status != domain.BookingPendingVerification {
		return nil, fmt.Errorf("%s: %w", op, ErrNotPending)
	}

	courtName := ""
	if b.Court != nil {
		courtName = b.Court.Name
	}

	var n domain.Notification
	switch action {
	case ActionApprove:
		b.Status = domain.BookingConfirmed
		n = domain.Notification{
			Type:    domain.NotifyBooking,
			Title:   "Booking confirmed",
			Message: fmt.Sprintf("Your booking for %s has been confirmed!", courtName),
		}
	case ActionReject:
		b.Status = domain.BookingCancelled
		b.CancellationReason = domain.RejectionReason
		n = domain.Notification{
			Type:    domain.NotifyCancellation,
			Title:   "Booking rejected",
			Message: fmt.Sprintf("Your booking for %s was rejected due to payment verification failure.", courtName),
		}
	default:
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidAction)
	}

	if err := s.transition(ctx, b, domain.BookingPendingVerification); err != nil {
		if errors.Is(err, ErrStateChanged) {
			err = ErrNotPending
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if b.Status == domain.BookingCancelled {
		s.changed(ctx, b)
	}

	n.UserID = b.UserID
	n.Metadata = bookingMeta(b)
	s.notify(ctx, n)

	return b, nil
}

// Cancel cancels a confirmed booking of the caller (or any booking for an
// admin) and computes the refund from the time left before the start.
func (s *Service) Cancel(ctx context.Context, caller domain.Caller, id uuid.UUID, reason string) (*domain.Booking, error) {
	const op = "service.booking.Cancel"

	reason = strings.TrimSpace(reason)
	if len(reason) > 200 {
		return nil, fmt.Errorf("%s: %w", op, domain.Validation("reason must be at most 200 characters"))
	}

	b, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if b.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	}

	start, err := s.startOf(b.Slot())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clock.Now()
	if !s.cfg.Policy.Cancellable(b.Status, start, now) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotCancellable)
	}

	refund := s.cfg.Policy.Refund(b.TotalAmount, start, now)

	b.Status = domain.BookingCancelled
	b.CancellationReason = reason
	b.RefundAmount = refund
	b.RefundStatus = domain.RefundStatusFor(refund)

	if err := s.transition(ctx, b, domain.BookingConfirmed); err != nil {
		if errors.Is(err, ErrStateChanged) {
			err = ErrNotCancellable
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("booking cancelled",
		slog.String("booking_id", b.ID.String()),
		slog.Int64("refund_amount", refund),
	)

	s.changed(ctx, b)

	if b.Court != nil {
		s.notify(ctx, domain.Notification{
			UserID:   b.Court.OwnerID,
			Type:     domain.NotifyCancellation,
			Title:    "Booking cancelled",
			Message:  fmt.Sprintf("Booking cancelled for %s on %s at %s", b.Court.Name, b.Date, b.Time),
			Metadata: bookingMeta(b),
		})
	}

	return b, nil
}

// Complete marks a confirmed booking as played.
func (s *Service) Complete(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Complete"

	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	b, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if b.Status != domain.BookingConfirmed {
		return nil, fmt.Errorf("%s: %w", op, ErrNotCompletable)
	}

	b.Status = domain.BookingCompleted
	if err := s.transition(ctx, b, domain.BookingConfirmed); err != nil {
		if errors.Is(err, ErrStateChanged) {
			err = ErrNotCompletable
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.changed(ctx, b)

	return b, nil
}

// Delete physically removes a booking regardless of its status.
func (s *Service) Delete(ctx context.Context, caller domain.Caller, id uuid.UUID) error {
	const op = "service.booking.Delete"

	if !caller.IsAdmin() {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	b, err := s.load(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Bookings().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("booking deleted", slog.String("booking_id", id.String()))
	s.changed(ctx, b)

	return nil
}

// Expire moves a single lapsed hold to expired. It reports false, without
// error, when the booking is not a hold past its deadline; calling it twice
// is harmless.
func (s *Service) Expire(ctx context.Context, id uuid.UUID) (bool, error) {
	const op = "service.booking.Expire"

	b, err := s.load(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := s.expire(ctx, b, s.clock.Now())
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

// OverdueHolds lists up to limit holds whose deadline has passed.
func (s *Service) OverdueHolds(ctx context.Context, limit int) ([]uuid.UUID, error) {
	const op = "service.booking.OverdueHolds"

	ids, err := s.store.Bookings().OverdueHolds(ctx, s.clock.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}

func (s *Service) expire(ctx context.Context, b *domain.Booking, now time.Time) (bool, error) {
	ok, err := s.store.Bookings().ExpireHold(ctx, b.ID, now)
	if err != nil {
		return false, err
	}

	if ok {
		b.Status = domain.BookingExpired
		s.changed(ctx, b)
	}

	return ok, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, err := s.store.Bookings().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// transition persists b's new status only if the stored status still equals from.
func (s *Service) transition(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error {
	if !from.CanTransitionTo(b.Status) {
		return fmt.Errorf("illegal transition %s -> %s", from, b.Status)
	}

	if err := s.store.Bookings().Transition(ctx, b, from); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleState):
			return ErrStateChanged
		case errors.Is(err, repository.ErrNotFound):
			return ErrBookingNotFound
		}
		return err
	}

	return nil
}
