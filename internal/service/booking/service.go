package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
	"github.com/kirinyoku/padelgo/internal/validate"
)

const (
	DefaultHoldTTL = 10 * time.Minute
	DefaultPlayers = 2
)

// Limiter throttles booking attempts per caller.
type Limiter interface {
	Allow(ctx context.Context, id string) (bool, time.Duration, error)
}

// Notifier delivers user notifications. Implementations must not block on or
// report delivery failures.
type Notifier interface {
	Send(ctx context.Context, n domain.Notification)
	SendToRole(ctx context.Context, role domain.Role, n domain.Notification)
}

// Events is told whenever the set of active bookings of a court day changes.
type Events interface {
	BookingChanged(ctx context.Context, courtID int64, date string)
}

type Config struct {
	HoldTTL  time.Duration
	Location *time.Location
	Policy   domain.CancellationPolicy
}

type Service struct {
	store    repository.Store
	clock    domain.Clock
	limiter  Limiter
	notifier Notifier
	events   Events
	logger   *slog.Logger
	cfg      Config
}

// New builds the booking service. limiter, notifier and events may be nil.
func New(
	store repository.Store,
	clock domain.Clock,
	limiter Limiter,
	notifier Notifier,
	events Events,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.HoldTTL <= 0 {
		cfg.HoldTTL = DefaultHoldTTL
	}

	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	if cfg.Policy == (domain.CancellationPolicy{}) {
		cfg.Policy = domain.DefaultCancellationPolicy()
	}

	if clock == nil {
		clock = domain.SystemClock{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:    store,
		clock:    clock,
		limiter:  limiter,
		notifier: notifier,
		events:   events,
		logger:   logger,
		cfg:      cfg,
	}
}

type CreateInput struct {
	CourtID       int64                `json:"court_id" validate:"required,gt=0"`
	Date          string               `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string               `json:"time" validate:"required,datetime=15:04"`
	Duration      int                  `json:"duration" validate:"omitempty,min=1,max=8"`
	Players       int                  `json:"players" validate:"omitempty,min=1,max=8"`
	Notes         string               `json:"notes" validate:"max=500"`
	PaymentMethod domain.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=bank_transfer cash card"`
	PromoCode     string               `json:"promo_code" validate:"omitempty,max=40"`
}

func (in *CreateInput) slot() domain.Slot {
	return domain.Slot{Date: in.Date, Time: in.Time, Duration: in.Duration}
}

func (in *CreateInput) defaults() {
	if in.Duration == 0 {
		in.Duration = domain.MinDuration
	}
	if in.Players == 0 {
		in.Players = DefaultPlayers
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = domain.PaymentBankTransfer
	}
}

type AdminCreateInput struct {
	CreateInput
	UserID int64 `json:"user_id" validate:"required,gt=0"`
	// TotalAmount overrides price x duration when set.
	TotalAmount *int64 `json:"total_amount" validate:"omitempty,min=0"`
}

// CreateHold reserves a slot for the caller for the hold window.
//
// Returns:
//   - *domain.Booking: the booking in status hold with court and user attached.
//   - error: ErrCourtNotFound, ErrCourtUnavailable, ErrOutsideHours or ErrSlotTaken
//     when the guard denies the slot.
//   - error: *RateLimitedError when the caller exceeded the booking rate.
func (s *Service) CreateHold(ctx context.Context, caller domain.Caller, in CreateInput) (*domain.Booking, error) {
	const op = "service.booking.CreateHold"

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	in.defaults()

	if err := s.allow(ctx, caller); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clock.Now()
	if err := s.notStarted(in.slot(), now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	expires := now.Add(s.cfg.HoldTTL)
	b := &domain.Booking{
		UserID:        caller.UserID,
		CourtID:       in.CourtID,
		Date:          in.Date,
		Time:          in.Time,
		Duration:      in.Duration,
		Players:       in.Players,
		Status:        domain.BookingHold,
		HoldExpiresAt: &expires,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		PromoCode:     in.PromoCode,
		RefundStatus:  domain.RefundNone,
	}

	if err := s.insert(ctx, b, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// AdminCreate books a slot on behalf of a user. The booking skips the hold
// and payment steps and starts out confirmed.
func (s *Service) AdminCreate(ctx context.Context, caller domain.Caller, in AdminCreateInput) (*domain.Booking, error) {
	const op = "service.booking.AdminCreate"

	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	in.defaults()

	if err := s.notStarted(in.slot(), s.clock.Now()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	proof := domain.AdminProofRef
	b := &domain.Booking{
		UserID:          in.UserID,
		CourtID:         in.CourtID,
		Date:            in.Date,
		Time:            in.Time,
		Duration:        in.Duration,
		Players:         in.Players,
		Status:          domain.BookingConfirmed,
		PaymentProofURL: &proof,
		PaymentMethod:   in.PaymentMethod,
		Notes:           in.Notes,
		PromoCode:       in.PromoCode,
		RefundStatus:    domain.RefundNone,
	}

	if err := s.insert(ctx, b, in.TotalAmount); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// insert runs the guard, the promo redemption and the insert in one
// transaction. A unique violation from the active-slot index means a
// concurrent request won, and the redemption rolls back with it.
func (s *Service) insert(ctx context.Context, b *domain.Booking, amount *int64) error {
	err := s.store.Do(ctx, func(
		ctx context.Context,
		tx repository.Repositories,
		after func(repository.AfterCommit),
	) error {
		court, err := s.guard(ctx, tx, b.CourtID, b.Slot(), true)
		if err != nil {
			return err
		}

		user, err := tx.Users().Get(ctx, b.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		b.TotalAmount = court.PricePerHour * int64(b.Duration)
		if amount != nil {
			b.TotalAmount = *amount
		}

		if b.PromoCode != "" {
			if err := s.redeem(ctx, tx, b); err != nil {
				return err
			}
		}

		if err := tx.Bookings().Create(ctx, b); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrSlotTaken
			}
			return err
		}

		b.Court = court.Summary()
		b.User = user.Summary()

		after(func(ctx context.Context) {
			s.changed(ctx, b)
			s.notifyOwnerOfBooking(ctx, court, b)
		})

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("booking created",
		slog.String("booking_id", b.ID.String()),
		slog.Int64("court_id", b.CourtID),
		slog.String("date", b.Date),
		slog.String("time", b.Time),
		slog.String("status", string(b.Status)),
	)

	return nil
}

// redeem consumes one use of the booking's promo code and takes the discount
// off the total.
func (s *Service) redeem(ctx context.Context, tx repository.Repositories, b *domain.Booking) error {
	promo, err := tx.PromoCodes().GetByCode(ctx, b.PromoCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPromoNotFound
		}
		return err
	}

	if promo.CourtID != b.CourtID {
		return ErrPromoNotApplicable
	}

	now := s.clock.Now()
	if !promo.ActiveAt(now) {
		return ErrPromoInactive
	}

	if err := tx.PromoCodes().Redeem(ctx, promo.ID, now); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return ErrPromoExhausted
		}
		return err
	}

	b.PromoCode = promo.Code
	b.DiscountAmount = promo.Discount(b.TotalAmount)
	b.TotalAmount -= b.DiscountAmount

	return nil
}

func (s *Service) allow(ctx context.Context, caller domain.Caller) error {
	if s.limiter == nil {
		return nil
	}

	ok, retry, err := s.limiter.Allow(ctx, "user:"+strconv.FormatInt(caller.UserID, 10))
	if err != nil {
		s.logger.Warn("booking rate limiter unavailable", slog.Any("error", err))
		return nil
	}

	if !ok {
		return &RateLimitedError{RetryAfter: retry}
	}

	return nil
}

func (s *Service) notStarted(slot domain.Slot, now time.Time) error {
	start, err := s.startOf(slot)
	if err != nil {
		return err
	}

	if !start.After(now) {
		return ErrSlotInPast
	}

	return nil
}

// startOf is the instant a slot begins in the configured court timezone.
func (s *Service) startOf(slot domain.Slot) (time.Time, error) {
	start, err := slot.StartAt(s.cfg.Location)
	if err != nil {
		return time.Time{}, domain.Validation("%s", err.Error())
	}
	return start, nil
}

func (s *Service) changed(ctx context.Context, b *domain.Booking) {
	if s.events != nil {
		s.events.BookingChanged(ctx, b.CourtID, b.Date)
	}
}

func (s *Service) notify(ctx context.Context, n domain.Notification) {
	if s.notifier != nil && n.UserID != 0 {
		s.notifier.Send(ctx, n)
	}
}

func (s *Service) notifyRole(ctx context.Context, role domain.Role, n domain.Notification) {
	if s.notifier != nil {
		s.notifier.SendToRole(ctx, role, n)
	}
}

func (s *Service) notifyOwnerOfBooking(ctx context.Context, court *domain.Court, b *domain.Booking) {
	s.notify(ctx, domain.Notification{
		UserID:   court.OwnerID,
		Type:     domain.NotifyBooking,
		Title:    "New booking",
		Message:  fmt.Sprintf("New booking request for %s on %s at %s", court.Name, b.Date, b.Time),
		Metadata: bookingMeta(b),
	})
}

func bookingMeta(b *domain.Booking) map[string]string {
	return map[string]string{
		"booking_id": b.ID.String(),
		"court_id":   strconv.FormatInt(b.CourtID, 10),
		"status":     string(b.Status),
	}
}
