package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

// CheckSlot reports whether slot on the court could be booked right now.
// It returns nil when allowed, otherwise one of ErrCourtNotFound,
// ErrCourtUnavailable, ErrOutsideHours, ErrSlotTaken or a validation error.
func (s *Service) CheckSlot(ctx context.Context, courtID int64, slot domain.Slot) error {
	const op = "service.booking.CheckSlot"

	if _, err := s.guard(ctx, s.store, courtID, slot, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// guard loads the court and verifies that slot fits its hours and overlaps no
// active booking. With reap set, lapsed holds found on the way are expired
// instead of counted, which requires repos to be a transaction.
func (s *Service) guard(
	ctx context.Context,
	repos repository.Repositories,
	courtID int64,
	slot domain.Slot,
	reap bool,
) (*domain.Court, error) {
	start, end, err := slot.Interval()
	if err != nil {
		return nil, domain.Validation("%s", err.Error())
	}

	court, err := repos.Courts().Get(ctx, courtID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}

	if court.Status != domain.CourtAvailable {
		return nil, ErrCourtUnavailable
	}

	date, err := domain.ParseDate(slot.Date)
	if err != nil {
		return nil, domain.Validation("%s", err.Error())
	}

	if openMin, closeMin, closed, ok := court.OperatingHours.On(date.Weekday()); ok {
		if closed || start < openMin || end > closeMin {
			return nil, ErrOutsideHours
		}
	}

	active, err := repos.Bookings().ActiveOnDate(ctx, courtID, slot.Date)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	for i := range active {
		b := &active[i]

		if reap && b.HoldLapsed(now) {
			if _, err := repos.Bookings().ExpireHold(ctx, b.ID, now); err != nil {
				return nil, err
			}
			continue
		}

		bStart, bEnd, err := b.Slot().Interval()
		if err != nil {
			// Stored rows are validated on insert; treat anything odd as taken.
			return nil, ErrSlotTaken
		}

		if domain.Overlaps(start, end, bStart, bEnd) {
			return nil, ErrSlotTaken
		}
	}

	return court, nil
}
