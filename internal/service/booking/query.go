package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/padelgo/internal/domain"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Page struct {
	Items  []domain.Booking `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// Get returns a booking visible to the caller: its user, the court owner or an admin.
func (s *Service) Get(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Get"

	b, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var ownerID int64
	if b.Court != nil {
		ownerID = b.Court.OwnerID
	}

	if !domain.ScopeFor(caller).Allows(b.UserID, ownerID) {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	return b, nil
}

// List returns the bookings inside scope that match f, newest first.
func (s *Service) List(ctx context.Context, scope domain.Scope, f domain.BookingFilter) (*Page, error) {
	const op = "service.booking.List"

	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%s: %w", op, domain.Validation("invalid status %q", f.Status))
	}

	f = scope.Apply(f)
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)

	items, total, err := s.store.Bookings().List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if items == nil {
		items = []domain.Booking{}
	}

	return &Page{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// Stats aggregates counts and amounts per status inside scope.
func (s *Service) Stats(ctx context.Context, scope domain.Scope, f domain.BookingFilter) (*domain.BookingStats, error) {
	const op = "service.booking.Stats"

	f = scope.Apply(f)
	f.Limit, f.Offset = 0, 0

	stats, err := s.store.Bookings().Stats(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stats, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
