// Package promos manages court promo codes. Codes are redeemed by the
// booking service inside the booking transaction.
package promos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
	"github.com/kirinyoku/padelgo/internal/validate"
)

type Service struct {
	store  repository.Store
	clock  domain.Clock
	logger *slog.Logger
}

func New(store repository.Store, clock domain.Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = domain.SystemClock{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{store: store, clock: clock, logger: logger}
}

type CreateInput struct {
	Code          string              `json:"code" validate:"required,alphanum,min=3,max=40"`
	DiscountType  domain.DiscountType `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue int64               `json:"discount_value" validate:"gt=0"`
	StartsAt      time.Time           `json:"starts_at" validate:"required"`
	EndsAt        time.Time           `json:"ends_at" validate:"required"`
	UsageLimit    int                 `json:"usage_limit" validate:"gt=0"`
}

// Quote is what a code would take off a booking total right now.
type Quote struct {
	Code        string `json:"code"`
	CourtID     int64  `json:"court_id"`
	Total       int64  `json:"total"`
	Discount    int64  `json:"discount"`
	FinalAmount int64  `json:"final_amount"`
	Remaining   int    `json:"remaining_uses"`
}

// Create adds a promo code to a court the caller owns (or any court for admins).
func (s *Service) Create(ctx context.Context, caller domain.Caller, courtID int64, in CreateInput) (*domain.PromoCode, error) {
	const op = "service.promos.Create"

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !in.EndsAt.After(in.StartsAt) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidWindow)
	}

	if in.DiscountType == domain.DiscountPercentage && in.DiscountValue > 100 {
		return nil, fmt.Errorf("%s: %w", op, domain.Validation("percentage discount must be at most 100"))
	}

	if _, err := s.owned(ctx, caller, courtID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := &domain.PromoCode{
		CourtID:       courtID,
		Code:          strings.ToUpper(in.Code),
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		StartsAt:      in.StartsAt,
		EndsAt:        in.EndsAt,
		UsageLimit:    in.UsageLimit,
	}

	if err := s.store.PromoCodes().Create(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%s: %w", op, ErrCodeTaken)
		case errors.Is(err, repository.ErrRestricted):
			return nil, fmt.Errorf("%s: %w", op, ErrCourtNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("promo code created",
		slog.Int64("promo_id", p.ID),
		slog.Int64("court_id", courtID),
		slog.String("code", p.Code),
	)

	return p, nil
}

func (s *Service) ListForCourt(ctx context.Context, caller domain.Caller, courtID int64) ([]domain.PromoCode, error) {
	const op = "service.promos.ListForCourt"

	if _, err := s.owned(ctx, caller, courtID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.store.PromoCodes().ListForCourt(ctx, courtID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Check previews a code against a total without consuming a use. A code that
// is outside its window or used up reads as not found.
func (s *Service) Check(ctx context.Context, code string, total int64) (*Quote, error) {
	const op = "service.promos.Check"

	if total < 0 {
		return nil, fmt.Errorf("%s: %w", op, domain.Validation("total must not be negative"))
	}

	p, err := s.store.PromoCodes().GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPromoNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !p.ActiveAt(s.clock.Now()) || p.Exhausted() {
		return nil, fmt.Errorf("%s: %w", op, ErrPromoNotFound)
	}

	d := p.Discount(total)

	return &Quote{
		Code:        p.Code,
		CourtID:     p.CourtID,
		Total:       total,
		Discount:    d,
		FinalAmount: total - d,
		Remaining:   p.UsageLimit - p.UsedCount,
	}, nil
}

func (s *Service) owned(ctx context.Context, caller domain.Caller, courtID int64) (*domain.Court, error) {
	c, err := s.store.Courts().Get(ctx, courtID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}

	if !caller.IsAdmin() && c.OwnerID != caller.UserID {
		return nil, ErrForbidden
	}

	return c, nil
}
