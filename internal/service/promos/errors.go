package promos

import "github.com/kirinyoku/padelgo/internal/domain"

var (
	ErrCourtNotFound = domain.NewError(domain.KindNotFound, "court_not_found", "court not found")
	ErrPromoNotFound = domain.NewError(domain.KindNotFound, "promo_not_found", "promo code not found")
	ErrCodeTaken     = domain.NewError(domain.KindConflict, "promo_code_taken", "promo code already exists")
	ErrInvalidWindow = domain.NewError(domain.KindValidation, "invalid_window", "ends_at must be after starts_at")
	ErrForbidden     = domain.NewError(domain.KindForbidden, "forbidden", "access denied")
)
