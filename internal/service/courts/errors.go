package courts

import "github.com/kirinyoku/padelgo/internal/domain"

var (
	ErrCourtNotFound = domain.NewError(domain.KindNotFound, "court_not_found", "court not found")
	ErrOwnerNotFound = domain.NewError(domain.KindNotFound, "owner_not_found", "court owner not found")
	ErrCourtInUse    = domain.NewError(domain.KindPrecondition, "court_has_active_bookings", "cannot delete court with active bookings")
	ErrInvalidStatus = domain.NewError(domain.KindValidation, "invalid_status", "invalid court status")
	ErrForbidden     = domain.NewError(domain.KindForbidden, "forbidden", "access denied")
)
