package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/padelgo/internal/domain"
)

type BookingRepository interface {
	// Create inserts b and fills its ID and timestamps. A second active booking
	// on the same (court, date, time) yields ErrConflict.
	Create(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ActiveOnDate(ctx context.Context, courtID int64, date string) ([]domain.Booking, error)
	// Transition persists the mutable lifecycle fields of b only if the stored
	// status still equals from. Otherwise it returns ErrStaleState (or ErrNotFound).
	Transition(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error
	// ExpireHold moves a single lapsed hold to expired. It reports false when
	// the row was not a hold past its deadline at now.
	ExpireHold(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	OverdueHolds(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int64, error)
	Stats(ctx context.Context, f domain.BookingFilter) (*domain.BookingStats, error)
	CountActiveForCourt(ctx context.Context, courtID int64) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CourtRepository interface {
	Create(ctx context.Context, c *domain.Court) error
	Get(ctx context.Context, id int64) (*domain.Court, error)
	List(ctx context.Context, f domain.CourtFilter) ([]domain.Court, error)
	UpdateStatus(ctx context.Context, id int64, status domain.CourtStatus) error
	SetFeatured(ctx context.Context, id int64, featured bool) error
	// Delete removes a court without bookings. A court with booking history
	// is archived instead (archived reports true) and reads as ErrNotFound
	// from then on.
	Delete(ctx context.Context, id int64) (archived bool, err error)
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update writes name, phone and password hash.
	Update(ctx context.Context, u *domain.User) error
	IDsByRole(ctx context.Context, role domain.Role) ([]int64, error)
}

type TournamentRepository interface {
	Create(ctx context.Context, t *domain.Tournament) error
	Get(ctx context.Context, id int64) (*domain.Tournament, error)
	List(ctx context.Context, f domain.TournamentFilter) ([]domain.Tournament, error)
	// Update writes the editable and approval fields of t.
	Update(ctx context.Context, t *domain.Tournament) error

	// CreateRegistration yields ErrConflict for a second (tournament, email) pair.
	CreateRegistration(ctx context.Context, r *domain.Registration) error
	GetRegistration(ctx context.Context, id uuid.UUID) (*domain.Registration, error)
	RegistrationByEmail(ctx context.Context, tournamentID int64, email string) (*domain.Registration, error)
	ListRegistrations(ctx context.Context, tournamentID int64) ([]domain.Registration, error)
	CountRegistrations(ctx context.Context, tournamentID int64) (int64, error)
	UpdateRegistration(ctx context.Context, r *domain.Registration, from domain.RegistrationStatus) error
}

type PromoCodeRepository interface {
	// Create yields ErrConflict when the code is taken (codes are case-insensitive).
	Create(ctx context.Context, p *domain.PromoCode) error
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	ListForCourt(ctx context.Context, courtID int64) ([]domain.PromoCode, error)
	// Redeem consumes one use of the code if it is inside its window at now
	// and below its usage limit, otherwise it returns ErrStaleState.
	Redeem(ctx context.Context, id int64, now time.Time) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
}

type Repositories interface {
	Bookings() BookingRepository
	Courts() CourtRepository
	Users() UserRepository
	Tournaments() TournamentRepository
	PromoCodes() PromoCodeRepository
	Notifications() NotificationRepository
}

// AfterCommit is a function that runs after a successful transaction commit.
type AfterCommit func(ctx context.Context)

// Store exposes repositories outside a transaction and a unit of work for
// operations that must read and write atomically.
type Store interface {
	Repositories
	Do(ctx context.Context, fn func(ctx context.Context, tx Repositories, after func(AfterCommit)) error) error
}
