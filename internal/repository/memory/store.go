// Package memory is an in-process implementation of repository.Store. It
// mirrors the constraints of the postgres schema (active slot uniqueness,
// registration email and promo code uniqueness, court archiving) and
// serializes units of work behind one mutex.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

type state struct {
	users         map[int64]domain.User
	courts        map[int64]domain.Court
	bookings      map[uuid.UUID]domain.Booking
	tournaments   map[int64]domain.Tournament
	registrations map[uuid.UUID]domain.Registration
	promoCodes    map[int64]domain.PromoCode
	notifications map[int64]domain.Notification

	seq int64
}

func newState() *state {
	return &state{
		users:         map[int64]domain.User{},
		courts:        map[int64]domain.Court{},
		bookings:      map[uuid.UUID]domain.Booking{},
		tournaments:   map[int64]domain.Tournament{},
		registrations: map[uuid.UUID]domain.Registration{},
		promoCodes:    map[int64]domain.PromoCode{},
		notifications: map[int64]domain.Notification{},
	}
}

func (s *state) clone() *state {
	cp := &state{
		users:         make(map[int64]domain.User, len(s.users)),
		courts:        make(map[int64]domain.Court, len(s.courts)),
		bookings:      make(map[uuid.UUID]domain.Booking, len(s.bookings)),
		tournaments:   make(map[int64]domain.Tournament, len(s.tournaments)),
		registrations: make(map[uuid.UUID]domain.Registration, len(s.registrations)),
		promoCodes:    make(map[int64]domain.PromoCode, len(s.promoCodes)),
		notifications: make(map[int64]domain.Notification, len(s.notifications)),
		seq:           s.seq,
	}
	for k, v := range s.users {
		cp.users[k] = v
	}
	for k, v := range s.courts {
		cp.courts[k] = v
	}
	for k, v := range s.bookings {
		cp.bookings[k] = v
	}
	for k, v := range s.tournaments {
		cp.tournaments[k] = v
	}
	for k, v := range s.registrations {
		cp.registrations[k] = v
	}
	for k, v := range s.promoCodes {
		cp.promoCodes[k] = v
	}
	for k, v := range s.notifications {
		cp.notifications[k] = v
	}
	return cp
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// view binds repositories either to the store (locking per call) or to a
// running unit of work (lock already held).
type view struct {
	s    *Store
	inTx bool
}

func (v view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

func (v view) Bookings() repository.BookingRepository           { return &bookingRepo{v} }
func (v view) Courts() repository.CourtRepository               { return &courtRepo{v} }
func (v view) Users() repository.UserRepository                 { return &userRepo{v} }
func (v view) Tournaments() repository.TournamentRepository     { return &tournamentRepo{v} }
func (v view) PromoCodes() repository.PromoCodeRepository       { return &promoRepo{v} }
func (v view) Notifications() repository.NotificationRepository { return &notificationRepo{v} }

func (s *Store) Bookings() repository.BookingRepository           { return view{s: s}.Bookings() }
func (s *Store) Courts() repository.CourtRepository               { return view{s: s}.Courts() }
func (s *Store) Users() repository.UserRepository                 { return view{s: s}.Users() }
func (s *Store) Tournaments() repository.TournamentRepository     { return view{s: s}.Tournaments() }
func (s *Store) PromoCodes() repository.PromoCodeRepository       { return view{s: s}.PromoCodes() }
func (s *Store) Notifications() repository.NotificationRepository { return view{s: s}.Notifications() }

// Do runs fn with exclusive access to the store. If fn fails or panics,
// every write it made is discarded.
func (s *Store) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Repositories, after func(repository.AfterCommit)) error,
) error {
	hooks, err := s.run(ctx, fn)
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}

func (s *Store) run(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Repositories, after func(repository.AfterCommit)) error,
) (hooks []repository.AfterCommit, err error) {
	s.mu.Lock()
	snapshot := s.st.clone()
	committed := false

	defer func() {
		if !committed {
			s.st = snapshot
		}
		s.mu.Unlock()
	}()

	if err := fn(ctx, view{s: s, inTx: true}, func(h repository.AfterCommit) {
		hooks = append(hooks, h)
	}); err != nil {
		return nil, err
	}

	committed = true

	return hooks, nil
}
