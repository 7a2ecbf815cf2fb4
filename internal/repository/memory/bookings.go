package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

type bookingRepo struct{ v view }

func (r *bookingRepo) Create(_ context.Context, b *domain.Booking) error {
	const op = "memory.bookingRepo.Create"

	defer r.v.lock()()
	st := r.v.s.st

	if _, ok := st.courts[b.CourtID]; !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrRestricted)
	}
	if _, ok := st.users[b.UserID]; !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrRestricted)
	}

	if b.Status.Active() {
		for _, other := range st.bookings {
			if other.Status.Active() &&
				other.CourtID == b.CourtID &&
				other.Date == b.Date &&
				other.Time == b.Time {
				return fmt.Errorf("%s: %w: bookings_active_slot_key", op, repository.ErrConflict)
			}
		}
	}

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.RefundStatus == "" {
		b.RefundStatus = domain.RefundNone
	}

	now := r.v.s.now()
	b.CreatedAt = now
	b.UpdatedAt = now

	stored := *b
	stored.Court, stored.User = nil, nil
	st.bookings[b.ID] = stored

	return nil
}

func (r *bookingRepo) Get(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "memory.bookingRepo.Get"

	defer r.v.lock()()

	b, ok := r.v.s.st.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return r.detail(b), nil
}

func (r *bookingRepo) detail(b domain.Booking) *domain.Booking {
	st := r.v.s.st
	if c, ok := st.courts[b.CourtID]; ok {
		b.Court = c.Summary()
	}
	if u, ok := st.users[b.UserID]; ok {
		b.User = u.Summary()
	}
	return &b
}

func (r *bookingRepo) ActiveOnDate(_ context.Context, courtID int64, date string) ([]domain.Booking, error) {
	defer r.v.lock()()

	var out []domain.Booking
	for _, b := range r.v.s.st.bookings {
		if b.CourtID == courtID && b.Date == date && b.Status.Active() {
			out = append(out, b)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })

	return out, nil
}

func (r *bookingRepo) Transition(_ context.Context, b *domain.Booking, from domain.BookingStatus) error {
	const op = "memory.bookingRepo.Transition"

	defer r.v.lock()()
	st := r.v.s.st

	cur, ok := st.bookings[b.ID]
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	if cur.Status != from {
		return fmt.Errorf("%s: %w", op, repository.ErrStaleState)
	}

	cur.Status = b.Status
	cur.PaymentProofURL = b.PaymentProofURL
	cur.CancellationReason = b.CancellationReason
	cur.RefundAmount = b.RefundAmount
	cur.RefundStatus = b.RefundStatus
	cur.UpdatedAt = r.v.s.now()

	st.bookings[b.ID] = cur
	b.UpdatedAt = cur.UpdatedAt

	return nil
}

func (r *bookingRepo) ExpireHold(_ context.Context, id uuid.UUID, now time.Time) (bool, error) {
	defer r.v.lock()()
	st := r.v.s.st

	b, ok := st.bookings[id]
	if !ok || !b.HoldLapsed(now) {
		return false, nil
	}

	b.Status = domain.BookingExpired
	b.UpdatedAt = r.v.s.now()
	st.bookings[id] = b

	return true, nil
}

func (r *bookingRepo) OverdueHolds(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	defer r.v.lock()()

	var overdue []domain.Booking
	for _, b := range r.v.s.st.bookings {
		if b.HoldLapsed(now) {
			overdue = append(overdue, b)
		}
	}

	sort.Slice(overdue, func(i, j int) bool {
		return overdue[i].HoldExpiresAt.Before(*overdue[j].HoldExpiresAt)
	})

	if limit > 0 && len(overdue) > limit {
		overdue = overdue[:limit]
	}

	ids := make([]uuid.UUID, 0, len(overdue))
	for _, b := range overdue {
		ids = append(ids, b.ID)
	}

	return ids, nil
}

func (r *bookingRepo) matching(f domain.BookingFilter) []domain.Booking {
	st := r.v.s.st

	var out []domain.Booking
	for _, b := range st.bookings {
		if f.UserID != 0 && b.UserID != f.UserID {
			continue
		}
		if f.OwnerID != 0 && st.courts[b.CourtID].OwnerID != f.OwnerID {
			continue
		}
		if f.CourtID != 0 && b.CourtID != f.CourtID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.Date != "" && b.Date != f.Date {
			continue
		}
		out = append(out, b)
	}

	return out
}

func (r *bookingRepo) List(_ context.Context, f domain.BookingFilter) ([]domain.Booking, int64, error) {
	defer r.v.lock()()

	all := r.matching(f)
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	all = page(all, f.Limit, f.Offset)

	out := make([]domain.Booking, 0, len(all))
	for _, b := range all {
		out = append(out, *r.detail(b))
	}

	return out, total, nil
}

func (r *bookingRepo) Stats(_ context.Context, f domain.BookingFilter) (*domain.BookingStats, error) {
	defer r.v.lock()()

	byStatus := map[domain.BookingStatus]*domain.StatusCount{}
	stats := &domain.BookingStats{}

	for _, b := range r.matching(f) {
		sc, ok := byStatus[b.Status]
		if !ok {
			sc = &domain.StatusCount{Status: b.Status}
			byStatus[b.Status] = sc
		}
		sc.Count++
		sc.Amount += b.TotalAmount
		stats.Total++
	}

	for _, sc := range byStatus {
		if sc.Status == domain.BookingConfirmed {
			stats.Revenue = sc.Amount
		}
		stats.ByStatus = append(stats.ByStatus, *sc)
	}

	sort.Slice(stats.ByStatus, func(i, j int) bool {
		return stats.ByStatus[i].Status < stats.ByStatus[j].Status
	})

	return stats, nil
}

func (r *bookingRepo) CountActiveForCourt(_ context.Context, courtID int64) (int64, error) {
	defer r.v.lock()()

	var n int64
	for _, b := range r.v.s.st.bookings {
		if b.CourtID == courtID && b.Status.Active() {
			n++
		}
	}

	return n, nil
}

func (r *bookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	const op = "memory.bookingRepo.Delete"

	defer r.v.lock()()

	if _, ok := r.v.s.st.bookings[id]; !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	delete(r.v.s.st.bookings, id)

	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
