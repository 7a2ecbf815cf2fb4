package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

type tournamentRepo struct{ v view }

func (r *tournamentRepo) Create(_ context.Context, t *domain.Tournament) error {
	const op = "memory.tournamentRepo.Create"

	defer r.v.lock()()
	st := r.v.s.st

	if _, ok := st.users[t.OrganizerID]; !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrRestricted)
	}

	t.ID = st.nextID()
	t.CreatedAt = r.v.s.now()
	t.UpdatedAt = t.CreatedAt
	st.tournaments[t.ID] = *t

	return nil
}

func (r *tournamentRepo) Get(_ context.Context, id int64) (*domain.Tournament, error) {
	const op = "memory.tournamentRepo.Get"

	defer r.v.lock()()

	t, ok := r.v.s.st.tournaments[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return &t, nil
}

func (r *tournamentRepo) List(_ context.Context, f domain.TournamentFilter) ([]domain.Tournament, error) {
	defer r.v.lock()()

	out := make([]domain.Tournament, 0, len(r.v.s.st.tournaments))
	for _, t := range r.v.s.st.tournaments {
		if f.Approved != nil && t.Approved != *f.Approved {
			continue
		}
		if f.OrganizerID != 0 && t.OrganizerID != f.OrganizerID {
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})

	return page(out, f.Limit, f.Offset), nil
}

func (r *tournamentRepo) Update(_ context.Context, t *domain.Tournament) error {
	const op = "memory.tournamentRepo.Update"

	defer r.v.lock()()
	st := r.v.s.st

	cur, ok := st.tournaments[t.ID]
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	t.OrganizerID = cur.OrganizerID
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = r.v.s.now()
	st.tournaments[t.ID] = *t

	return nil
}

func (r *tournamentRepo) CreateRegistration(_ context.Context, reg *domain.Registration) error {
	const op = "memory.tournamentRepo.CreateRegistration"

	defer r.v.lock()()
	st := r.v.s.st

	if _, ok := st.tournaments[reg.TournamentID]; !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrRestricted)
	}

	for _, other := range st.registrations {
		if other.TournamentID == reg.TournamentID &&
			domain.NormalizeEmail(other.Email) == domain.NormalizeEmail(reg.Email) {
			return fmt.Errorf("%s: %w: registrations_tournament_email_key", op, repository.ErrConflict)
		}
	}

	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	if reg.RefundStatus == "" {
		reg.RefundStatus = domain.RefundNone
	}

	reg.CreatedAt = r.v.s.now()
	reg.UpdatedAt = reg.CreatedAt
	st.registrations[reg.ID] = *reg

	return nil
}

func (r *tournamentRepo) GetRegistration(_ context.Context, id uuid.UUID) (*domain.Registration, error) {
	const op = "memory.tournamentRepo.GetRegistration"

	defer r.v.lock()()

	reg, ok := r.v.s.st.registrations[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return &reg, nil
}

func (r *tournamentRepo) RegistrationByEmail(_ context.Context, tournamentID int64, email string) (*domain.Registration, error) {
	const op = "memory.tournamentRepo.RegistrationByEmail"

	defer r.v.lock()()

	for _, reg := range r.v.s.st.registrations {
		if reg.TournamentID == tournamentID &&
			domain.NormalizeEmail(reg.Email) == domain.NormalizeEmail(email) {
			return &reg, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
}

func (r *tournamentRepo) ListRegistrations(_ context.Context, tournamentID int64) ([]domain.Registration, error) {
	defer r.v.lock()()

	var out []domain.Registration
	for _, reg := range r.v.s.st.registrations {
		if reg.TournamentID == tournamentID {
			out = append(out, reg)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return out, nil
}

func (r *tournamentRepo) CountRegistrations(_ context.Context, tournamentID int64) (int64, error) {
	defer r.v.lock()()

	var n int64
	for _, reg := range r.v.s.st.registrations {
		if reg.TournamentID != tournamentID {
			continue
		}
		if reg.Status == domain.RegistrationPending || reg.Status == domain.RegistrationConfirmed {
			n++
		}
	}

	return n, nil
}

func (r *tournamentRepo) UpdateRegistration(_ context.Context, reg *domain.Registration, from domain.RegistrationStatus) error {
	const op = "memory.tournamentRepo.UpdateRegistration"

	defer r.v.lock()()
	st := r.v.s.st

	cur, ok := st.registrations[reg.ID]
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	if cur.Status != from {
		return fmt.Errorf("%s: %w", op, repository.ErrStaleState)
	}

	cur.Status = reg.Status
	cur.PaymentStatus = reg.PaymentStatus
	cur.PaymentProofURL = reg.PaymentProofURL
	cur.RefundAmount = reg.RefundAmount
	cur.RefundStatus = reg.RefundStatus
	cur.UpdatedAt = r.v.s.now()

	st.registrations[reg.ID] = cur
	reg.UpdatedAt = cur.UpdatedAt

	return nil
}
