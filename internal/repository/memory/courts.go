package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

type courtRepo struct{ v view }

func (r *courtRepo) Create(_ context.Context, c *domain.Court) error {
	const op = "memory.courtRepo.Create"

	defer r.v.lock()()
	st := r.v.s.st

	if _, ok := st.users[c.OwnerID]; !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrRestricted)
	}

	c.ID = st.nextID()
	c.CreatedAt = r.v.s.now()
	c.UpdatedAt = c.CreatedAt
	st.courts[c.ID] = *c

	return nil
}

func (r *courtRepo) Get(_ context.Context, id int64) (*domain.Court, error) {
	const op = "memory.courtRepo.Get"

	defer r.v.lock()()

	c, ok := r.v.s.st.courts[id]
	if !ok || c.ArchivedAt != nil {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return &c, nil
}

func (r *courtRepo) List(_ context.Context, f domain.CourtFilter) ([]domain.Court, error) {
	defer r.v.lock()()

	var out []domain.Court
	for _, c := range r.v.s.st.courts {
		if c.ArchivedAt != nil {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.City != "" && !strings.EqualFold(c.Address.City, f.City) {
			continue
		}
		if f.Type != "" && c.Type != f.Type {
			continue
		}
		if f.Surface != "" && c.Surface != f.Surface {
			continue
		}
		if f.Featured != nil && c.Featured != *f.Featured {
			continue
		}
		if f.OwnerID != 0 && c.OwnerID != f.OwnerID {
			continue
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Featured != out[j].Featured {
			return out[i].Featured
		}
		return out[i].ID < out[j].ID
	})

	return page(out, f.Limit, f.Offset), nil
}

func (r *courtRepo) update(op string, id int64, fn func(c *domain.Court)) error {
	defer r.v.lock()()
	st := r.v.s.st

	c, ok := st.courts[id]
	if !ok || c.ArchivedAt != nil {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	fn(&c)
	c.UpdatedAt = r.v.s.now()
	st.courts[id] = c

	return nil
}

func (r *courtRepo) UpdateStatus(_ context.Context, id int64, status domain.CourtStatus) error {
	return r.update("memory.courtRepo.UpdateStatus", id, func(c *domain.Court) {
		c.Status = status
	})
}

func (r *courtRepo) SetFeatured(_ context.Context, id int64, featured bool) error {
	return r.update("memory.courtRepo.SetFeatured", id, func(c *domain.Court) {
		c.Featured = featured
	})
}

func (r *courtRepo) Delete(_ context.Context, id int64) (bool, error) {
	const op = "memory.courtRepo.Delete"

	defer r.v.lock()()
	st := r.v.s.st

	c, ok := st.courts[id]
	if !ok || c.ArchivedAt != nil {
		return false, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	for _, b := range st.bookings {
		if b.CourtID == id {
			now := r.v.s.now()
			c.ArchivedAt = &now
			c.Featured = false
			c.UpdatedAt = now
			st.courts[id] = c
			return true, nil
		}
	}

	delete(st.courts, id)

	return false, nil
}
