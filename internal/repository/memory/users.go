package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

type userRepo struct{ v view }

func (r *userRepo) Create(_ context.Context, u *domain.User) error {
	const op = "memory.userRepo.Create"

	defer r.v.lock()()
	st := r.v.s.st

	for _, other := range st.users {
		if domain.NormalizeEmail(other.Email) == domain.NormalizeEmail(u.Email) {
			return fmt.Errorf("%s: %w: users_email_key", op, repository.ErrConflict)
		}
	}

	u.ID = st.nextID()
	u.CreatedAt = r.v.s.now()
	st.users[u.ID] = *u

	return nil
}

func (r *userRepo) Get(_ context.Context, id int64) (*domain.User, error) {
	const op = "memory.userRepo.Get"

	defer r.v.lock()()

	u, ok := r.v.s.st.users[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return &u, nil
}

func (r *userRepo) Update(_ context.Context, u *domain.User) error {
	const op = "memory.userRepo.Update"

	defer r.v.lock()()
	st := r.v.s.st

	cur, ok := st.users[u.ID]
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	cur.Name = u.Name
	cur.Phone = u.Phone
	cur.PasswordHash = u.PasswordHash
	st.users[u.ID] = cur

	return nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	const op = "memory.userRepo.GetByEmail"

	defer r.v.lock()()

	for _, u := range r.v.s.st.users {
		if domain.NormalizeEmail(u.Email) == domain.NormalizeEmail(email) {
			return &u, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
}

func (r *userRepo) IDsByRole(_ context.Context, role domain.Role) ([]int64, error) {
	defer r.v.lock()()

	var ids []int64
	for _, u := range r.v.s.st.users {
		if u.Role == role {
			ids = append(ids, u.ID)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}
