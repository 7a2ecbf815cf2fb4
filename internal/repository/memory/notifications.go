package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

type notificationRepo struct{ v view }

func (r *notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	const op = "memory.notificationRepo.Create"

	defer r.v.lock()()
	st := r.v.s.st

	if _, ok := st.users[n.UserID]; !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrRestricted)
	}

	n.ID = st.nextID()
	n.Read = false
	n.CreatedAt = r.v.s.now()
	st.notifications[n.ID] = *n

	return nil
}

func (r *notificationRepo) ListForUser(_ context.Context, userID int64, unreadOnly bool, limit int) ([]domain.Notification, error) {
	defer r.v.lock()()

	var out []domain.Notification
	for _, n := range r.v.s.st.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	return page(out, limit, 0), nil
}

func (r *notificationRepo) MarkRead(_ context.Context, userID, id int64) error {
	const op = "memory.notificationRepo.MarkRead"

	defer r.v.lock()()
	st := r.v.s.st

	n, ok := st.notifications[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	n.Read = true
	st.notifications[id] = n

	return nil
}
