package postgresrepo

import (
	"context"
	"fmt"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

type NotificationRepo struct {
	db DB
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	const op = "postgresrepo.NotificationRepo.Create"

	if n.Metadata == nil {
		n.Metadata = map[string]string{}
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO notifications(user_id, type, title, message, metadata)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, read, created_at`,
		n.UserID, n.Type, n.Title, n.Message, n.Metadata,
	).Scan(&n.ID, &n.Read, &n.CreatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *NotificationRepo) ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]domain.Notification, error) {
	const op = "postgresrepo.NotificationRepo.ListForUser"

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, type, title, message, read, metadata, created_at
		 FROM notifications
		 WHERE user_id = $1 AND ($2 = false OR read = false)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3`,
		userID, unreadOnly, limit,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read, &n.Metadata, &n.CreatedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, userID, id int64) error {
	const op = "postgresrepo.NotificationRepo.MarkRead"

	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}
