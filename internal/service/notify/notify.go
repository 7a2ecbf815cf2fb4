package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

const DefaultListLimit = 50

var ErrNotificationNotFound = domain.NewError(domain.KindNotFound, "notification_not_found", "notification not found")

// Publisher pushes a stored notification to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, n *domain.Notification) error
}

// Broker hands a notification to downstream consumers (mail, push).
type Broker interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

// Service stores notifications and fans them out. Delivery is best effort:
// failures are logged and never returned to the operation that triggered them.
type Service struct {
	repos     repository.Repositories
	publisher Publisher
	broker    Broker
	logger    *slog.Logger
}

// New builds the dispatcher. publisher and broker may be nil.
func New(repos repository.Repositories, publisher Publisher, broker Broker, logger *slog.Logger) *Service {
	return &Service{
		repos:     repos,
		publisher: publisher,
		broker:    broker,
		logger:    logger.With(slog.String("component", "notify")),
	}
}

func (s *Service) Send(ctx context.Context, n domain.Notification) {
	if err := s.repos.Notifications().Create(ctx, &n); err != nil {
		s.logger.Error("store notification",
			slog.Int64("user_id", n.UserID),
			slog.String("type", string(n.Type)),
			slog.Any("error", err),
		)
		return
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, &n); err != nil {
			s.logger.Warn("publish notification", slog.Int64("id", n.ID), slog.Any("error", err))
		}
	}

	if s.broker != nil {
		if err := s.broker.PublishJSON(ctx, RoutingKey(n.Type), n); err != nil {
			s.logger.Warn("broker notification", slog.Int64("id", n.ID), slog.Any("error", err))
		}
	}
}

// SendToRole sends a copy of n to every user holding role.
func (s *Service) SendToRole(ctx context.Context, role domain.Role, n domain.Notification) {
	ids, err := s.repos.Users().IDsByRole(ctx, role)
	if err != nil {
		s.logger.Error("lookup role recipients", slog.String("role", string(role)), slog.Any("error", err))
		return
	}

	for _, id := range ids {
		msg := n
		msg.UserID = id
		s.Send(ctx, msg)
	}
}

func (s *Service) List(ctx context.Context, caller domain.Caller, unreadOnly bool, limit int) ([]domain.Notification, error) {
	const op = "service.notify.List"

	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	out, err := s.repos.Notifications().ListForUser(ctx, caller.UserID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out == nil {
		out = []domain.Notification{}
	}

	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, caller domain.Caller, id int64) error {
	const op = "service.notify.MarkRead"

	if err := s.repos.Notifications().MarkRead(ctx, caller.UserID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotificationNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func RoutingKey(t domain.NotificationType) string {
	return "notification." + string(t)
}
