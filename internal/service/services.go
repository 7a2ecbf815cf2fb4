package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
	redisrepo "github.com/kirinyoku/padelgo/internal/repository/redis"
	"github.com/kirinyoku/padelgo/internal/service/booking"
	"github.com/kirinyoku/padelgo/internal/service/courts"
	"github.com/kirinyoku/padelgo/internal/service/notify"
	"github.com/kirinyoku/padelgo/internal/service/promos"
	"github.com/kirinyoku/padelgo/internal/service/tournaments"
	"github.com/kirinyoku/padelgo/internal/service/users"
)

type Services struct {
	Bookings      *booking.Service
	Courts        *courts.Service
	Tournaments   *tournaments.Service
	Promos        *promos.Service
	Users         *users.Service
	Notifications *notify.Service
}

// Deps are the adapters the services are built on. Everything backed by
// redis or rabbitmq is optional and left nil when that backend is disabled.
type Deps struct {
	Store     repository.Store
	Clock     domain.Clock
	Tokens    users.TokenIssuer
	Cache     *redisrepo.Cache
	PubSub    *redisrepo.BookingsPubSub
	Limiter   booking.Limiter
	Publisher notify.Publisher
	Broker    notify.Broker
	Logger    *slog.Logger
}

type Config struct {
	Booking    booking.Config
	CacheTTL   time.Duration
	BcryptCost int
}

func NewServices(d Deps, cfg Config) *Services {
	notifications := notify.New(d.Store, d.Publisher, d.Broker, d.Logger)

	events := &bookingEvents{cache: d.Cache, pubsub: d.PubSub, logger: d.Logger}
	bookings := booking.New(d.Store, d.Clock, d.Limiter, notifications, events, d.Logger, cfg.Booking)

	return &Services{
		Bookings:      bookings,
		Courts:        courts.New(d.Store, d.Cache, bookings, d.Clock, d.Logger, cfg.CacheTTL),
		Tournaments:   tournaments.New(d.Store, d.Clock, notifications, d.Logger),
		Promos:        promos.New(d.Store, d.Clock, d.Logger),
		Users:         users.New(d.Store.Users(), d.Tokens, d.Logger, cfg.BcryptCost),
		Notifications: notifications,
	}
}

// bookingEvents drops the cached availability of a court day and tells other
// instances to do the same.
type bookingEvents struct {
	cache  *redisrepo.Cache
	pubsub *redisrepo.BookingsPubSub
	logger *slog.Logger
}

func (e *bookingEvents) BookingChanged(ctx context.Context, courtID int64, date string) {
	if e.cache != nil {
		if err := e.cache.InvalidateAvailability(ctx, courtID, date); err != nil {
			e.logger.Warn("invalidate availability", slog.Int64("court_id", courtID), slog.Any("error", err))
		}
	}

	if e.pubsub != nil {
		if err := e.pubsub.PublishBookingChanged(ctx, courtID, date); err != nil {
			e.logger.Warn("publish booking change", slog.Int64("court_id", courtID), slog.Any("error", err))
		}
	}
}

// WatchBookingChanges invalidates cached availability for changes announced
// by any instance. It blocks until ctx is done.
func WatchBookingChanges(ctx context.Context, pubsub *redisrepo.BookingsPubSub, cache *redisrepo.Cache, logger *slog.Logger) error {
	return pubsub.Subscribe(ctx, func(ctx context.Context, courtID int64, date string) {
		if err := cache.InvalidateAvailability(ctx, courtID, date); err != nil {
			logger.Warn("invalidate availability", slog.Int64("court_id", courtID), slog.Any("error", err))
		}
	})
}
