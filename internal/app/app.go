package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirinyoku/padelgo/internal/auth"
	"github.com/kirinyoku/padelgo/internal/config"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/mq"
	"github.com/kirinyoku/padelgo/internal/postgres"
	redisx "github.com/kirinyoku/padelgo/internal/redis"
	"github.com/kirinyoku/padelgo/internal/repository"
	"github.com/kirinyoku/padelgo/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/padelgo/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/padelgo/internal/repository/redis"
	"github.com/kirinyoku/padelgo/internal/service"
	"github.com/kirinyoku/padelgo/internal/service/booking"
	"github.com/kirinyoku/padelgo/internal/service/sweeper"
	httpgin "github.com/kirinyoku/padelgo/internal/transport/http/gin"
	"github.com/kirinyoku/padelgo/internal/uow"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	sweeper    *sweeper.Sweeper
	watch      func(ctx context.Context) error
	closers    []func()
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.New"

	a := &App{cfg: cfg, logger: logger}

	store, err := a.initStore(ctx)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tokens := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	deps := service.Deps{
		Store:  store,
		Clock:  domain.SystemClock{},
		Tokens: tokens,
		Logger: logger,
	}

	var (
		idem   *redisrepo.IdempotencyStore
		locker sweeper.Locker
	)

	if cfg.Redis.Enabled {
		rdb, err := redisx.New(ctx, redisx.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })

		cache := redisrepo.New(rdb)
		pubsub := redisrepo.NewBookingsPubSub(rdb)

		deps.Cache = cache
		deps.PubSub = pubsub
		deps.Limiter = redisrepo.NewSlidingWindowLimiter(rdb, "bookings", cfg.Booking.RateLimit, cfg.Booking.RateWindow)
		deps.Publisher = redisrepo.NewNotificationPublisher(rdb)

		idem = redisrepo.NewIdempotencyStore(rdb, cfg.Booking.IdempotencyTTL)
		locker = redisrepo.NewLock(rdb, redisx.KeySweepLock(), cfg.Sweeper.Interval)

		a.watch = func(ctx context.Context) error {
			return service.WatchBookingChanges(ctx, pubsub, cache, logger)
		}
	} else {
		logger.Warn("redis disabled: no cache, rate limiting or idempotency keys")
	}

	if cfg.AMQP.URL != "" {
		pub, err := mq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, func() { _ = pub.Close() })
		deps.Broker = pub
	}

	svcs := service.NewServices(deps, service.Config{
		Booking: booking.Config{
			HoldTTL:  cfg.Booking.HoldTTL,
			Location: cfg.Location,
			Policy: domain.CancellationPolicy{
				Cutoff:           cfg.Booking.CancelCutoff,
				FullRefundBefore: cfg.Booking.FullRefundBefore,
				PartialPercent:   cfg.Booking.PartialRefundPercent,
			},
		},
		CacheTTL: cfg.Booking.CacheTTL,
	})

	if cfg.Sweeper.Enabled {
		a.sweeper = sweeper.New(svcs.Bookings, locker, logger, sweeper.Config{
			Interval:  cfg.Sweeper.Interval,
			BatchSize: cfg.Sweeper.BatchSize,
		})
	}

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           httpgin.NewRouter(svcs, tokens, idem, logger, httpgin.CORS(cfg.Server.CORSOrigins)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) initStore(ctx context.Context) (repository.Store, error) {
	if a.cfg.Storage == config.StorageMemory {
		a.logger.Warn("using in-memory storage, data is lost on exit")
		return memory.NewStore(), nil
	}

	pool, err := postgres.New(ctx, a.cfg.Postgres)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pool.Close)

	if err := postgres.Migrate(ctx, pool, a.logger); err != nil {
		return nil, err
	}

	return uow.NewUoW(postgresrepo.NewStore(pool)), nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	if a.sweeper != nil {
		g.Go(func() error {
			return a.sweeper.Run(gCtx)
		})
	}

	if a.watch != nil {
		g.Go(func() error {
			if err := a.watch(gCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("booking change subscription stopped", slog.Any("error", err))
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

// close releases backends in reverse order of creation.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
