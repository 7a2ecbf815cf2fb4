package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultInterval  = time.Minute
	DefaultBatchSize = 100
)

// Expirer finds and expires lapsed holds one at a time.
type Expirer interface {
	OverdueHolds(ctx context.Context, limit int) ([]uuid.UUID, error)
	Expire(ctx context.Context, id uuid.UUID) (bool, error)
}

// Locker keeps two sweeper instances from working the same tick.
type Locker interface {
	TryAcquire(ctx context.Context) (func(context.Context), error)
}

type Config struct {
	Interval  time.Duration
	BatchSize int
}

// Sweeper periodically moves holds past their deadline to expired.
type Sweeper struct {
	expirer Expirer
	locker  Locker
	logger  *slog.Logger
	cfg     Config
}

// New builds a sweeper. locker may be nil.
func New(expirer Expirer, locker Locker, logger *slog.Logger, cfg Config) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &Sweeper{
		expirer: expirer,
		locker:  locker,
		logger:  logger.With(slog.String("component", "sweeper")),
		cfg:     cfg,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("sweeper started", slog.Duration("interval", s.cfg.Interval))

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		s.tick(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	n, err := s.Sweep(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error("sweep failed", slog.Any("error", err))
		}
		return
	}

	if n > 0 {
		s.logger.Info("expired holds", slog.Int("count", n))
	}
}

// Sweep expires every overdue hold and returns how many it transitioned.
// A hold that fails to expire is logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	if s.locker != nil {
		release, err := s.locker.TryAcquire(ctx)
		switch {
		case err != nil:
			s.logger.Warn("sweep lock unavailable, sweeping anyway", slog.Any("error", err))
		case release == nil:
			s.logger.Debug("sweep skipped, another sweep holds the lock")
			return 0, nil
		default:
			defer release(context.WithoutCancel(ctx))
		}
	}

	total := 0
	for {
		ids, err := s.expirer.OverdueHolds(ctx, s.cfg.BatchSize)
		if err != nil {
			return total, err
		}

		expired := 0
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return total, err
			}

			ok, err := s.expirer.Expire(ctx, id)
			if err != nil {
				s.logger.Error("expire hold",
					slog.String("booking_id", id.String()),
					slog.Any("error", err),
				)
				continue
			}
			if ok {
				expired++
			}
		}

		total += expired

		// A short batch is the last one; a batch without progress means only
		// failing rows remain.
		if len(ids) < s.cfg.BatchSize || expired == 0 {
			return total, nil
		}
	}
}
