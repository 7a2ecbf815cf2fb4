package courts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirinyoku/padelgo/internal/domain"
	redisx "github.com/kirinyoku/padelgo/internal/redis"
	"github.com/kirinyoku/padelgo/internal/repository"
	redisrepo "github.com/kirinyoku/padelgo/internal/repository/redis"
	"github.com/kirinyoku/padelgo/internal/validate"
)

const (
	DefaultCacheTTL = time.Minute
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SlotChecker answers whether a concrete slot could be booked now.
type SlotChecker interface {
	CheckSlot(ctx context.Context, courtID int64, slot domain.Slot) error
}

type Service struct {
	store    repository.Store
	cache    *redisrepo.Cache
	checker  SlotChecker
	clock    domain.Clock
	logger   *slog.Logger
	cacheTTL time.Duration
}

// New builds the court service. cache may be nil, in which case every read
// goes to the store.
func New(
	store repository.Store,
	cache *redisrepo.Cache,
	checker SlotChecker,
	clock domain.Clock,
	logger *slog.Logger,
	cacheTTL time.Duration,
) *Service {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}

	if clock == nil {
		clock = domain.SystemClock{}
	}

	return &Service{
		store:    store,
		cache:    cache,
		checker:  checker,
		clock:    clock,
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

type CreateInput struct {
	// OwnerID is honoured for admins only; owners always create their own courts.
	OwnerID        int64                 `json:"owner_id" validate:"omitempty,gt=0"`
	Name           string                `json:"name" validate:"required,max=120"`
	Location       string                `json:"location" validate:"required,max=200"`
	Address        domain.Address        `json:"address"`
	PricePerHour   int64                 `json:"price_per_hour" validate:"gt=0"`
	Type           domain.CourtType      `json:"type" validate:"omitempty,oneof=Indoor Outdoor"`
	Surface        domain.Surface        `json:"surface" validate:"omitempty,oneof=Synthetic Clay Grass Concrete"`
	MaxPlayers     int                   `json:"max_players" validate:"omitempty,min=2,max=8"`
	Description    string                `json:"description" validate:"max=1000"`
	OperatingHours domain.OperatingHours `json:"operating_hours"`
}

func (s *Service) Create(ctx context.Context, caller domain.Caller, in CreateInput) (*domain.Court, error) {
	const op = "service.courts.Create"

	if caller.Role != domain.RoleOwner && !caller.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := checkHours(in.OperatingHours); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c := &domain.Court{
		OwnerID:        caller.UserID,
		Name:           in.Name,
		Location:       in.Location,
		Address:        in.Address,
		PricePerHour:   in.PricePerHour,
		Status:         domain.CourtAvailable,
		Type:           in.Type,
		Surface:        in.Surface,
		MaxPlayers:     in.MaxPlayers,
		Description:    in.Description,
		OperatingHours: in.OperatingHours,
	}

	if caller.IsAdmin() && in.OwnerID != 0 {
		c.OwnerID = in.OwnerID
	}
	if c.Type == "" {
		c.Type = domain.CourtIndoor
	}
	if c.Surface == "" {
		c.Surface = domain.SurfaceSynthetic
	}
	if c.MaxPlayers == 0 {
		c.MaxPlayers = 4
	}

	if err := s.store.Courts().Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrRestricted) {
			return nil, fmt.Errorf("%s: %w", op, ErrOwnerNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("court created", slog.Int64("court_id", c.ID), slog.Int64("owner_id", c.OwnerID))

	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Court, error) {
	const op = "service.courts.Get"

	load := func(ctx context.Context) (*domain.Court, error) {
		c, err := s.store.Courts().Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCourtNotFound
			}
			return nil, err
		}
		return c, nil
	}

	var (
		c   *domain.Court
		err error
	)
	if s.cache != nil {
		c, err = redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyCourt(id), s.cacheTTL, load)
	} else {
		c, err = load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

func (s *Service) List(ctx context.Context, f domain.CourtFilter) ([]domain.Court, error) {
	const op = "service.courts.List"

	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	out, err := s.store.Courts().List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out == nil {
		out = []domain.Court{}
	}

	return out, nil
}

// UpdateStatus is allowed to the court's owner and to admins.
func (s *Service) UpdateStatus(ctx context.Context, caller domain.Caller, id int64, status domain.CourtStatus) (*domain.Court, error) {
	const op = "service.courts.UpdateStatus"

	if !status.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
	}

	c, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Courts().UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapRepoErr(err))
	}

	s.invalidate(ctx, id)
	c.Status = status

	s.logger.Info("court status changed", slog.Int64("court_id", id), slog.String("status", string(status)))

	return c, nil
}

func (s *Service) SetFeatured(ctx context.Context, caller domain.Caller, id int64, featured bool) (*domain.Court, error) {
	const op = "service.courts.SetFeatured"

	if !caller.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.store.Courts().SetFeatured(ctx, id, featured); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapRepoErr(err))
	}

	s.invalidate(ctx, id)

	c, err := s.store.Courts().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapRepoErr(err))
	}

	return c, nil
}

// Delete removes a court. It is refused while the court has active bookings.
// A court that only has past bookings is archived so that history stays intact.
func (s *Service) Delete(ctx context.Context, caller domain.Caller, id int64) error {
	const op = "service.courts.Delete"

	if _, err := s.owned(ctx, caller, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var archived bool
	err := s.store.Do(ctx, func(ctx context.Context, tx repository.Repositories, after func(repository.AfterCommit)) error {
		n, err := tx.Bookings().CountActiveForCourt(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrCourtInUse
		}

		archived, err = tx.Courts().Delete(ctx, id)
		if err != nil {
			return mapRepoErr(err)
		}

		after(func(ctx context.Context) { s.invalidate(ctx, id) })

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("court deleted", slog.Int64("court_id", id), slog.Bool("archived", archived))

	return nil
}

func (s *Service) owned(ctx context.Context, caller domain.Caller, id int64) (*domain.Court, error) {
	c, err := s.store.Courts().Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if !caller.IsAdmin() && c.OwnerID != caller.UserID {
		return nil, ErrForbidden
	}

	return c, nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}

	if err := s.cache.InvalidateCourt(ctx, id); err != nil {
		s.logger.Warn("invalidate court cache", slog.Int64("court_id", id), slog.Any("error", err))
	}
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCourtNotFound
	}
	return err
}

func checkHours(h domain.OperatingHours) error {
	for day, d := range h {
		if !weekdays[day] {
			return domain.Validation("operating_hours: unknown day %q", day)
		}
		if d.Closed {
			continue
		}

		o, err := domain.ParseClock(d.Open)
		if err != nil {
			return domain.Validation("operating_hours.%s.open: %s", day, err)
		}
		c, err := domain.ParseClock(d.Close)
		if err != nil {
			return domain.Validation("operating_hours.%s.close: %s", day, err)
		}
		if d.Close == "00:00" {
			c = domain.MinutesPerDay
		}
		if o >= c {
			return domain.Validation("operating_hours.%s: open must be before close", day)
		}
	}

	return nil
}

var weekdays = func() map[string]bool {
	m := make(map[string]bool, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		m[strings.ToLower(d.String())] = true
	}
	return m
}()
