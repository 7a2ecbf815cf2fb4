package courts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/padelgo/internal/domain"
	redisx "github.com/kirinyoku/padelgo/internal/redis"
	redisrepo "github.com/kirinyoku/padelgo/internal/repository/redis"
)

type Availability struct {
	CourtID int64                     `json:"court_id"`
	Date    string                    `json:"date"`
	Closed  bool                      `json:"closed"`
	Slots   []domain.SlotAvailability `json:"slots"`
	// Requested is set when the caller asked about a concrete slot.
	Requested *SlotCheck `json:"requested,omitempty"`
}

type SlotCheck struct {
	Time      string `json:"time"`
	Duration  int    `json:"duration"`
	Available bool   `json:"available"`
	Code      string `json:"code,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type dayGrid struct {
	Closed bool                      `json:"closed"`
	Slots  []domain.SlotAvailability `json:"slots"`
}

// Availability lists the hourly slots of a court day. When at is not empty
// the result also carries the booking guard's verdict for (at, duration).
func (s *Service) Availability(ctx context.Context, courtID int64, date, at string, duration int) (*Availability, error) {
	const op = "service.courts.Availability"

	day, err := domain.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, domain.Validation("%s", err.Error()))
	}

	load := func(ctx context.Context) (dayGrid, error) {
		return s.grid(ctx, courtID, date, day.Weekday())
	}

	var grid dayGrid
	if s.cache != nil {
		grid, err = redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyAvailability(courtID, date), s.cacheTTL, load)
	} else {
		grid, err = load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := &Availability{
		CourtID: courtID,
		Date:    date,
		Closed:  grid.Closed,
		Slots:   grid.Slots,
	}

	if at != "" && s.checker != nil {
		check, err := s.check(ctx, courtID, domain.Slot{Date: date, Time: at, Duration: duration})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out.Requested = check
	}

	return out, nil
}

func (s *Service) grid(ctx context.Context, courtID int64, date string, wd time.Weekday) (dayGrid, error) {
	c, err := s.store.Courts().Get(ctx, courtID)
	if err != nil {
		return dayGrid{}, mapRepoErr(err)
	}

	openMin, closeMin := mustClock(domain.DefaultOpen), mustClock(domain.DefaultClose)
	if o, cl, closed, ok := c.OperatingHours.On(wd); ok {
		if closed {
			return dayGrid{Closed: true, Slots: []domain.SlotAvailability{}}, nil
		}
		openMin, closeMin = o, cl
	}

	active, err := s.store.Bookings().ActiveOnDate(ctx, courtID, date)
	if err != nil {
		return dayGrid{}, err
	}

	now := s.clock.Now()
	slots := []domain.SlotAvailability{}
	for start := openMin; start+60 <= closeMin; start += 60 {
		free := true
		for i := range active {
			b := &active[i]
			if b.HoldLapsed(now) {
				continue
			}
			bStart, bEnd, err := b.Slot().Interval()
			if err != nil || domain.Overlaps(start, start+60, bStart, bEnd) {
				free = false
				break
			}
		}
		slots = append(slots, domain.SlotAvailability{Time: domain.FormatClock(start), Available: free})
	}

	return dayGrid{Slots: slots}, nil
}

func (s *Service) check(ctx context.Context, courtID int64, slot domain.Slot) (*SlotCheck, error) {
	if slot.Duration == 0 {
		slot.Duration = domain.MinDuration
	}

	res := &SlotCheck{Time: slot.Time, Duration: slot.Duration, Available: true}

	err := s.checker.CheckSlot(ctx, courtID, slot)
	if err == nil {
		return res, nil
	}

	var de *domain.Error
	if !errors.As(err, &de) {
		return nil, err
	}

	res.Available = false
	res.Code = de.Code
	res.Reason = de.Message

	return res, nil
}

func mustClock(s string) int {
	m, err := domain.ParseClock(s)
	if err != nil {
		panic(err)
	}
	return m
}
