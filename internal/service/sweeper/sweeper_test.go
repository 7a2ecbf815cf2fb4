package sweeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository/memory"
	"github.com/kirinyoku/padelgo/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setup(t *testing.T, holds int) (*booking.Service, *memory.Store, *fakeClock, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	clock := &fakeClock{now: time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC)}

	u := &domain.User{Name: "p", Email: "p@example.com", Role: domain.RolePlayer}
	require.NoError(t, store.Users().Create(ctx, u))

	c := &domain.Court{OwnerID: u.ID, Name: "C", PricePerHour: 100, Status: domain.CourtAvailable}
	require.NoError(t, store.Courts().Create(ctx, c))

	svc := booking.New(store, clock, nil, nil, nil, discard(), booking.Config{})
	caller := domain.Caller{UserID: u.ID, Role: domain.RolePlayer}

	var ids []uuid.UUID
	for i := 0; i < holds; i++ {
		b, err := svc.CreateHold(ctx, caller, booking.CreateInput{
			CourtID: c.ID,
			Date:    "2025-06-01",
			Time:    domain.FormatClock((6 + i) * 60),
		})
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	return svc, store, clock, ids
}

func TestSweep_Idempotent(t *testing.T) {
	svc, store, clock, ids := setup(t, 3)
	sw := New(svc, nil, discard(), Config{BatchSize: 2})
	ctx := context.Background()

	n, err := sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "holds still inside their window")

	clock.Advance(11 * time.Minute)

	n, err = sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, id := range ids {
		b, err := store.Bookings().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingExpired, b.Status)
	}
}

func TestSweep_LeavesOtherStatuses(t *testing.T) {
	svc, store, clock, ids := setup(t, 2)
	ctx := context.Background()

	b, err := store.Bookings().Get(ctx, ids[0])
	require.NoError(t, err)
	_, err = svc.AttachProof(ctx, domain.Caller{UserID: b.UserID, Role: domain.RolePlayer}, ids[0], "proof")
	require.NoError(t, err)

	clock.Advance(time.Hour)

	n, err := New(svc, nil, discard(), Config{}).Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	b, err = store.Bookings().Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPendingVerification, b.Status)
}

type flakyExpirer struct {
	ids    []uuid.UUID
	failed uuid.UUID
	done   map[uuid.UUID]bool
}

func (f *flakyExpirer) OverdueHolds(_ context.Context, limit int) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, id := range f.ids {
		if !f.done[id] {
			out = append(out, id)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *flakyExpirer) Expire(_ context.Context, id uuid.UUID) (bool, error) {
	if id == f.failed {
		return false, errors.New("boom")
	}
	f.done[id] = true
	return true, nil
}

func TestSweep_SkipsFailingRows(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	ex := &flakyExpirer{ids: ids, failed: ids[1], done: map[uuid.UUID]bool{}}

	n, err := New(ex, nil, discard(), Config{BatchSize: 1}).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "stops once only the failing row is left")

	n, err = New(ex, nil, discard(), Config{BatchSize: 10}).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, ex.done[ids[2]])
}

type busyLocker struct{}

func (busyLocker) TryAcquire(context.Context) (func(context.Context), error) {
	return nil, nil
}

func TestSweep_SkipsWhenLocked(t *testing.T) {
	svc, _, clock, _ := setup(t, 1)
	clock.Advance(time.Hour)

	n, err := New(svc, busyLocker{}, discard(), Config{}).Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRun_StopsOnCancel(t *testing.T) {
	svc, store, clock, ids := setup(t, 1)
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(svc, nil, discard(), Config{Interval: 10 * time.Millisecond}).Run(ctx) }()

	require.Eventually(t, func() bool {
		b, err := store.Bookings().Get(context.Background(), ids[0])
		return err == nil && b.Status == domain.BookingExpired
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
