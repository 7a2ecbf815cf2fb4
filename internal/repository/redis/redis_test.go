package redisrepo

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kirinyoku/padelgo/internal/domain"
	redisx "github.com/kirinyoku/padelgo/internal/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func TestGetOrSetJSON(t *testing.T) {
	_, rdb := newClient(t)
	c := New(rdb)
	ctx := context.Background()

	var calls atomic.Int32
	loader := func(context.Context) (domain.Court, error) {
		calls.Add(1)
		return domain.Court{ID: 7, Name: "Centre"}, nil
	}

	got, err := GetOrSetJSON(ctx, c, redisx.KeyCourt(7), time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, "Centre", got.Name)

	got, err = GetOrSetJSON(ctx, c, redisx.KeyCourt(7), time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, c.InvalidateCourt(ctx, 7))

	_, err = GetOrSetJSON(ctx, c, redisx.KeyCourt(7), time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetOrSetJSON_LoaderError(t *testing.T) {
	_, rdb := newClient(t)
	c := New(rdb)

	boom := errors.New("boom")
	_, err := GetOrSetJSON(context.Background(), c, "k", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)

	n, err := rdb.Exists(context.Background(), "k").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIdempotencyStore(t *testing.T) {
	_, rdb := newClient(t)
	s := NewIdempotencyStore(rdb, time.Hour)
	ctx := context.Background()
	key := redisx.KeyIdemBooking(1, "abc")

	ok, err := s.AcquireLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.AcquireLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second request sees the lock")

	_, found, err := s.GetResult(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SaveResult(ctx, key, `{"id":"x"}`))

	payload, found, err := s.GetResult(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":"x"}`, payload)
}

func TestSlidingWindowLimiter(t *testing.T) {
	_, rdb := newClient(t)
	l := NewSlidingWindowLimiter(rdb, "bookings", 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, "user:1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, retry, err := l.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))

	ok, _, err = l.Allow(ctx, "user:2")
	require.NoError(t, err)
	assert.True(t, ok, "limits are per id")
}

func TestLock(t *testing.T) {
	mr, rdb := newClient(t)
	l := NewLock(rdb, redisx.KeySweepLock(), 30*time.Second)
	ctx := context.Background()

	release, err := l.TryAcquire(ctx)
	require.NoError(t, err)
	require.NotNil(t, release)

	again, err := l.TryAcquire(ctx)
	require.NoError(t, err)
	assert.Nil(t, again)

	release(ctx)
	assert.False(t, mr.Exists(redisx.KeySweepLock()))

	release, err = l.TryAcquire(ctx)
	require.NoError(t, err)
	require.NotNil(t, release)

	mr.FastForward(time.Minute)
	assert.False(t, mr.Exists(redisx.KeySweepLock()), "lock expires on its own")
}

func TestBookingsPubSub(t *testing.T) {
	_, rdb := newClient(t)
	ps := NewBookingsPubSub(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type change struct {
		courtID int64
		date    string
	}
	got := make(chan change, 1)

	go func() {
		_ = ps.Subscribe(ctx, func(_ context.Context, courtID int64, date string) {
			got <- change{courtID, date}
		})
	}()

	require.Eventually(t, func() bool {
		n, err := rdb.PubSubNumSub(ctx, redisx.ChannelBookingsChanged()).Result()
		return err == nil && n[redisx.ChannelBookingsChanged()] > 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ps.PublishBookingChanged(ctx, 3, "2025-06-01"))

	select {
	case c := <-got:
		assert.Equal(t, int64(3), c.courtID)
		assert.Equal(t, "2025-06-01", c.date)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}
