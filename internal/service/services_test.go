package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kirinyoku/padelgo/internal/auth"
	"github.com/kirinyoku/padelgo/internal/domain"
	redisx "github.com/kirinyoku/padelgo/internal/redis"
	"github.com/kirinyoku/padelgo/internal/repository/memory"
	redisrepo "github.com/kirinyoku/padelgo/internal/repository/redis"
	"github.com/kirinyoku/padelgo/internal/service/booking"
	"github.com/kirinyoku/padelgo/internal/service/courts"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestBookingInvalidatesAvailability(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svcs := NewServices(Deps{
		Store:  store,
		Clock:  fixedClock{t: time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC)},
		Tokens: auth.NewIssuer("s", time.Hour),
		Cache:  redisrepo.New(rdb),
		PubSub: redisrepo.NewBookingsPubSub(rdb),
		Logger: logger,
	}, Config{})

	owner := &domain.User{Name: "o", Email: "o@example.com", Role: domain.RoleOwner}
	require.NoError(t, store.Users().Create(ctx, owner))
	player := &domain.User{Name: "p", Email: "p@example.com", Role: domain.RolePlayer}
	require.NoError(t, store.Users().Create(ctx, player))

	c, err := svcs.Courts.Create(ctx, domain.Caller{UserID: owner.ID, Role: domain.RoleOwner}, courts.CreateInput{
		Name: "C", Location: "L", PricePerHour: 100,
	})
	require.NoError(t, err)

	av, err := svcs.Courts.Availability(ctx, c.ID, "2025-06-01", "", 0)
	require.NoError(t, err)
	assert.True(t, av.Slots[0].Available)
	require.True(t, mr.Exists(redisx.KeyAvailability(c.ID, "2025-06-01")))

	_, err = svcs.Bookings.CreateHold(ctx, domain.Caller{UserID: player.ID, Role: domain.RolePlayer}, booking.CreateInput{
		CourtID: c.ID, Date: "2025-06-01", Time: "06:00",
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(redisx.KeyAvailability(c.ID, "2025-06-01")))

	av, err = svcs.Courts.Availability(ctx, c.ID, "2025-06-01", "", 0)
	require.NoError(t, err)
	assert.False(t, av.Slots[0].Available)

	// the owner got a notification for the new booking
	list, err := svcs.Notifications.List(ctx, domain.Caller{UserID: owner.ID}, true, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
