package promos

import (
	"context"
	"testing"
	"time"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var now = time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store  *memory.Store
	svc    *Service
	owner  domain.Caller
	player domain.Caller
	admin  domain.Caller
	court  *domain.Court
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{store: memory.NewStore()}
	f.svc = New(f.store, fixedClock(now), nil)

	mk := func(email string, role domain.Role) domain.Caller {
		u := &domain.User{Name: email, Email: email, Role: role}
		require.NoError(t, f.store.Users().Create(ctx, u))
		return domain.Caller{UserID: u.ID, Role: role}
	}
	f.owner = mk("owner@example.com", domain.RoleOwner)
	f.player = mk("player@example.com", domain.RolePlayer)
	f.admin = mk("admin@example.com", domain.RoleAdmin)

	f.court = &domain.Court{OwnerID: f.owner.UserID, Name: "A", PricePerHour: 3000, Status: domain.CourtAvailable}
	require.NoError(t, f.store.Courts().Create(ctx, f.court))

	return f
}

func validInput() CreateInput {
	return CreateInput{
		Code:          "spring10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		StartsAt:      now.Add(-time.Hour),
		EndsAt:        now.Add(24 * time.Hour),
		UsageLimit:    2,
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.owner, f.court.ID, validInput())
	require.NoError(t, err)
	assert.Equal(t, "SPRING10", p.Code)
	assert.Zero(t, p.UsedCount)

	_, err = f.svc.Create(ctx, f.admin, f.court.ID, validInput())
	require.ErrorIs(t, err, ErrCodeTaken)

	_, err = f.svc.Create(ctx, f.player, f.court.ID, validInput())
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Create(ctx, f.owner, 999, validInput())
	require.ErrorIs(t, err, ErrCourtNotFound)

	list, err := f.svc.ListForCourt(ctx, f.owner, f.court.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.ListForCourt(ctx, f.player, f.court.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		mod  func(in *CreateInput)
		want error
	}{
		{"window reversed", func(in *CreateInput) { in.EndsAt = in.StartsAt }, ErrInvalidWindow},
		{"percentage over 100", func(in *CreateInput) { in.DiscountValue = 150 }, nil},
		{"no usage limit", func(in *CreateInput) { in.UsageLimit = 0 }, nil},
		{"bad type", func(in *CreateInput) { in.DiscountType = "bogus" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mod(&in)

			_, err := f.svc.Create(ctx, f.owner, f.court.ID, in)
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
			}

			var de *domain.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, domain.KindValidation, de.Kind)
		})
	}
}

func TestCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.owner, f.court.ID, validInput())
	require.NoError(t, err)

	q, err := f.svc.Check(ctx, "Spring10", 6000)
	require.NoError(t, err)
	assert.Equal(t, int64(600), q.Discount)
	assert.Equal(t, int64(5400), q.FinalAmount)
	assert.Equal(t, 2, q.Remaining)

	// Checking never consumes a use.
	got, err := f.store.PromoCodes().GetByCode(ctx, p.Code)
	require.NoError(t, err)
	assert.Zero(t, got.UsedCount)

	require.NoError(t, f.store.PromoCodes().Redeem(ctx, p.ID, now))
	require.NoError(t, f.store.PromoCodes().Redeem(ctx, p.ID, now))

	_, err = f.svc.Check(ctx, "SPRING10", 6000)
	require.ErrorIs(t, err, ErrPromoNotFound, "used up")

	_, err = f.svc.Check(ctx, "MISSING", 6000)
	require.ErrorIs(t, err, ErrPromoNotFound)
}
