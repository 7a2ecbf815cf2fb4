package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	got []domain.Notification
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, n *domain.Notification) error {
	p.got = append(p.got, *n)
	return p.err
}

type recordingBroker struct {
	keys []string
}

func (b *recordingBroker) PublishJSON(_ context.Context, key string, _ any) error {
	b.keys = append(b.keys, key)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(t *testing.T, store *memory.Store, email string, role domain.Role) int64 {
	t.Helper()
	u := &domain.User{Name: email, Email: email, Role: role}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u.ID
}

func TestSend(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pub := &recordingPublisher{}
	broker := &recordingBroker{}
	svc := New(store, pub, broker, discard())

	uid := seedUser(t, store, "p@example.com", domain.RolePlayer)

	svc.Send(ctx, domain.Notification{UserID: uid, Type: domain.NotifyBooking, Title: "t", Message: "m"})

	list, err := svc.List(ctx, domain.Caller{UserID: uid}, false, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)

	require.Len(t, pub.got, 1)
	assert.Equal(t, list[0].ID, pub.got[0].ID)
	assert.Equal(t, []string{"notification.booking"}, broker.keys)
}

func TestSend_FailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	pub := &recordingPublisher{err: errors.New("redis down")}
	svc := New(store, pub, nil, discard())

	uid := seedUser(t, store, "p@example.com", domain.RolePlayer)
	svc.Send(ctx, domain.Notification{UserID: uid, Type: domain.NotifySystem})

	// unknown recipient: nothing stored, nothing published
	svc.Send(ctx, domain.Notification{UserID: 999, Type: domain.NotifySystem})

	list, err := svc.List(ctx, domain.Caller{UserID: uid}, false, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Len(t, pub.got, 1)
}

func TestSendToRole(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := New(store, nil, nil, discard())

	a1 := seedUser(t, store, "a1@example.com", domain.RoleAdmin)
	a2 := seedUser(t, store, "a2@example.com", domain.RoleAdmin)
	p := seedUser(t, store, "p@example.com", domain.RolePlayer)

	svc.SendToRole(ctx, domain.RoleAdmin, domain.Notification{Type: domain.NotifyPayment, Title: "proof"})

	for _, id := range []int64{a1, a2} {
		list, err := svc.List(ctx, domain.Caller{UserID: id}, true, 0)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}

	list, err := svc.List(ctx, domain.Caller{UserID: p}, false, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := New(store, nil, nil, discard())

	uid := seedUser(t, store, "p@example.com", domain.RolePlayer)
	other := seedUser(t, store, "o@example.com", domain.RolePlayer)

	svc.Send(ctx, domain.Notification{UserID: uid, Type: domain.NotifyBooking})
	list, err := svc.List(ctx, domain.Caller{UserID: uid}, true, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = svc.MarkRead(ctx, domain.Caller{UserID: other}, list[0].ID)
	require.ErrorIs(t, err, ErrNotificationNotFound)

	require.NoError(t, svc.MarkRead(ctx, domain.Caller{UserID: uid}, list[0].ID))

	list, err = svc.List(ctx, domain.Caller{UserID: uid}, true, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
