package users

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kirinyoku/padelgo/internal/auth"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*Service, *auth.Issuer) {
	t.Helper()
	iss := auth.NewIssuer("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(memory.NewStore().Users(), iss, logger, bcrypt.MinCost), iss
}

func TestRegisterAndLogin(t *testing.T) {
	svc, iss := newService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, RegisterInput{
		Name:     "Sara",
		Email:    "Sara@Example.com",
		Password: "correct horse",
		Role:     domain.RoleOwner,
	})
	require.NoError(t, err)
	assert.Equal(t, "sara@example.com", sess.User.Email)
	assert.NotEqual(t, "correct horse", sess.User.PasswordHash)

	claims, err := iss.Parse(sess.Token)
	require.NoError(t, err)
	caller, err := claims.Caller()
	require.NoError(t, err)
	assert.Equal(t, domain.Caller{UserID: sess.User.ID, Role: domain.RoleOwner}, caller)

	got, err := svc.Login(ctx, LoginInput{Email: "SARA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, got.User.ID)

	_, err = svc.Login(ctx, LoginInput{Email: "sara@example.com", Password: "wrong password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	p, err := svc.Profile(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, "Sara", p.Name)

	_, err = svc.Profile(ctx, domain.Caller{UserID: 999})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRegister_Rules(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, RegisterInput{Name: "a", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RolePlayer, sess.User.Role)

	_, err = svc.Register(ctx, RegisterInput{Name: "b", Email: "A@example.com", Password: "password1"})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, RegisterInput{Name: "c", Email: "c@example.com", Password: "password1", Role: domain.RoleAdmin})
	require.ErrorIs(t, err, ErrRoleNotAllowed)

	_, err = svc.Register(ctx, RegisterInput{Name: "d", Email: "d@example.com", Password: "short"})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindValidation, de.Kind)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, RegisterInput{Name: "Sara", Email: "s@example.com", Password: "correct horse"})
	require.NoError(t, err)
	caller := domain.Caller{UserID: sess.User.ID, Role: sess.User.Role}

	phone := "+92 300 0000000"
	u, err := svc.UpdateProfile(ctx, caller, ProfileInput{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Sara", u.Name)
	assert.Equal(t, phone, u.Phone)

	empty := ""
	_, err = svc.UpdateProfile(ctx, caller, ProfileInput{Name: &empty})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindValidation, de.Kind)

	got, err := svc.Profile(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, phone, got.Phone)

	_, err = svc.UpdateProfile(ctx, domain.Caller{UserID: 999}, ProfileInput{Phone: &phone})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, RegisterInput{Name: "Sara", Email: "s@example.com", Password: "correct horse"})
	require.NoError(t, err)
	caller := domain.Caller{UserID: sess.User.ID, Role: sess.User.Role}

	err = svc.ChangePassword(ctx, caller, PasswordInput{CurrentPassword: "wrong horse", NewPassword: "battery staple"})
	require.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(ctx, caller, PasswordInput{CurrentPassword: "correct horse", NewPassword: "correct horse"})
	require.ErrorIs(t, err, ErrSamePassword)

	err = svc.ChangePassword(ctx, caller, PasswordInput{CurrentPassword: "correct horse", NewPassword: "short"})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindValidation, de.Kind)

	require.NoError(t, svc.ChangePassword(ctx, caller, PasswordInput{
		CurrentPassword: "correct horse",
		NewPassword:     "battery staple",
	}))

	_, err = svc.Login(ctx, LoginInput{Email: "s@example.com", Password: "correct horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "s@example.com", Password: "battery staple"})
	require.NoError(t, err)
}
