package auth

import (
	"testing"
	"time"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	tok, err := iss.Issue(&domain.User{ID: 42, Role: domain.RoleOwner, Email: "o@example.com"})
	require.NoError(t, err)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Sub)
	assert.Equal(t, "o@example.com", claims.Email)

	caller, err := claims.Caller()
	require.NoError(t, err)
	assert.Equal(t, domain.Caller{UserID: 42, Role: domain.RoleOwner}, caller)
}

func TestParseRejects(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, err := iss.Issue(&domain.User{ID: 1, Role: domain.RolePlayer})
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired := NewIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaimsCaller_InvalidRole(t *testing.T) {
	_, err := (&Claims{Sub: "1", Role: "root"}).Caller()
	require.ErrorIs(t, err, ErrInvalidToken)
}
