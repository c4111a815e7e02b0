package local

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/internal/identity"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, _, err := m.Issue(&domain.Account{UID: "u1", Email: "a@example.com", Claims: domain.SuperAdminClaims()})
	require.NoError(t, err)

	caller, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", caller.UID)
	assert.True(t, caller.Claims.IsSuperAdmin())
}

func TestTokenManager_EmptyClaims(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, _, err := m.Issue(&domain.Account{UID: "u1"})
	require.NoError(t, err)

	caller, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Claims{}, caller.Claims)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.Issue(&domain.Account{UID: "u1"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", time.Hour).Issue(&domain.Account{UID: "u1"})
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Verify(token)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: tokenIssuer},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).Verify("not-a-token")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}
