package local

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/internal/identity"
)

const tokenIssuer = "deliverzler-functions"

// TokenClaims is the payload of an ID token. Role and Admin mirror the
// account's claim set at issue time.
type TokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	Admin bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 ID tokens.
type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenManager creates a token manager with the given secret and expiry.
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Issue signs an ID token for the account.
func (m *TokenManager) Issue(acc *domain.Account) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := now.Add(m.expiry)
	claims := &TokenClaims{
		Email: acc.Email,
		Role:  acc.Claims.Role.String(),
		Admin: acc.Claims.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign id token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates an ID token, returning the caller it proves.
func (m *TokenManager) Verify(tokenString string) (*domain.Caller, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, errors.Join(identity.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, identity.ErrInvalidToken
	}

	return &domain.Caller{
		UID:    claims.Subject,
		Email:  claims.Email,
		Claims: domain.Claims{Role: domain.ParseRole(claims.Role), Admin: claims.Admin},
	}, nil
}
