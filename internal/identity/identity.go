// Package identity defines the authentication subsystem used by the callable
// endpoints: account management, claim assignment and token verification.
package identity

import (
	"context"
	"errors"

	"github.com/deliverzler/functions/internal/domain"
)

// Errors reported by every Provider implementation.
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("weak password")
	ErrPasswordTooLong    = errors.New("password too long")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
)

// DefaultPageSize is the number of accounts returned per ListAccounts page.
const DefaultPageSize = 1000

// Page is one page of a paged account listing. An empty NextPageToken marks
// the last page.
type Page struct {
	Accounts      []domain.Account
	NextPageToken string
}

// Provider is the authentication subsystem.
type Provider interface {
	CreateAccount(ctx context.Context, in domain.NewAccount) (*domain.Account, error)
	DeleteAccount(ctx context.Context, uid string) error
	GetAccount(ctx context.Context, uid string) (*domain.Account, error)
	ListAccounts(ctx context.Context, pageToken string) (*Page, error)
	SetClaims(ctx context.Context, uid string, claims domain.Claims) error
	VerifyToken(ctx context.Context, token string) (*domain.Caller, error)
}

// IsCallerError reports whether err describes bad input rather than a
// failing backend.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrEmailExists) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrWeakPassword) ||
		errors.Is(err, ErrPasswordTooLong) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrAccountDisabled)
}

// ForEachAccount walks every page of the account listing.
func ForEachAccount(ctx context.Context, p Provider, fn func(domain.Account) error) error {
	token := ""
	for {
		page, err := p.ListAccounts(ctx, token)
		if err != nil {
			return err
		}
		for _, acc := range page.Accounts {
			if err := fn(acc); err != nil {
				return err
			}
		}
		if page.NextPageToken == "" {
			return nil
		}
		token = page.NextPageToken
	}
}
