package identity

import (
	"context"
	"log/slog"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/pkg/breaker"
)

// Guarded routes every call of a Provider through a circuit breaker. Caller
// mistakes reported by a healthy backend do not count as failures.
type Guarded struct {
	next Provider
	cb   *breaker.Breaker
}

// NewGuarded wraps next in a breaker configured from cfg.
func NewGuarded(next Provider, cfg breaker.Config, logger *slog.Logger) *Guarded {
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || IsCallerError(err)
	}
	return &Guarded{next: next, cb: breaker.New(cfg, logger)}
}

// CreateAccount creates the account through the breaker. Duplicate emails
// and rejected passwords do not count as failures.
func (g *Guarded) CreateAccount(ctx context.Context, in domain.NewAccount) (acc *domain.Account, err error) {
	err = g.cb.Do(ctx, func(ctx context.Context) error {
		acc, err = g.next.CreateAccount(ctx, in)
		return err
	})
	return acc, err
}

// DeleteAccount deletes uid through the breaker.
func (g *Guarded) DeleteAccount(ctx context.Context, uid string) error {
	return g.cb.Do(ctx, func(ctx context.Context) error {
		return g.next.DeleteAccount(ctx, uid)
	})
}

// GetAccount looks up uid through the breaker. A missing account is not a
// failure.
func (g *Guarded) GetAccount(ctx context.Context, uid string) (acc *domain.Account, err error) {
	err = g.cb.Do(ctx, func(ctx context.Context) error {
		acc, err = g.next.GetAccount(ctx, uid)
		return err
	})
	return acc, err
}

// ListAccounts fetches one listing page through the breaker.
func (g *Guarded) ListAccounts(ctx context.Context, pageToken string) (page *Page, err error) {
	err = g.cb.Do(ctx, func(ctx context.Context) error {
		page, err = g.next.ListAccounts(ctx, pageToken)
		return err
	})
	return page, err
}

// SetClaims replaces the claims of uid through the breaker.
func (g *Guarded) SetClaims(ctx context.Context, uid string, claims domain.Claims) error {
	return g.cb.Do(ctx, func(ctx context.Context) error {
		return g.next.SetClaims(ctx, uid, claims)
	})
}

// VerifyToken verifies token through the breaker. Invalid tokens do not
// count as failures.
func (g *Guarded) VerifyToken(ctx context.Context, token string) (caller *domain.Caller, err error) {
	err = g.cb.Do(ctx, func(ctx context.Context) error {
		caller, err = g.next.VerifyToken(ctx, token)
		return err
	})
	return caller, err
}
