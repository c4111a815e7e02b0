// Package firebase implements identity.Provider on Firebase Authentication.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/internal/identity"
	"github.com/deliverzler/functions/pkg/database"
)

const system = "firebase_auth"

// authClient is the subset of *auth.Client the provider uses.
type authClient interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	Users(ctx context.Context, nextPageToken string) *auth.UserIterator
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]any) error
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Provider adapts a Firebase Auth client.
type Provider struct {
	client   authClient
	pageSize int
}

// NewProvider creates a provider backed by client.
func NewProvider(client *auth.Client) *Provider {
	return newProvider(client)
}

func newProvider(client authClient) *Provider {
	return &Provider{client: client, pageSize: identity.DefaultPageSize}
}

// CreateAccount registers a new Firebase user.
func (p *Provider) CreateAccount(ctx context.Context, in domain.NewAccount) (_ *domain.Account, err error) {
	ctx, end := database.TraceOperation(ctx, system, "CreateUser", "")
	defer func() { end(err) }()

	params := (&auth.UserToCreate{}).
		Email(in.Email).
		Password(in.Password).
		DisplayName(in.DisplayName)

	rec, err := p.client.CreateUser(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	return accountFromRecord(rec), nil
}

// DeleteAccount deletes the Firebase user.
func (p *Provider) DeleteAccount(ctx context.Context, uid string) (err error) {
	ctx, end := database.TraceOperation(ctx, system, "DeleteUser", "")
	defer func() { end(err) }()

	if err = p.client.DeleteUser(ctx, uid); err != nil {
		return mapError(err)
	}
	return nil
}

// GetAccount fetches a Firebase user.
func (p *Provider) GetAccount(ctx context.Context, uid string) (_ *domain.Account, err error) {
	ctx, end := database.TraceOperation(ctx, system, "GetUser", "")
	defer func() { end(err) }()

	rec, err := p.client.GetUser(ctx, uid)
	if err != nil {
		return nil, mapError(err)
	}
	return accountFromRecord(rec), nil
}

// ListAccounts returns one page of the user export.
func (p *Provider) ListAccounts(ctx context.Context, pageToken string) (_ *identity.Page, err error) {
	ctx, end := database.TraceOperation(ctx, system, "ListUsers", "")
	defer func() { end(err) }()

	var records []*auth.ExportedUserRecord
	pager := iterator.NewPager(p.client.Users(ctx, pageToken), p.pageSize, pageToken)
	next, err := pager.NextPage(&records)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	page := &identity.Page{
		Accounts:      make([]domain.Account, 0, len(records)),
		NextPageToken: next,
	}
	for _, rec := range records {
		page.Accounts = append(page.Accounts, *accountFromRecord(rec.UserRecord))
	}
	return page, nil
}

// SetClaims replaces the user's custom claims.
func (p *Provider) SetClaims(ctx context.Context, uid string, claims domain.Claims) (err error) {
	ctx, end := database.TraceOperation(ctx, system, "SetCustomUserClaims", "")
	defer func() { end(err) }()

	if err = p.client.SetCustomUserClaims(ctx, uid, claims.Map()); err != nil {
		return mapError(err)
	}
	return nil
}

// VerifyToken verifies a Firebase ID token.
func (p *Provider) VerifyToken(ctx context.Context, idToken string) (*domain.Caller, error) {
	tok, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Join(identity.ErrInvalidToken, err)
	}

	caller := &domain.Caller{
		UID:    tok.UID,
		Claims: domain.ClaimsFromMap(tok.Claims),
	}
	if email, ok := tok.Claims["email"].(string); ok {
		caller.Email = email
	}
	return caller, nil
}

func accountFromRecord(rec *auth.UserRecord) *domain.Account {
	acc := &domain.Account{
		Disabled: rec.Disabled,
		Claims:   domain.ClaimsFromMap(rec.CustomClaims),
	}
	if rec.UserInfo != nil {
		acc.UID = rec.UID
		acc.Email = rec.Email
		acc.DisplayName = rec.DisplayName
	}
	return acc
}

// mapError translates Firebase errors into identity errors. Client-side
// argument checks in the SDK return plain errors, so those are matched on
// their text.
func mapError(err error) error {
	msg := err.Error()
	switch {
	case auth.IsEmailAlreadyExists(err):
		return identity.ErrEmailExists
	case auth.IsUserNotFound(err):
		return identity.ErrAccountNotFound
	case auth.IsInvalidEmail(err),
		strings.Contains(msg, "malformed email"),
		strings.Contains(msg, "email must be"):
		return identity.ErrInvalidEmail
	case strings.Contains(msg, "WEAK_PASSWORD"),
		strings.Contains(msg, "password must be"):
		return identity.ErrWeakPassword
	default:
		return fmt.Errorf("firebase auth: %w", err)
	}
}
