package firebase

import (
	"context"
	"errors"
	"os"
	"testing"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/internal/identity"
)

type fakeAuthClient struct {
	createErr  error
	getRecord  *auth.UserRecord
	getErr     error
	deleteErr  error
	deleted    []string
	claims     map[string]map[string]any
	claimsErr  error
	token      *auth.Token
	verifyErr  error
	lastCreate *auth.UserToCreate
}

func (f *fakeAuthClient) CreateUser(_ context.Context, user *auth.UserToCreate) (*auth.UserRecord, error) {
	f.lastCreate = user
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &auth.UserRecord{UserInfo: &auth.UserInfo{UID: "new-uid", Email: "a@example.com", DisplayName: "A"}}, nil
}

func (f *fakeAuthClient) DeleteUser(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return f.deleteErr
}

func (f *fakeAuthClient) GetUser(context.Context, string) (*auth.UserRecord, error) {
	return f.getRecord, f.getErr
}

func (f *fakeAuthClient) Users(context.Context, string) *auth.UserIterator {
	return nil
}

func (f *fakeAuthClient) SetCustomUserClaims(_ context.Context, uid string, claims map[string]any) error {
	if f.claimsErr != nil {
		return f.claimsErr
	}
	if f.claims == nil {
		f.claims = make(map[string]map[string]any)
	}
	f.claims[uid] = claims
	return nil
}

func (f *fakeAuthClient) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return f.token, f.verifyErr
}

func TestProvider_CreateAccount(t *testing.T) {
	fake := &fakeAuthClient{}
	p := newProvider(fake)

	acc, err := p.CreateAccount(context.Background(), domain.NewAccount{Email: "a@example.com", Password: "secret1", DisplayName: "A"})
	require.NoError(t, err)
	assert.Equal(t, "new-uid", acc.UID)
	assert.Equal(t, "A", acc.DisplayName)
	assert.NotNil(t, fake.lastCreate)
}

func TestProvider_CreateAccount_MapsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"malformed email", errors.New(`malformed email string: "x"`), identity.ErrInvalidEmail},
		{"empty email", errors.New("email must be a non-empty string"), identity.ErrInvalidEmail},
		{"short password", errors.New("password must be a string at least 6 characters long"), identity.ErrWeakPassword},
		{"backend weak password", errors.New("WEAK_PASSWORD : Password should be at least 6 characters"), identity.ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProvider(&fakeAuthClient{createErr: tt.err})
			_, err := p.CreateAccount(context.Background(), domain.NewAccount{Email: "x", Password: "y"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProvider_BackendErrorIsNotCallerError(t *testing.T) {
	p := newProvider(&fakeAuthClient{createErr: errors.New("503 service unavailable")})
	_, err := p.CreateAccount(context.Background(), domain.NewAccount{Email: "a@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.False(t, identity.IsCallerError(err))
	assert.Contains(t, err.Error(), "firebase auth")
}

func TestProvider_GetAccount_ReadsClaims(t *testing.T) {
	fake := &fakeAuthClient{getRecord: &auth.UserRecord{
		UserInfo:     &auth.UserInfo{UID: "u1", Email: "a@example.com"},
		CustomClaims: map[string]any{"role": "superAdmin", "admin": true},
		Disabled:     true,
	}}
	p := newProvider(fake)

	acc, err := p.GetAccount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", acc.UID)
	assert.True(t, acc.Disabled)
	assert.True(t, acc.Claims.IsSuperAdmin())
}

func TestProvider_SetClaimsAndDelete(t *testing.T) {
	fake := &fakeAuthClient{}
	p := newProvider(fake)
	ctx := context.Background()

	require.NoError(t, p.SetClaims(ctx, "u1", domain.AdminClaims()))
	assert.Equal(t, map[string]any{"role": "admin", "admin": true}, fake.claims["u1"])

	require.NoError(t, p.DeleteAccount(ctx, "u1"))
	assert.Equal(t, []string{"u1"}, fake.deleted)
}

func TestProvider_VerifyToken(t *testing.T) {
	fake := &fakeAuthClient{token: &auth.Token{
		UID:    "u1",
		Claims: map[string]any{"email": "a@example.com", "role": "admin", "admin": true},
	}}
	p := newProvider(fake)

	caller, err := p.VerifyToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", caller.UID)
	assert.Equal(t, "a@example.com", caller.Email)
	assert.Equal(t, domain.AdminClaims(), caller.Claims)
}

func TestProvider_VerifyToken_Invalid(t *testing.T) {
	p := newProvider(&fakeAuthClient{verifyErr: errors.New("ID token has expired")})
	_, err := p.VerifyToken(context.Background(), "tok")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestEmulator_AccountLifecycle(t *testing.T) {
	if os.Getenv("FIREBASE_AUTH_EMULATOR_HOST") == "" {
		t.Skip("FIREBASE_AUTH_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: "demo-deliverzler"})
	require.NoError(t, err)
	client, err := app.Auth(ctx)
	require.NoError(t, err)
	p := NewProvider(client)

	email := uuid.NewString() + "@example.com"
	acc, err := p.CreateAccount(ctx, domain.NewAccount{Email: email, Password: "secret1", DisplayName: "E"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.DeleteAccount(ctx, acc.UID) })

	_, err = p.CreateAccount(ctx, domain.NewAccount{Email: email, Password: "secret1"})
	assert.ErrorIs(t, err, identity.ErrEmailExists)

	require.NoError(t, p.SetClaims(ctx, acc.UID, domain.AdminClaims()))
	got, err := p.GetAccount(ctx, acc.UID)
	require.NoError(t, err)
	assert.Equal(t, domain.AdminClaims(), got.Claims)

	found := false
	err = identity.ForEachAccount(ctx, p, func(a domain.Account) error {
		if a.UID == acc.UID {
			found = true
		}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, p.DeleteAccount(ctx, acc.UID))
	_, err = p.GetAccount(ctx, acc.UID)
	assert.ErrorIs(t, err, identity.ErrAccountNotFound)
}
