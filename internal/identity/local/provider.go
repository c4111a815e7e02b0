// Package local implements identity.Provider on the PostgreSQL accounts
// table, with bcrypt password hashes and HS256 ID tokens.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/internal/identity"
	"github.com/deliverzler/functions/pkg/database"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

const uniqueViolation = "23505"

// Provider is the local account store.
type Provider struct {
	pool     database.DBTX
	tokens   *TokenManager
	pageSize int
	cost     int
}

// Option configures a Provider.
type Option func(*Provider)

// WithPageSize sets the ListAccounts page size.
func WithPageSize(n int) Option {
	return func(p *Provider) { p.pageSize = n }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(p *Provider) { p.cost = cost }
}

// NewProvider creates a local identity provider.
func NewProvider(pool database.DBTX, tokens *TokenManager, opts ...Option) *Provider {
	p := &Provider{
		pool:     pool,
		tokens:   tokens,
		pageSize: identity.DefaultPageSize,
		cost:     bcryptCost,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateAccount registers a new account with an empty claim set.
func (p *Provider) CreateAccount(ctx context.Context, in domain.NewAccount) (_ *domain.Account, err error) {
	if !domain.IsValidEmail(in.Email) {
		return nil, identity.ErrInvalidEmail
	}
	if len(in.Password) < domain.MinPasswordLength {
		return nil, identity.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), p.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, identity.ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc := &domain.Account{
		UID:         uuid.New().String(),
		Email:       in.Email,
		DisplayName: in.DisplayName,
	}

	query := `
		INSERT INTO accounts (uid, email, password_hash, display_name, disabled, claims, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, '{}', NOW(), NOW())`

	ctx, end := database.TraceQuery(ctx, "CreateAccount", query)
	defer func() { end(err) }()

	if _, err = p.pool.Exec(ctx, query, acc.UID, acc.Email, string(hash), acc.DisplayName); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, identity.ErrEmailExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return acc, nil
}

// DeleteAccount removes the account.
func (p *Provider) DeleteAccount(ctx context.Context, uid string) (err error) {
	query := `DELETE FROM accounts WHERE uid = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteAccount", query)
	defer func() { end(err) }()

	tag, err := p.pool.Exec(ctx, query, uid)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}

// GetAccount looks up an account by uid.
func (p *Provider) GetAccount(ctx context.Context, uid string) (_ *domain.Account, err error) {
	query := `
		SELECT uid, email, display_name, disabled, claims
		FROM accounts
		WHERE uid = $1`

	ctx, end := database.TraceQuery(ctx, "GetAccount", query)
	defer func() { end(err) }()

	acc, err := scanAccount(p.pool.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return acc, nil
}

// ListAccounts returns accounts ordered by uid. The page token is the last
// uid of the previous page.
func (p *Provider) ListAccounts(ctx context.Context, pageToken string) (_ *identity.Page, err error) {
	query := `
		SELECT uid, email, display_name, disabled, claims
		FROM accounts
		WHERE uid > $1
		ORDER BY uid
		LIMIT $2`

	ctx, end := database.TraceQuery(ctx, "ListAccounts", query)
	defer func() { end(err) }()

	rows, err := p.pool.Query(ctx, query, pageToken, p.pageSize+1)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	page := &identity.Page{Accounts: make([]domain.Account, 0)}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		page.Accounts = append(page.Accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}

	if len(page.Accounts) > p.pageSize {
		page.Accounts = page.Accounts[:p.pageSize]
		page.NextPageToken = page.Accounts[p.pageSize-1].UID
	}
	return page, nil
}

// SetClaims replaces the account's claim set.
func (p *Provider) SetClaims(ctx context.Context, uid string, claims domain.Claims) (err error) {
	data, err := json.Marshal(claims.Map())
	if err != nil {
		return fmt.Errorf("marshal claims: %w", err)
	}

	query := `UPDATE accounts SET claims = $2, updated_at = NOW() WHERE uid = $1`

	ctx, end := database.TraceQuery(ctx, "SetAccountClaims", query)
	defer func() { end(err) }()

	tag, err := p.pool.Exec(ctx, query, uid, data)
	if err != nil {
		return fmt.Errorf("set claims: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}

// VerifyToken validates an ID token issued by IssueToken.
func (p *Provider) VerifyToken(_ context.Context, token string) (*domain.Caller, error) {
	return p.tokens.Verify(token)
}

// IssueToken checks the password and signs an ID token carrying the
// account's current claims.
func (p *Provider) IssueToken(ctx context.Context, email, password string) (_ string, _ time.Time, err error) {
	query := `
		SELECT uid, email, display_name, disabled, claims, password_hash
		FROM accounts
		WHERE email = $1`

	ctx, end := database.TraceQuery(ctx, "GetAccountByEmail", query)
	defer func() { end(err) }()

	var acc domain.Account
	var rawClaims []byte
	var hash string
	err = p.pool.QueryRow(ctx, query, email).Scan(
		&acc.UID, &acc.Email, &acc.DisplayName, &acc.Disabled, &rawClaims, &hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, identity.ErrInvalidCredentials
		}
		return "", time.Time{}, fmt.Errorf("get account by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", time.Time{}, identity.ErrInvalidCredentials
	}
	if acc.Disabled {
		return "", time.Time{}, identity.ErrAccountDisabled
	}
	if acc.Claims, err = decodeClaims(rawClaims); err != nil {
		return "", time.Time{}, err
	}

	return p.tokens.Issue(&acc)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	var rawClaims []byte
	if err := row.Scan(&acc.UID, &acc.Email, &acc.DisplayName, &acc.Disabled, &rawClaims); err != nil {
		return nil, err
	}
	claims, err := decodeClaims(rawClaims)
	if err != nil {
		return nil, err
	}
	acc.Claims = claims
	return &acc, nil
}

func decodeClaims(raw []byte) (domain.Claims, error) {
	if len(raw) == 0 {
		return domain.Claims{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return domain.Claims{}, fmt.Errorf("decode claims: %w", err)
	}
	return domain.ClaimsFromMap(m), nil
}
