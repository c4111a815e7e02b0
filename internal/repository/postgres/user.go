package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/pkg/database"
	apperrors "github.com/deliverzler/functions/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// Get retrieves a user record by ID.
func (r *UserRepository) Get(ctx context.Context, id string) (_ *domain.User, err error) {
	query := `
		SELECT id, name, email, role, created_by, created_at, updated_at
		FROM users
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetUser", query)
	defer func() {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			end(nil)
			return
		}
		end(err)
	}()

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Set upserts the record. created_at is kept on conflict.
func (r *UserRepository) Set(ctx context.Context, u *domain.User) (err error) {
	query := `
		INSERT INTO users (id, name, email, role, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email, role = EXCLUDED.role,
		    created_by = EXCLUDED.created_by, updated_at = NOW()`

	ctx, end := database.TraceQuery(ctx, "SetUser", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, u.ID, u.Name, u.Email, string(u.Role), u.CreatedBy); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// Delete removes the record if present.
func (r *UserRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM users WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteUser", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ListByRole returns every record with the role.
func (r *UserRepository) ListByRole(ctx context.Context, role domain.Role) (_ []domain.User, err error) {
	query := `
		SELECT id, name, email, role, created_by, created_at, updated_at
		FROM users
		WHERE role = $1
		ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListUsersByRole", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&role,
		&u.CreatedBy,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.ParseRole(role)
	return &u, nil
}
