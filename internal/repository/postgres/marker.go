package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/pkg/database"
)

// bootstrapMarker is the system_markers row guarding the super admin bootstrap.
const bootstrapMarker = "superadmin_bootstrap"

// BootstrapMarkerRepository implements repository.BootstrapMarkerRepository
// with a primary-key insert.
type BootstrapMarkerRepository struct {
	pool database.DBTX
}

// NewBootstrapMarkerRepository creates a new PostgreSQL-backed marker repository.
func NewBootstrapMarkerRepository(pool database.DBTX) *BootstrapMarkerRepository {
	return &BootstrapMarkerRepository{pool: pool}
}

// Claim inserts the marker row. Losing the race on the primary key reports
// false.
func (r *BootstrapMarkerRepository) Claim(ctx context.Context, uid string) (_ bool, err error) {
	query := `
		INSERT INTO system_markers (name, claimed_by, claimed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO NOTHING`

	ctx, end := database.TraceQuery(ctx, "ClaimBootstrapMarker", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, bootstrapMarker, uid)
	if err != nil {
		return false, fmt.Errorf("claim bootstrap marker: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// Release deletes the marker row.
func (r *BootstrapMarkerRepository) Release(ctx context.Context) (err error) {
	query := `DELETE FROM system_markers WHERE name = $1`

	ctx, end := database.TraceQuery(ctx, "ReleaseBootstrapMarker", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, bootstrapMarker); err != nil {
		return fmt.Errorf("release bootstrap marker: %w", err)
	}
	return nil
}

// Get returns the marker, or nil when unclaimed.
func (r *BootstrapMarkerRepository) Get(ctx context.Context) (_ *domain.BootstrapMarker, err error) {
	query := `SELECT claimed_by, claimed_at FROM system_markers WHERE name = $1`

	ctx, end := database.TraceQuery(ctx, "GetBootstrapMarker", query)
	defer func() { end(err) }()

	var m domain.BootstrapMarker
	err = r.pool.QueryRow(ctx, query, bootstrapMarker).Scan(&m.ClaimedBy, &m.ClaimedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bootstrap marker: %w", err)
	}
	return &m, nil
}
