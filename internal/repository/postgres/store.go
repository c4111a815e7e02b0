package postgres

import (
	"context"
	"fmt"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/pkg/database"
	apperrors "github.com/deliverzler/functions/pkg/errors"
)

// StoreRepository implements repository.StoreRepository using PostgreSQL.
type StoreRepository struct {
	pool database.DBTX
}

// NewStoreRepository creates a new PostgreSQL-backed store repository.
func NewStoreRepository(pool database.DBTX) *StoreRepository {
	return &StoreRepository{pool: pool}
}

// UpdateRating writes the derived rating fields of an existing store.
func (r *StoreRepository) UpdateRating(ctx context.Context, storeID string, summary domain.RatingSummary) (err error) {
	query := `
		UPDATE stores
		SET rating = $1, total_ratings = $2, updated_at = NOW()
		WHERE id = $3`

	ctx, end := database.TraceQuery(ctx, "UpdateStoreRating", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, summary.Average, summary.Count, storeID)
	if err != nil {
		return fmt.Errorf("update store rating: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("store", storeID)
	}

	return nil
}
