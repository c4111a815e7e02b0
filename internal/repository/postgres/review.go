package postgres

import (
	"context"
	"fmt"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/pkg/database"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// ListByStore returns every review of the store. A NULL rating scans as nil.
func (r *ReviewRepository) ListByStore(ctx context.Context, storeID string) (_ []domain.Review, err error) {
	query := `
		SELECT id, store_id, user_id, rating, comment, created_at, updated_at
		FROM store_reviews
		WHERE store_id = $1`

	ctx, end := database.TraceQuery(ctx, "ListReviewsByStore", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by store: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.StoreID,
			&rv.UserID,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
			&rv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}
