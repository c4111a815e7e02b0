package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/deliverzler/functions/internal/domain"
	apperrors "github.com/deliverzler/functions/pkg/errors"
)

// StoreRepository implements repository.StoreRepository on Firestore.
type StoreRepository struct {
	client *firestore.Client
}

// NewStoreRepository creates a Firestore-backed store repository.
func NewStoreRepository(client *firestore.Client) *StoreRepository {
	return &StoreRepository{client: client}
}

// UpdateRating updates the store document. Update fails on a missing
// document, which is reported as NotFound.
func (r *StoreRepository) UpdateRating(ctx context.Context, storeID string, summary domain.RatingSummary) (err error) {
	ctx, end := trace(ctx, "UpdateStoreRating", CollectionStores+"/"+storeID)
	defer func() { end(err) }()

	_, err = r.client.Collection(CollectionStores).Doc(storeID).Update(ctx, []firestore.Update{
		{Path: "rating", Value: summary.Average},
		{Path: "totalRatings", Value: summary.Count},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if isNotFound(err) {
			return apperrors.NotFound("store", storeID)
		}
		return fmt.Errorf("update store rating: %w", err)
	}
	return nil
}
