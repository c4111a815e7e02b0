package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/deliverzler/functions/internal/domain"
)

// ReviewRepository implements repository.ReviewRepository on Firestore.
type ReviewRepository struct {
	client *firestore.Client
}

// NewReviewRepository creates a Firestore-backed review repository.
func NewReviewRepository(client *firestore.Client) *ReviewRepository {
	return &ReviewRepository{client: client}
}

// ListByStore queries store_reviews by storeId. Ratings stored as anything
// other than a number decode as nil.
func (r *ReviewRepository) ListByStore(ctx context.Context, storeID string) (_ []domain.Review, err error) {
	ctx, end := trace(ctx, "ListReviewsByStore", CollectionStoreReviews)
	defer func() { end(err) }()

	iter := r.client.Collection(CollectionStoreReviews).Where("storeId", "==", storeID).Documents(ctx)
	defer iter.Stop()

	reviews := make([]domain.Review, 0)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list reviews by store: %w", err)
		}
		reviews = append(reviews, reviewFromData(doc.Ref.ID, doc.Data()))
	}
	return reviews, nil
}

func reviewFromData(id string, data map[string]any) domain.Review {
	return domain.Review{
		ID:        id,
		StoreID:   stringField(data, "storeId"),
		UserID:    stringField(data, "userId"),
		Rating:    domain.ParseRating(data["rating"]),
		Comment:   stringField(data, "comment"),
		CreatedAt: timeField(data, "createdAt"),
		UpdatedAt: timeField(data, "updatedAt"),
	}
}
