package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/internal/repository"
)

// RatingService keeps each store's rating fields in line with its reviews.
type RatingService struct {
	reviews repository.ReviewRepository
	stores  repository.StoreRepository
	logger  *slog.Logger
}

// NewRatingService creates a new rating service.
func NewRatingService(reviews repository.ReviewRepository, stores repository.StoreRepository, logger *slog.Logger) *RatingService {
	return &RatingService{
		reviews: reviews,
		stores:  stores,
		logger:  logger,
	}
}

// RecomputeStoreRating reads every review of the store and writes the
// aggregate back to the store document.
func (s *RatingService) RecomputeStoreRating(ctx context.Context, storeID string) error {
	reviews, err := s.reviews.ListByStore(ctx, storeID)
	if err != nil {
		return fmt.Errorf("list reviews of store %s: %w", storeID, err)
	}

	summary := domain.AggregateRatings(reviews)
	if err := s.stores.UpdateRating(ctx, storeID, summary); err != nil {
		return fmt.Errorf("update rating of store %s: %w", storeID, err)
	}

	s.logger.InfoContext(ctx, "store rating updated",
		slog.String("store_id", storeID),
		slog.Float64("rating", summary.Average),
		slog.Int("total_ratings", summary.Count),
	)
	return nil
}

// HandleReviewWritten recomputes the rating of the store a review belongs to.
// A review without a store ID is ignored.
func (s *RatingService) HandleReviewWritten(ctx context.Context, change domain.Change[domain.Review]) error {
	storeID := domain.StoreIDOf(change)
	if storeID == "" {
		s.logger.DebugContext(ctx, "review has no store id, skipping")
		return nil
	}
	return s.RecomputeStoreRating(ctx, storeID)
}
