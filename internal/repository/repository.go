package repository

import (
	"context"

	"github.com/deliverzler/functions/internal/domain"
)

// ReviewRepository reads store reviews.
type ReviewRepository interface {
	// ListByStore returns every review of the store in one read.
	ListByStore(ctx context.Context, storeID string) ([]domain.Review, error)
}

// StoreRepository writes the rating fields derived from reviews.
type StoreRepository interface {
	// UpdateRating sets rating, totalRatings and a server-assigned updatedAt.
	// The store must exist; a missing store is a NotFound error.
	UpdateRating(ctx context.Context, storeID string, summary domain.RatingSummary) error
}

// UserRepository defines persistence for user document records.
type UserRepository interface {
	// Get returns the record or a NotFound error.
	Get(ctx context.Context, id string) (*domain.User, error)

	// Set creates or replaces the record. CreatedAt and UpdatedAt are
	// assigned by the store.
	Set(ctx context.Context, user *domain.User) error

	// Delete removes the record if it exists. A missing record is not an error.
	Delete(ctx context.Context, id string) error

	// ListByRole returns every record with the given role.
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// AdminNotificationRepository writes to admin notification inboxes.
type AdminNotificationRepository interface {
	// Create adds n to the inbox of adminID, assigning n.ID when empty.
	Create(ctx context.Context, adminID string, n *domain.AdminNotification) error
}

// BootstrapMarkerRepository guards the one-time super admin bootstrap.
type BootstrapMarkerRepository interface {
	// Claim atomically creates the marker for uid. It reports false when the
	// marker already exists.
	Claim(ctx context.Context, uid string) (bool, error)

	// Release deletes the marker so the bootstrap can be retried.
	Release(ctx context.Context) error

	// Get returns the marker, or nil when unclaimed.
	Get(ctx context.Context) (*domain.BootstrapMarker, error)
}
