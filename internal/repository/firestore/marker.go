package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/deliverzler/functions/internal/domain"
)

// BootstrapMarkerRepository implements repository.BootstrapMarkerRepository
// with a create-if-absent write on system/superadmin_bootstrap.
type BootstrapMarkerRepository struct {
	client *firestore.Client
}

// NewBootstrapMarkerRepository creates a Firestore-backed marker repository.
func NewBootstrapMarkerRepository(client *firestore.Client) *BootstrapMarkerRepository {
	return &BootstrapMarkerRepository{client: client}
}

func (r *BootstrapMarkerRepository) ref() *firestore.DocumentRef {
	return r.client.Collection(CollectionSystem).Doc(DocBootstrapMarker)
}

// Claim creates the marker. An existing marker reports false.
func (r *BootstrapMarkerRepository) Claim(ctx context.Context, uid string) (_ bool, err error) {
	ctx, end := trace(ctx, "ClaimBootstrapMarker", CollectionSystem+"/"+DocBootstrapMarker)
	defer func() { end(err) }()

	_, err = r.ref().Create(ctx, map[string]any{
		"claimedBy": uid,
		"claimedAt": firestore.ServerTimestamp,
	})
	if isAlreadyExists(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("claim bootstrap marker: %w", err)
	}
	return true, nil
}

// Release deletes the marker.
func (r *BootstrapMarkerRepository) Release(ctx context.Context) (err error) {
	ctx, end := trace(ctx, "ReleaseBootstrapMarker", CollectionSystem+"/"+DocBootstrapMarker)
	defer func() { end(err) }()

	if _, err = r.ref().Delete(ctx); err != nil {
		return fmt.Errorf("release bootstrap marker: %w", err)
	}
	return nil
}

// Get reads the marker, or nil when unclaimed.
func (r *BootstrapMarkerRepository) Get(ctx context.Context) (_ *domain.BootstrapMarker, err error) {
	ctx, end := trace(ctx, "GetBootstrapMarker", CollectionSystem+"/"+DocBootstrapMarker)
	defer func() { end(err) }()

	doc, err := r.ref().Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bootstrap marker: %w", err)
	}
	data := doc.Data()
	return &domain.BootstrapMarker{
		ClaimedBy: stringField(data, "claimedBy"),
		ClaimedAt: timeField(data, "claimedAt"),
	}, nil
}
