// Package firestore implements the repositories on Cloud Firestore, the
// document store the mobile and admin clients write to.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/deliverzler/functions/pkg/database"
)

// Collection and document names shared with the clients.
const (
	CollectionStores             = "stores"
	CollectionStoreReviews       = "store_reviews"
	CollectionUsers              = "users"
	CollectionAdminNotifications = "admin_notifications"
	SubcollectionNotifications   = "notifications"
	CollectionSystem             = "system"
	DocBootstrapMarker           = "superadmin_bootstrap"
)

// trace starts a document store span for one Firestore round trip.
func trace(ctx context.Context, operation, path string) (context.Context, func(error)) {
	return database.TraceOperation(ctx, database.SystemFirestore, operation, path)
}

func isNotFound(err error) bool { return status.Code(err) == codes.NotFound }

func isAlreadyExists(err error) bool { return status.Code(err) == codes.AlreadyExists }

// Ping reads the bootstrap marker document; a missing document still proves
// the backend is reachable.
func Ping(ctx context.Context, client *firestore.Client) error {
	_, err := client.Collection(CollectionSystem).Doc(DocBootstrapMarker).Get(ctx)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func timeField(data map[string]any, key string) time.Time {
	t, _ := data[key].(time.Time)
	return t
}
