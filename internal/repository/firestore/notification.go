package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/deliverzler/functions/internal/domain"
)

// AdminNotificationRepository implements
// repository.AdminNotificationRepository on Firestore.
type AdminNotificationRepository struct {
	client *firestore.Client
}

// NewAdminNotificationRepository creates a Firestore-backed admin
// notification repository.
func NewAdminNotificationRepository(client *firestore.Client) *AdminNotificationRepository {
	return &AdminNotificationRepository{client: client}
}

// Create adds n to admin_notifications/{adminID}/notifications. createdAt is
// a server timestamp.
func (r *AdminNotificationRepository) Create(ctx context.Context, adminID string, n *domain.AdminNotification) (err error) {
	inbox := r.client.Collection(CollectionAdminNotifications).Doc(adminID).Collection(SubcollectionNotifications)

	ctx, end := trace(ctx, "CreateAdminNotification", inbox.Path)
	defer func() { end(err) }()

	ref := inbox.NewDoc()
	if n.ID != "" {
		ref = inbox.Doc(n.ID)
	}

	data := n.Data
	if data == nil {
		data = map[string]string{}
	}

	_, err = ref.Create(ctx, map[string]any{
		"type":      n.Type,
		"title":     n.Title,
		"titleEn":   n.TitleEn,
		"message":   n.Message,
		"messageEn": n.MessageEn,
		"actionUrl": n.ActionURL,
		"data":      data,
		"priority":  n.Priority,
		"isRead":    n.IsRead,
		"createdAt": firestore.ServerTimestamp,
		"relatedId": n.RelatedID,
	})
	if err != nil {
		return fmt.Errorf("create admin notification: %w", err)
	}
	n.ID = ref.ID
	return nil
}
