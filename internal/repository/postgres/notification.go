package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/pkg/database"
)

// AdminNotificationRepository implements repository.AdminNotificationRepository
// using PostgreSQL.
type AdminNotificationRepository struct {
	pool database.DBTX
}

// NewAdminNotificationRepository creates a new PostgreSQL-backed admin
// notification repository.
func NewAdminNotificationRepository(pool database.DBTX) *AdminNotificationRepository {
	return &AdminNotificationRepository{pool: pool}
}

// Create inserts n into the inbox of adminID. created_at is set by the server.
func (r *AdminNotificationRepository) Create(ctx context.Context, adminID string, n *domain.AdminNotification) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	data := n.Data
	if data == nil {
		data = map[string]string{}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}

	query := `
		INSERT INTO admin_notifications (id, admin_id, type, title, title_en, message, message_en, action_url, data, priority, is_read, related_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())`

	ctx, end := database.TraceQuery(ctx, "CreateAdminNotification", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		n.ID,
		adminID,
		n.Type,
		n.Title,
		n.TitleEn,
		n.Message,
		n.MessageEn,
		n.ActionURL,
		dataJSON,
		n.Priority,
		n.IsRead,
		n.RelatedID,
	)
	if err != nil {
		return fmt.Errorf("insert admin notification: %w", err)
	}

	return nil
}
