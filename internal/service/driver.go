package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"golang.org/x/sync/errgroup"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/internal/repository"
)

// DriverNotifier writes driver request notifications to every admin inbox.
type DriverNotifier struct {
	users         repository.UserRepository
	notifications repository.AdminNotificationRepository
	logger        *slog.Logger
}

// NewDriverNotifier creates a new driver notifier.
func NewDriverNotifier(users repository.UserRepository, notifications repository.AdminNotificationRepository, logger *slog.Logger) *DriverNotifier {
	return &DriverNotifier{
		users:         users,
		notifications: notifications,
		logger:        logger,
	}
}

// HandleDriverRequestCreated notifies admins of a new registration request.
func (n *DriverNotifier) HandleDriverRequestCreated(ctx context.Context, req *domain.DriverRequest) error {
	if req == nil {
		return nil
	}
	return n.fanOut(ctx, domain.NewDriverRequestNotification(req))
}

// HandleDriverRequestUpdated notifies admins when a request's status changed.
func (n *DriverNotifier) HandleDriverRequestUpdated(ctx context.Context, change domain.Change[domain.DriverRequest]) error {
	if !domain.DriverStatusChanged(change) {
		return nil
	}
	return n.fanOut(ctx, domain.NewDriverStatusNotification(change.After))
}

// fanOut writes one copy of tmpl per admin concurrently and returns the
// first error after every write has finished.
func (n *DriverNotifier) fanOut(ctx context.Context, tmpl domain.AdminNotification) error {
	admins, err := n.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	if len(admins) == 0 {
		n.logger.InfoContext(ctx, "no admins to notify",
			slog.String("related_id", tmpl.RelatedID),
		)
		return nil
	}

	var g errgroup.Group
	for _, admin := range admins {
		note := tmpl
		note.Data = maps.Clone(tmpl.Data)
		g.Go(func() error {
			if err := n.notifications.Create(ctx, admin.ID, &note); err != nil {
				return fmt.Errorf("notify admin %s: %w", admin.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	n.logger.InfoContext(ctx, "admins notified",
		slog.String("related_id", tmpl.RelatedID),
		slog.Int("admin_count", len(admins)),
	)
	return nil
}
