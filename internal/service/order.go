package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/internal/messaging"
)

// DefaultNotificationTopic is the topic every client app subscribes to.
const DefaultNotificationTopic = "general"

// OrderNotifier announces new delivery orders to subscribed clients.
type OrderNotifier struct {
	sender messaging.TopicSender
	topic  string
	logger *slog.Logger
}

// NewOrderNotifier creates an order notifier sending to topic.
func NewOrderNotifier(sender messaging.TopicSender, topic string, logger *slog.Logger) *OrderNotifier {
	if topic == "" {
		topic = DefaultNotificationTopic
	}
	return &OrderNotifier{
		sender: sender,
		topic:  topic,
		logger: logger,
	}
}

// HandleOrderUpdated sends one topic notification when a delivery order
// moves from pending to upcoming.
func (n *OrderNotifier) HandleOrderUpdated(ctx context.Context, change domain.Change[domain.Order]) error {
	if !domain.IsNewDeliveryOrder(change) {
		return nil
	}

	msg := domain.NewOrderMessage(change.After)
	if err := n.sender.SendToTopic(ctx, n.topic, msg); err != nil {
		return fmt.Errorf("send new order notification for order %s: %w", change.After.ID, err)
	}

	n.logger.InfoContext(ctx, "new delivery order notification sent",
		slog.String("order_id", change.After.ID),
		slog.String("topic", n.topic),
	)
	return nil
}
