// Package fcm sends topic messages through Firebase Cloud Messaging.
package fcm

import (
	"context"
	"fmt"
	"log/slog"

	"firebase.google.com/go/v4/messaging"

	"github.com/deliverzler/functions/internal/domain"
)

type client interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Sender implements messaging.TopicSender on FCM.
type Sender struct {
	client client
	logger *slog.Logger
}

// NewSender creates an FCM sender.
func NewSender(c *messaging.Client, logger *slog.Logger) *Sender {
	return newSender(c, logger)
}

func newSender(c client, logger *slog.Logger) *Sender {
	return &Sender{client: c, logger: logger}
}

// SendToTopic sends msg to the topic's subscribers.
func (s *Sender) SendToTopic(ctx context.Context, topic string, msg domain.TopicMessage) error {
	id, err := s.client.Send(ctx, &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	})
	if err != nil {
		return fmt.Errorf("send fcm message to topic %s: %w", topic, err)
	}

	s.logger.InfoContext(ctx, "topic notification sent",
		slog.String("topic", topic),
		slog.String("message_id", id),
	)
	return nil
}
