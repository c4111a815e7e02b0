// Package kafka publishes topic messages as notification events, for
// deployments where a separate delivery worker owns the push provider.
package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deliverzler/functions/internal/domain"
	pkgkafka "github.com/deliverzler/functions/pkg/kafka"
	"github.com/deliverzler/functions/pkg/logger"
)

// Event metadata for published notifications.
const (
	EventTypeNotificationRequested = "notification.topic.requested"
	AggregateTypeTopic             = "topic"
	SourceFunctions                = "deliverzler-functions"
)

// TopicNotifications is the Kafka topic notification events go to.
var TopicNotifications = pkgkafka.Topic("notifications", "requested")

// NotificationData is the payload of a notification event.
type NotificationData struct {
	Topic string            `json:"topic"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Sender implements messaging.TopicSender on Kafka.
type Sender struct {
	producer publisher
	logger   *slog.Logger
}

// NewSender creates a Kafka-backed sender.
func NewSender(producer *pkgkafka.Producer, logger *slog.Logger) *Sender {
	return newSender(producer, logger)
}

func newSender(p publisher, logger *slog.Logger) *Sender {
	return &Sender{producer: p, logger: logger}
}

// SendToTopic publishes a notification.topic.requested event keyed by the
// notification topic.
func (s *Sender) SendToTopic(ctx context.Context, topic string, msg domain.TopicMessage) error {
	event, err := pkgkafka.NewEvent(EventTypeNotificationRequested, topic, AggregateTypeTopic, SourceFunctions, NotificationData{
		Topic: topic,
		Title: msg.Title,
		Body:  msg.Body,
		Data:  msg.Data,
	})
	if err != nil {
		return fmt.Errorf("create notification event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := s.producer.Publish(ctx, TopicNotifications, event); err != nil {
		return fmt.Errorf("publish notification event: %w", err)
	}

	s.logger.InfoContext(ctx, "topic notification published",
		slog.String("topic", topic),
		slog.String("event_id", event.EventID),
	)
	return nil
}
