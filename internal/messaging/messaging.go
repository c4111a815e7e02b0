// Package messaging sends push notifications to topic subscribers.
package messaging

import (
	"context"
	"log/slog"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/pkg/breaker"
)

// TopicSender delivers a message to every subscriber of a topic.
type TopicSender interface {
	SendToTopic(ctx context.Context, topic string, msg domain.TopicMessage) error
}

// Guarded routes sends through a circuit breaker.
type Guarded struct {
	next TopicSender
	cb   *breaker.Breaker
}

// NewGuarded wraps next in a breaker configured from cfg.
func NewGuarded(next TopicSender, cfg breaker.Config, logger *slog.Logger) *Guarded {
	return &Guarded{next: next, cb: breaker.New(cfg, logger)}
}

// SendToTopic forwards msg to the wrapped sender, failing fast with
// breaker.ErrOpen while the breaker is open.
func (g *Guarded) SendToTopic(ctx context.Context, topic string, msg domain.TopicMessage) error {
	return g.cb.Do(ctx, func(ctx context.Context) error {
		return g.next.SendToTopic(ctx, topic, msg)
	})
}
