// Package event connects document-change topics to the domain handlers.
package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/deliverzler/functions/internal/domain"
	pkgkafka "github.com/deliverzler/functions/pkg/kafka"
)

// ReviewHandler reacts to review writes.
type ReviewHandler interface {
	HandleReviewWritten(ctx context.Context, change domain.Change[domain.Review]) error
}

// OrderHandler reacts to order updates.
type OrderHandler interface {
	HandleOrderUpdated(ctx context.Context, change domain.Change[domain.Order]) error
}

// DriverHandler reacts to driver request writes.
type DriverHandler interface {
	HandleDriverRequestCreated(ctx context.Context, req *domain.DriverRequest) error
	HandleDriverRequestUpdated(ctx context.Context, change domain.Change[domain.DriverRequest]) error
}

// ConsumerHandler decodes document-change events and dispatches them.
type ConsumerHandler struct {
	reviews ReviewHandler
	orders  OrderHandler
	drivers DriverHandler
	logger  *slog.Logger
}

// NewConsumerHandler creates a new event consumer handler.
func NewConsumerHandler(reviews ReviewHandler, orders OrderHandler, drivers DriverHandler, logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{
		reviews: reviews,
		orders:  orders,
		drivers: drivers,
		logger:  logger,
	}
}

// HandleStoreReviewWritten processes store_reviews.written events.
func (h *ConsumerHandler) HandleStoreReviewWritten(ctx context.Context, event *pkgkafka.Event) error {
	change, err := DecodeChange[domain.Review](event)
	if err != nil {
		return err
	}
	for _, r := range []*domain.Review{change.Before, change.After} {
		if r != nil && r.ID == "" {
			r.ID = event.AggregateID
		}
	}
	return h.reviews.HandleReviewWritten(ctx, change)
}

// HandleOrderUpdated processes orders.updated events.
func (h *ConsumerHandler) HandleOrderUpdated(ctx context.Context, event *pkgkafka.Event) error {
	change, err := DecodeChange[domain.Order](event)
	if err != nil {
		return err
	}
	for _, o := range []*domain.Order{change.Before, change.After} {
		if o != nil && o.ID == "" {
			o.ID = event.AggregateID
		}
	}
	return h.orders.HandleOrderUpdated(ctx, change)
}

// HandleDriverRequestCreated processes driver_requests.created events.
func (h *ConsumerHandler) HandleDriverRequestCreated(ctx context.Context, event *pkgkafka.Event) error {
	change, err := DecodeChange[domain.DriverRequest](event)
	if err != nil {
		return err
	}
	if change.After == nil {
		h.logger.WarnContext(ctx, "driver request created without snapshot",
			slog.String("aggregate_id", event.AggregateID),
		)
		return nil
	}
	if change.After.ID == "" {
		change.After.ID = event.AggregateID
	}
	return h.drivers.HandleDriverRequestCreated(ctx, change.After)
}

// HandleDriverRequestUpdated processes driver_requests.updated events.
func (h *ConsumerHandler) HandleDriverRequestUpdated(ctx context.Context, event *pkgkafka.Event) error {
	change, err := DecodeChange[domain.DriverRequest](event)
	if err != nil {
		return err
	}
	for _, d := range []*domain.DriverRequest{change.Before, change.After} {
		if d != nil && d.ID == "" {
			d.ID = event.AggregateID
		}
	}
	return h.drivers.HandleDriverRequestUpdated(ctx, change)
}

// Trigger binds a topic to its boundary-adapted handler.
type Trigger struct {
	Name    string
	Topic   string
	Handler pkgkafka.Handler
}

// Triggers returns every trigger, each wrapped in Neutral.
func (h *ConsumerHandler) Triggers() []Trigger {
	return []Trigger{
		{TriggerOrderUpdated, TopicOrderUpdated, Neutral(TriggerOrderUpdated, h.HandleOrderUpdated, h.logger)},
		{TriggerDriverRequestCreated, TopicDriverRequestCreated, Neutral(TriggerDriverRequestCreated, h.HandleDriverRequestCreated, h.logger)},
		{TriggerDriverRequestUpdated, TopicDriverRequestUpdated, Neutral(TriggerDriverRequestUpdated, h.HandleDriverRequestUpdated, h.logger)},
		{TriggerStoreReviewWritten, TopicStoreReviewWritten, Neutral(TriggerStoreReviewWritten, h.HandleStoreReviewWritten, h.logger)},
	}
}

// ConsumerSettings configures the trigger consumers.
type ConsumerSettings struct {
	Brokers      []string
	GroupID      string
	MaxAttempts  int
	RetryBackoff time.Duration
}

// NewConsumers creates one consumer per trigger. Duplicate deliveries are
// dropped using store.
func NewConsumers(settings ConsumerSettings, h *ConsumerHandler, store pkgkafka.IdempotencyStore, logger *slog.Logger) []*pkgkafka.Consumer {
	group := settings.GroupID
	if group == "" {
		group = ConsumerGroupID
	}

	triggers := h.Triggers()
	consumers := make([]*pkgkafka.Consumer, 0, len(triggers))
	for _, t := range triggers {
		cfg := pkgkafka.ConsumerConfig{
			Brokers:      settings.Brokers,
			GroupID:      group,
			Topic:        t.Topic,
			MaxAttempts:  settings.MaxAttempts,
			RetryBackoff: settings.RetryBackoff,
		}
		handler := pkgkafka.IdempotentHandler(store, t.Handler, logger)
		consumers = append(consumers, pkgkafka.NewConsumer(cfg, handler, logger.With(slog.String("trigger", t.Name))))
	}
	return consumers
}
