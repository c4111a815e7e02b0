package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	pkgkafka "github.com/deliverzler/functions/pkg/kafka"
)

// Trigger outcomes.
const (
	OutcomeHandled = "handled"
	OutcomeFailed  = "failed"
)

var (
	triggerInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trigger_invocations_total",
			Help: "Total number of trigger invocations by outcome",
		},
		[]string{"trigger", "outcome"},
	)

	triggerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trigger_duration_seconds",
			Help:    "Duration of trigger handler invocations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"trigger"},
	)
)

// Neutral adapts a domain handler to the trigger boundary. Errors are logged
// and counted, then reported as handled so the event is committed and never
// retried.
func Neutral(trigger string, inner pkgkafka.Handler, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, event *pkgkafka.Event) error {
		start := time.Now()
		err := inner(ctx, event)
		triggerDuration.WithLabelValues(trigger).Observe(time.Since(start).Seconds())

		if err != nil {
			triggerInvocations.WithLabelValues(trigger, OutcomeFailed).Inc()
			logger.ErrorContext(ctx, "trigger failed",
				slog.String("trigger", trigger),
				slog.String("event_id", event.EventID),
				slog.String("aggregate_id", event.AggregateID),
				slog.String("error", err.Error()),
			)
			return nil
		}

		triggerInvocations.WithLabelValues(trigger, OutcomeHandled).Inc()
		return nil
	}
}
