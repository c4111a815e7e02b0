package messaging

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/pkg/breaker"
)

type recordingSender struct {
	err   error
	calls int
	topic string
	msg   domain.TopicMessage
}

func (s *recordingSender) SendToTopic(_ context.Context, topic string, msg domain.TopicMessage) error {
	s.calls++
	s.topic = topic
	s.msg = msg
	return s.err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestGuarded_Forwards(t *testing.T) {
	next := &recordingSender{}
	g := NewGuarded(next, breaker.DefaultConfig("messaging-forward"), newTestLogger())

	msg := domain.TopicMessage{Title: "New Order!", Body: "body"}
	require.NoError(t, g.SendToTopic(context.Background(), "general", msg))
	assert.Equal(t, "general", next.topic)
	assert.Equal(t, msg, next.msg)
}

func TestGuarded_OpensAfterFailures(t *testing.T) {
	next := &recordingSender{err: errors.New("unavailable")}
	cfg := breaker.Config{
		Name: "messaging-open", MaxRequests: 1, Interval: time.Minute,
		Timeout: time.Minute, FailureRatio: 0.5, MinRequests: 2,
	}
	g := NewGuarded(next, cfg, newTestLogger())
	ctx := context.Background()

	_ = g.SendToTopic(ctx, "general", domain.TopicMessage{})
	_ = g.SendToTopic(ctx, "general", domain.TopicMessage{})
	err := g.SendToTopic(ctx, "general", domain.TopicMessage{})
	assert.ErrorIs(t, err, breaker.ErrOpen)
	assert.Equal(t, 2, next.calls)
}
