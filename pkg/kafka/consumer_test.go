package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverzler/functions/pkg/logger"
)

// fakeReader serves queued messages, then blocks until the context ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	r.closed++
	r.mu.Unlock()
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func eventMessage(t *testing.T, offset int64, id string) kafka.Message {
	t.Helper()
	e := testEvent(id)
	e.CorrelationID = "corr-" + id
	raw, err := e.Marshal()
	require.NoError(t, err)
	return kafka.Message{Topic: "deliverzler.orders.updated", Offset: offset, Value: raw}
}

func runConsumer(t *testing.T, r *fakeReader, cfg ConsumerConfig, h Handler, wantCommits int) {
	t.Helper()
	cfg.Topic = "deliverzler.orders.updated"
	cfg.GroupID = "test-group"
	cfg.RetryBackoff = time.Millisecond
	c := newConsumer(r, cfg, h, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool {
		return len(r.committedOffsets()) >= wantCommits
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, r.closed)
}

func TestConsumer_DispatchesAndCommits(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{eventMessage(t, 1, "e1"), eventMessage(t, 2, "e2")}}

	var mu sync.Mutex
	var seen []string
	var eventIDs []string
	h := func(ctx context.Context, e *Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.EventID)
		eventIDs = append(eventIDs, logger.EventIDFromContext(ctx))
		assert.Equal(t, "corr-"+e.EventID, logger.CorrelationIDFromContext(ctx))
		return nil
	}

	runConsumer(t, r, ConsumerConfig{}, h, 2)

	assert.Equal(t, []int64{1, 2}, r.committedOffsets())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"e1", "e2"}, seen)
	assert.Equal(t, []string{"e1", "e2"}, eventIDs)
}

func TestConsumer_RetriesThenSkips(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{eventMessage(t, 7, "e1")}}

	var mu sync.Mutex
	attempts := 0
	h := func(context.Context, *Event) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return errors.New("boom")
	}

	runConsumer(t, r, ConsumerConfig{MaxAttempts: 2}, h, 1)

	assert.Equal(t, []int64{7}, r.committedOffsets())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

func TestConsumer_RetrySucceeds(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{eventMessage(t, 3, "e1")}}

	var mu sync.Mutex
	attempts := 0
	h := func(context.Context, *Event) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	}

	runConsumer(t, r, ConsumerConfig{}, h, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

func TestConsumer_CommitsUndecodableMessage(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{{Offset: 9, Value: []byte("not json")}}}

	called := false
	h := func(context.Context, *Event) error {
		called = true
		return nil
	}

	runConsumer(t, r, ConsumerConfig{}, h, 1)

	assert.Equal(t, []int64{9}, r.committedOffsets())
	assert.False(t, called)
}
