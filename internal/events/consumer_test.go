package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockReader struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (r *mockReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if r.err != nil {
		return kafka.Message{}, r.err
	}
	if len(r.messages) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.messages[0]
	r.messages = r.messages[1:]
	return m, nil
}

func (r *mockReader) Close() error {
	r.closed = true
	return nil
}

func encode(t *testing.T, e CheckoutEvent) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(e)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(e.AttemptID), Value: payload}
}

func TestConsumer_ProcessMessage(t *testing.T) {
	reader := &mockReader{messages: []kafka.Message{encode(t, CheckoutEvent{
		Type:        CheckoutVerified,
		AttemptID:   "attempt-1",
		Username:    "asha",
		TotalAmount: decimal.NewFromInt(2570),
	})}}
	var got []CheckoutEvent
	c := &Consumer{reader: reader, logger: zap.NewNop(), handle: func(_ context.Context, e CheckoutEvent) error {
		got = append(got, e)
		return nil
	}}

	require.NoError(t, c.processMessage(context.Background()))

	require.Len(t, got, 1)
	assert.Equal(t, CheckoutVerified, got[0].Type)
	assert.Equal(t, "asha", got[0].Username)
	assert.True(t, got[0].TotalAmount.Equal(decimal.NewFromInt(2570)))
}

func TestConsumer_SkipsMalformed(t *testing.T) {
	reader := &mockReader{messages: []kafka.Message{{Value: []byte("{broken")}}}
	called := false
	c := &Consumer{reader: reader, logger: zap.NewNop(), handle: func(context.Context, CheckoutEvent) error {
		called = true
		return nil
	}}

	assert.NoError(t, c.processMessage(context.Background()))
	assert.False(t, called)
}

func TestConsumer_HandlerError(t *testing.T) {
	reader := &mockReader{messages: []kafka.Message{encode(t, CheckoutEvent{Type: CheckoutVerified, AttemptID: "a"})}}
	c := &Consumer{reader: reader, logger: zap.NewNop(), handle: func(context.Context, CheckoutEvent) error {
		return errors.New("redis down")
	}}

	err := c.processMessage(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestConsumer_RunStopsOnCancel(t *testing.T) {
	reader := &mockReader{messages: []kafka.Message{encode(t, CheckoutEvent{Type: CheckoutCancelled, AttemptID: "a"})}}
	handled := make(chan struct{}, 1)
	c := &Consumer{reader: reader, logger: zap.NewNop(), handle: func(context.Context, CheckoutEvent) error {
		handled <- struct{}{}
		return nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	<-handled
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}

	require.NoError(t, c.Close())
	assert.True(t, reader.closed)
}
