package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const retryDelay = time.Second

// Handler reacts to one checkout event.
type Handler func(ctx context.Context, event CheckoutEvent) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer reads checkout events from Kafka and hands them to a Handler.
type Consumer struct {
	reader messageReader
	handle Handler
	logger *zap.Logger
}

func NewConsumer(topic, groupID string, handle Handler, logger *zap.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, handle: handle, logger: logger}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	for ctx.Err() == nil {
		if err := c.processMessage(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn("checkout event not processed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context) error {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}

	var event CheckoutEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		// a malformed message is skipped rather than retried forever
		c.logger.Warn("skipping malformed checkout event",
			zap.Int64("offset", m.Offset),
			zap.Error(err))
		return nil
	}

	if err := c.handle(ctx, event); err != nil {
		return fmt.Errorf("failed to handle %s for attempt %s: %w", event.Type, event.AttemptID, err)
	}
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
