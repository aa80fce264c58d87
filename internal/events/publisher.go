package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type EventType string

const (
	CheckoutCreated            EventType = "checkout.created"
	CheckoutCreateFailed       EventType = "checkout.create_failed"
	CheckoutCancelled          EventType = "checkout.cancelled"
	CheckoutVerified           EventType = "checkout.verified"
	CheckoutVerificationFailed EventType = "checkout.verification_failed"
)

type CheckoutEvent struct {
	Type             EventType       `json:"event_type"`
	AttemptID        string          `json:"attempt_id"`
	Username         string          `json:"username"`
	GatewayOrderID   string          `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Reason           string          `json:"reason,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event CheckoutEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, CheckoutEvent) error { return nil }

// Nop discards every event.
var Nop Publisher = nopPublisher{}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

func NewKafkaPublisher(topic string, logger *zap.Logger, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event CheckoutEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.AttemptID), // one attempt's events stay ordered
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("failed to publish checkout event",
			zap.String("event_type", string(event.Type)),
			zap.String("attempt_id", event.AttemptID),
			zap.Error(err))
		return fmt.Errorf("failed to publish checkout event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
