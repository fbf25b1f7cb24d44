package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Event types
const (
	TypeChargeCreated = "charge.created"
	TypeChargeSettled = "charge.settled"
)

// LedgerEvent is the message published for every charge lifecycle step.
type LedgerEvent struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	UserID        string          `json:"user_id"`
	TransactionID uint            `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewLedgerEvent stamps an event with a fresh id and the current time.
func NewLedgerEvent(eventType, userID string, transactionID uint, amount decimal.Decimal) LedgerEvent {
	return LedgerEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		UserID:        userID,
		TransactionID: transactionID,
		Amount:        amount,
		OccurredAt:    time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) Publisher {
	return &kafkaPublisher{writer: writer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event LedgerEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, LedgerEvent) error { return nil }
func (NoopPublisher) Close() error                               { return nil }
