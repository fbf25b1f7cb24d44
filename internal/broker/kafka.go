package broker

import (
	"time"

	"ledgerpay/internal/config"

	"github.com/segmentio/kafka-go"
)

// BatchTimeout bounds how long a synchronous publish waits for a batch to
// fill. Events go out one at a time, so the writer never waits for company.
const BatchTimeout = 5 * time.Millisecond

func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // events of one user stay ordered
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchSize:    1,
		BatchTimeout: BatchTimeout,
		MaxAttempts:  3,
	}
}
