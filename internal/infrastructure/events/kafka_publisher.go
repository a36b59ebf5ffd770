package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/ports"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes export events to a topic, keyed by user so one user's events
// stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (k *KafkaPublisher) PublishExport(ctx context.Context, event domain.ExportEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode export event: %w", err)
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: msg,
		Time:  event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to publish export event: %w", err)
	}

	k.logger.Debug().
		Str("eventId", event.EventID).
		Str("topic", k.writer.Topic).
		Msg("Published export event")
	return nil
}

// Close flushes pending messages.
func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// NoopPublisher drops events; used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishExport(context.Context, domain.ExportEvent) error { return nil }

var (
	_ ports.EventPublisher = (*KafkaPublisher)(nil)
	_ ports.EventPublisher = NoopPublisher{}
)
