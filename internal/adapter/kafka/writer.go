package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/aew-track-map/internal/config"
	"github.com/couchcryptid/aew-track-map/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// publishTimeout bounds a single Publish so a slow broker cannot stall a request.
const publishTimeout = 5 * time.Second

// Publisher produces interaction events to a Kafka topic.
// It implements domain.EventSink.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured interaction topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: publishTimeout,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish writes one event and waits for the broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, event domain.InteractionEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	p.logger.Debug("interaction event published", "type", event.Type, "id", event.ID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an InteractionEvent into a Kafka message.
func serializeToMessage(event domain.InteractionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize interaction event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "occurred_at", Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}
