// Package kafka publishes committed allocation events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/disaster-relief/internal/config"
	"github.com/couchcryptid/disaster-relief/internal/domain"
)

const eventType = "stock_allocation"

// Writer produces allocation events to a Kafka topic.
// It implements service.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured allocation topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one event. Events for the same stock record share a key and
// so land on the same partition in commit order.
func (w *Writer) Publish(ctx context.Context, event domain.AllocationEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish allocation event %s: %w", event.ID, err)
	}
	w.logger.Debug("allocation event published", "event_id", event.ID, "record", event.RecordID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AllocationEvent into a Kafka message.
func serializeToMessage(event domain.AllocationEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize allocation event: %w", err)
	}
	headers := []kafkago.Header{
		{Key: "event_type", Value: []byte(eventType)},
		{Key: "event_id", Value: []byte(event.ID)},
		{Key: "allocated_at", Value: []byte(event.AllocatedAt.Format(time.RFC3339))},
	}
	if event.SessionID != "" {
		headers = append(headers, kafkago.Header{Key: "session_id", Value: []byte(event.SessionID)})
	}
	return kafkago.Message{
		Key:     []byte(event.RecordID),
		Value:   data,
		Headers: headers,
	}, nil
}
