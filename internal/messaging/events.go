// Package messaging publishes interaction events to Kafka for the downstream
// analytics and gamification consumers. Publishing is fire-and-forget: the
// core never blocks a user-facing mutation on the event stream.
package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/sazonlabs/sazon/internal/config"
	"github.com/sazonlabs/sazon/pkg/models"
)

type EventBus struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

// NewEventBus creates the interaction event publisher. With no brokers
// configured the bus is disabled and Publish becomes a no-op.
func NewEventBus(cfg *config.Config, logger *logrus.Logger) *EventBus {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("Kafka brokers not configured, interaction event stream disabled")
		return &EventBus{logger: logger}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topics.Interactions,
		Balancer:     &kafka.Hash{}, // key by user id so a user's events stay ordered
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	return &EventBus{writer: writer, logger: logger}
}

// Publish stamps and emits an interaction event. Failures are logged; the
// caller's mutation has already committed and must not be rolled back.
func (b *EventBus) Publish(event models.InteractionEvent) {
	if b.writer == nil {
		return
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.WithError(err).Error("Failed to encode interaction event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID.String()),
		Value: data,
	})
	if err != nil {
		b.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": event.UserID,
			"type":    event.Type,
		}).Warn("Failed to publish interaction event")
	}
}

func (b *EventBus) Close() error {
	if b.writer == nil {
		return nil
	}
	return b.writer.Close()
}
