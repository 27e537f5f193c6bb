// Package audit implements the security-event publisher over Kafka.
package audit

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/passlock/passlock/internal/config"
	"github.com/passlock/passlock/internal/domain/models"
	"github.com/passlock/passlock/internal/domain/service"
	"github.com/passlock/passlock/pkg/logger"
)

// KafkaPublisher is a Kafka-backed SecurityEventPublisher.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger logger.Logger
}

var _ service.SecurityEventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to the configured topic.
func NewKafkaPublisher(cfg config.KafkaConfig, log logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
	}
	return &KafkaPublisher{
		writer: writer,
		logger: log.WithComponent("KafkaPublisher"),
	}
}

// Publish sends one security event. Delivery failures are logged and returned
// but callers treat them as best-effort.
func (p *KafkaPublisher) Publish(ctx context.Context, event models.SecurityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal security event", err,
			logger.String("event_type", string(event.Type)))
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Identity),
		Value: payload,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to publish security event", err,
			logger.String("event_type", string(event.Type)))
	}
	return err
}

// Close closes the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
