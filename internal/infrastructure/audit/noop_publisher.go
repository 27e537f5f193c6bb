package audit

import (
	"context"

	"github.com/passlock/passlock/internal/domain/models"
	"github.com/passlock/passlock/internal/domain/service"
)

// NoopPublisher discards events. Used when Kafka is disabled and in tests.
type NoopPublisher struct{}

var _ service.SecurityEventPublisher = (*NoopPublisher)(nil)

// NewNoopPublisher returns a publisher that discards all events.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Publish implements SecurityEventPublisher.
func (p *NoopPublisher) Publish(context.Context, models.SecurityEvent) error {
	return nil
}

// Close implements SecurityEventPublisher.
func (p *NoopPublisher) Close() error {
	return nil
}
