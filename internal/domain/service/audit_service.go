package service

import (
	"context"

	"github.com/passlock/passlock/internal/domain/models"
)

// SecurityEventPublisher delivers security events to the audit pipeline.
// Publishing is best-effort: delivery failures are logged by implementations
// and never block the request path.
type SecurityEventPublisher interface {
	// Publish sends one security event.
	Publish(ctx context.Context, event models.SecurityEvent) error

	// Close flushes and releases the underlying transport.
	Close() error
}
