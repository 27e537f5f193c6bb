package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/passlock/passlock/internal/domain/models"
	"github.com/passlock/passlock/internal/domain/service"
	"github.com/passlock/passlock/internal/infrastructure/monitoring"
	"github.com/passlock/passlock/pkg/errors"
	"github.com/passlock/passlock/pkg/logger"
)

// VaultCryptoService orchestrates the envelope key manager for the
// registration and vault-entry flows. It holds no persistence: callers store
// and fetch the per-user key material and the encrypted payloads themselves.
type VaultCryptoService struct {
	envelope  service.EnvelopeService
	publisher service.SecurityEventPublisher
	metrics   *monitoring.Metrics
	logger    logger.Logger
}

// NewVaultCryptoService creates the vault crypto orchestrator.
func NewVaultCryptoService(
	envelope service.EnvelopeService,
	publisher service.SecurityEventPublisher,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *VaultCryptoService {
	return &VaultCryptoService{
		envelope:  envelope,
		publisher: publisher,
		metrics:   metrics,
		logger:    log.WithComponent("VaultCryptoService"),
	}
}

// EnrollUser provisions the envelope key material for a new user at
// registration. The caller persists the returned salt and wrapped key.
func (s *VaultCryptoService) EnrollUser(ctx context.Context, password string) (*models.UserKeyMaterial, *errors.AppError) {
	material, appErr := s.envelope.ProvisionKey(password)
	s.metrics.RecordCryptoOperation("provision", appErr == nil)
	if appErr != nil {
		// Crypto faults are never swallowed: failing open here would be a
		// security defect, unlike in the rate limiter.
		return nil, appErr
	}

	s.publish(ctx, models.SecurityEvent{Type: models.EventKeyProvisioned})
	return material, nil
}

// UnlockUser re-derives the user's data-encryption key from the password and
// the stored key material.
func (s *VaultCryptoService) UnlockUser(ctx context.Context, password string, material models.UserKeyMaterial) ([]byte, *errors.AppError) {
	dek, appErr := s.envelope.UnwrapKey(password, material.Salt, material.WrappedKey)
	s.metrics.RecordCryptoOperation("unwrap", appErr == nil)
	if appErr != nil {
		s.publish(ctx, models.SecurityEvent{Type: models.EventCryptoFailure})
		return nil, appErr
	}
	return dek, nil
}

// RotateUserKey re-wraps the user's DEK under a new password. The caller
// persists the returned material; existing payloads stay decryptable.
func (s *VaultCryptoService) RotateUserKey(ctx context.Context, oldPassword, newPassword string, material models.UserKeyMaterial) (*models.UserKeyMaterial, *errors.AppError) {
	rotated, appErr := s.envelope.RotateKey(oldPassword, newPassword, material.Salt, material.WrappedKey)
	s.metrics.RecordCryptoOperation("rotate", appErr == nil)
	if appErr != nil {
		s.publish(ctx, models.SecurityEvent{Type: models.EventCryptoFailure})
		return nil, appErr
	}

	s.publish(ctx, models.SecurityEvent{Type: models.EventKeyRotated})
	return rotated, nil
}

// EncryptEntry protects one vault payload under the user's DEK.
func (s *VaultCryptoService) EncryptEntry(ctx context.Context, dek []byte, plaintext string) (string, *errors.AppError) {
	ciphertext, appErr := s.envelope.Encrypt(plaintext, dek)
	s.metrics.RecordCryptoOperation("encrypt", appErr == nil)
	return ciphertext, appErr
}

// DecryptEntry reverses EncryptEntry.
func (s *VaultCryptoService) DecryptEntry(ctx context.Context, dek []byte, encoded string) (string, *errors.AppError) {
	plaintext, appErr := s.envelope.Decrypt(encoded, dek)
	s.metrics.RecordCryptoOperation("decrypt", appErr == nil)
	if appErr != nil {
		s.publish(ctx, models.SecurityEvent{Type: models.EventCryptoFailure})
		return "", appErr
	}
	return plaintext, nil
}

func (s *VaultCryptoService) publish(ctx context.Context, event models.SecurityEvent) {
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	s.metrics.RecordSecurityEvent(string(event.Type))

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "security event delivery failed",
			logger.String("event_type", string(event.Type)))
	}
}
