// Package service provides the application-layer orchestration around the
// security core: the login guard consulted by the authentication flow and the
// vault crypto service consumed by registration and vault-entry flows.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/passlock/passlock/internal/domain/models"
	"github.com/passlock/passlock/internal/domain/service"
	"github.com/passlock/passlock/internal/infrastructure/monitoring"
	"github.com/passlock/passlock/pkg/constants"
	"github.com/passlock/passlock/pkg/errors"
	"github.com/passlock/passlock/pkg/logger"
)

// AuthGuardService wraps the risk scorer and the adaptive limiter into the
// decision surface the authentication flow calls around every login attempt.
// It owns no authentication logic itself: password verification, user lookup,
// and token issuance stay with the caller.
type AuthGuardService struct {
	limiter   service.RateLimitService
	scorer    service.RiskAssessor
	publisher service.SecurityEventPublisher
	metrics   *monitoring.Metrics
	logger    logger.Logger
}

// NewAuthGuardService creates the login guard.
func NewAuthGuardService(
	limiter service.RateLimitService,
	scorer service.RiskAssessor,
	publisher service.SecurityEventPublisher,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *AuthGuardService {
	return &AuthGuardService{
		limiter:   limiter,
		scorer:    scorer,
		publisher: publisher,
		metrics:   metrics,
		logger:    log.WithComponent("AuthGuardService"),
	}
}

// CheckLogin runs the risk-adaptive admission check for one login attempt.
// A rejection returns a rate_limit_exceeded error with a retry-after hint
// sized to the assessed risk level's window; an admission returns nil.
func (s *AuthGuardService) CheckLogin(ctx context.Context, identity string, meta models.RequestMetadata) *errors.AppError {
	if s.limiter.IsAllowed(ctx, identity, meta) {
		return nil
	}

	level := s.scorer.Assess(identity, meta)
	policy := level.Policy()

	s.publish(ctx, models.SecurityEvent{
		Type:      models.EventRateLimitRejected,
		Identity:  identity,
		Operation: constants.OperationLogin,
		RiskLevel: level.String(),
	})

	return errors.ErrRateLimitExceeded(constants.OperationLogin, policy.MaxRequests, policy.Window)
}

// OnLoginFailure records a failed authentication attempt for the identity.
func (s *AuthGuardService) OnLoginFailure(ctx context.Context, identity string) {
	s.limiter.RecordFailedAttempt(ctx, identity)
	s.publish(ctx, models.SecurityEvent{
		Type:     models.EventAuthFailureRecorded,
		Identity: identity,
	})
}

// OnLoginSuccess clears the identity's failure history and counters.
func (s *AuthGuardService) OnLoginSuccess(ctx context.Context, identity string) {
	s.limiter.RecordSuccessfulAttempt(ctx, identity)
}

// CheckPasswordReset enforces the fixed password-reset budget.
func (s *AuthGuardService) CheckPasswordReset(ctx context.Context, identity string) *errors.AppError {
	if s.limiter.CheckPasswordResetLimit(ctx, identity) {
		return nil
	}
	return errors.ErrRateLimitExceeded(constants.OperationPasswordReset,
		constants.PasswordResetMaxRequests, constants.PasswordResetWindow)
}

// CheckVaultWrite enforces the fixed vault-entry-creation budget.
func (s *AuthGuardService) CheckVaultWrite(ctx context.Context, identity string) *errors.AppError {
	if s.limiter.CheckCreatePasswordLimit(ctx, identity) {
		return nil
	}
	return errors.ErrRateLimitExceeded(constants.OperationCreatePassword,
		constants.CreatePasswordMaxRequests, constants.APIWindow)
}

// CheckVaultDelete enforces the fixed vault-entry-deletion budget.
func (s *AuthGuardService) CheckVaultDelete(ctx context.Context, identity string) *errors.AppError {
	if s.limiter.CheckDeletePasswordLimit(ctx, identity) {
		return nil
	}
	return errors.ErrRateLimitExceeded(constants.OperationDeletePassword,
		constants.DeletePasswordMaxRequests, constants.APIWindow)
}

// ResetLimits clears all counters and the risk profile for an identity and
// records the administrative action.
func (s *AuthGuardService) ResetLimits(ctx context.Context, identity string) {
	s.limiter.ResetLimits(ctx, identity)
	s.publish(ctx, models.SecurityEvent{
		Type:     models.EventLimitsReset,
		Identity: identity,
	})
}

// Stats reports the limiter's operational state.
func (s *AuthGuardService) Stats(ctx context.Context) service.LimiterStats {
	return s.limiter.Stats(ctx)
}

// publish sends a security event, best-effort.
func (s *AuthGuardService) publish(ctx context.Context, event models.SecurityEvent) {
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	s.metrics.RecordSecurityEvent(string(event.Type))

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "security event delivery failed",
			logger.String("event_type", string(event.Type)))
	}
}
