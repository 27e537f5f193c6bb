// Package constants defines shared constants for the Passlock security core:
// error codes, rate-limit operation names, Redis key prefixes, and the default
// timing parameters of the limiter's maintenance cycle.
package constants

import "time"

// ================================================================================
// Error Codes
// ================================================================================

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates a malformed or incomplete request.
	ErrCodeInvalidRequest ErrorCode = "invalid_request"
	// ErrCodeRateLimitExceeded indicates the caller is over its request budget.
	ErrCodeRateLimitExceeded ErrorCode = "rate_limit_exceeded"
	// ErrCodeCryptoFailure indicates a key-wrapping or payload cipher failure.
	// The code is deliberately opaque: callers must not learn which step failed.
	ErrCodeCryptoFailure ErrorCode = "crypto_failure"
	// ErrCodeBackendUnavailable indicates the shared counter store is unreachable.
	// This code stays inside the rate limiter and never surfaces to callers.
	ErrCodeBackendUnavailable ErrorCode = "backend_unavailable"
	// ErrCodeServerError indicates an unexpected internal condition.
	ErrCodeServerError ErrorCode = "server_error"
)

// ================================================================================
// Rate-Limit Operations
// ================================================================================

// Operation names partition the sliding-window counters. Counter keys are
// built as "<operation>:<caller identity>".
const (
	OperationLogin          = "login"
	OperationAPI            = "api"
	OperationPasswordReset  = "pwd_reset"
	OperationCreatePassword = "create_pwd"
	OperationDeletePassword = "delete_pwd"
)

// Operations lists every operation the limiter tracks. The administrative
// reset walks this list to clear all counters for an identity.
var Operations = []string{
	OperationLogin,
	OperationAPI,
	OperationPasswordReset,
	OperationCreatePassword,
	OperationDeletePassword,
}

// Fixed budgets for the non-adaptive operations.
const (
	LoginMaxRequests          = 5
	APIMaxRequests            = 100
	PasswordResetMaxRequests  = 3
	CreatePasswordMaxRequests = 50
	DeletePasswordMaxRequests = 20

	LoginWindow         = 15 * time.Minute
	APIWindow           = time.Hour
	PasswordResetWindow = time.Hour
)

// ================================================================================
// Redis Key Prefixes
// ================================================================================

const (
	// RateLimitKeyPrefix prefixes sliding-window sorted-set keys.
	RateLimitKeyPrefix = "rate_limit:"
	// FailedAttemptsKeyPrefix prefixes the per-identity failure counters.
	FailedAttemptsKeyPrefix = "failed_attempts:"
	// BlockedKeySuffix suffixes the per-key blocked-request counters.
	BlockedKeySuffix = ":blocked"
)

// ================================================================================
// Limiter Timing Defaults
// ================================================================================

const (
	// DefaultMaintenanceInterval is how often the limiter re-probes backend
	// health and sweeps the local counter store.
	DefaultMaintenanceInterval = 5 * time.Minute
	// DefaultLocalRetention bounds how long the local store keeps timestamps.
	DefaultLocalRetention = time.Hour
	// DefaultBackendTimeout bounds a single shared-backend round trip.
	// A timeout is treated as backend failure, not as a rejection.
	DefaultBackendTimeout = 500 * time.Millisecond
	// DefaultFailedAttemptsTTL is the lifetime of the shared failure counters.
	DefaultFailedAttemptsTTL = 24 * time.Hour
	// DefaultBlockedCounterTTL is the lifetime of the blocked-request counters.
	DefaultBlockedCounterTTL = time.Hour
	// DefaultRiskProfileTTL is the lifetime of an idle risk profile.
	DefaultRiskProfileTTL = 24 * time.Hour
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type for values stored in a request context.
type ContextKey string

const (
	// ContextKeyTraceID carries the request trace identifier for logging.
	ContextKeyTraceID ContextKey = "trace_id"
)
