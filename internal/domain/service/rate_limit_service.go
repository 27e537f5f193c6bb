package service

import (
	"context"

	"github.com/passlock/passlock/internal/domain/models"
)

// LimiterStats reports the limiter's operational state for the admin surface.
type LimiterStats struct {
	// SharedAvailable is false while the limiter runs degraded on the
	// local backend.
	SharedAvailable bool `json:"shared_available"`
	// LocalEntries is the number of keys held by the local backend.
	LocalEntries int `json:"local_entries"`
	// SharedKeys is the number of limiter keys in the shared store.
	// Zero when the shared backend is unavailable.
	SharedKeys int `json:"shared_keys"`
}

// RateLimitService is the admission-control surface consumed by the
// authentication flow. Decisions are plain booleans: backend failures trigger
// failover internally and are never surfaced, and unexpected internal faults
// resolve to "allowed" to preserve availability.
type RateLimitService interface {
	// IsAllowed performs the risk-adaptive admission check for a login
	// attempt. The per-caller budget shrinks as assessed risk grows.
	IsAllowed(ctx context.Context, identity string, meta models.RequestMetadata) bool

	// Fixed-budget variants for operations that are not risk-adaptive.
	CheckLoginLimit(ctx context.Context, identity string) bool
	CheckAPILimit(ctx context.Context, identity string) bool
	CheckPasswordResetLimit(ctx context.Context, identity string) bool
	CheckCreatePasswordLimit(ctx context.Context, identity string) bool
	CheckDeletePasswordLimit(ctx context.Context, identity string) bool

	// RecordFailedAttempt feeds a failed authentication into the risk
	// book-keeping (and mirrors the count to the shared store when healthy).
	RecordFailedAttempt(ctx context.Context, identity string)

	// RecordSuccessfulAttempt clears the failure book-keeping.
	RecordSuccessfulAttempt(ctx context.Context, identity string)

	// GetFailedAttempts returns the recorded failure count for an identity.
	GetFailedAttempts(ctx context.Context, identity string) int

	// ResetLimits clears all counters for an identity on both backends
	// (best-effort on the shared one) and clears its risk profile.
	ResetLimits(ctx context.Context, identity string)

	// Stats reports backend health and counter sizes.
	Stats(ctx context.Context) LimiterStats
}
