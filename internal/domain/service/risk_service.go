package service

import (
	"github.com/passlock/passlock/internal/domain/models"
)

// RiskAssessor scores caller identities from their recent failure history and
// request metadata. Implementations never fail: an unscoreable input degrades
// to the worst known sub-score for that signal.
type RiskAssessor interface {
	// Assess maps the caller's current signals to a discrete risk level.
	// It is a pure read; it does not mutate the failure history.
	Assess(identity string, meta models.RequestMetadata) models.RiskLevel

	// RecordFailedAttempt increments the failure counter for the identity
	// and stamps the failure time.
	RecordFailedAttempt(identity string)

	// RecordSuccessfulAttempt clears the identity's profile.
	RecordSuccessfulAttempt(identity string)

	// Profile returns the current profile for the identity, or a zero
	// profile when none is recorded.
	Profile(identity string) models.RiskProfile
}
