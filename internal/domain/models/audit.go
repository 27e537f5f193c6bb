package models

import "time"

// SecurityEventType classifies a security event.
type SecurityEventType string

const (
	// EventRateLimitRejected records an admission rejection.
	EventRateLimitRejected SecurityEventType = "rate_limit.rejected"
	// EventAuthFailureRecorded records a failed authentication attempt.
	EventAuthFailureRecorded SecurityEventType = "auth.failure_recorded"
	// EventLimitsReset records an administrative counter reset.
	EventLimitsReset SecurityEventType = "rate_limit.reset"
	// EventKeyProvisioned records provisioning of a user's envelope key.
	EventKeyProvisioned SecurityEventType = "key.provisioned"
	// EventKeyRotated records rotation of a user's envelope key.
	EventKeyRotated SecurityEventType = "key.rotated"
	// EventCryptoFailure records a failed unwrap or decrypt. The event never
	// contains key material or the reason the crypto step failed.
	EventCryptoFailure SecurityEventType = "crypto.failure"
)

// SecurityEvent is the audit record published for notable security decisions.
type SecurityEvent struct {
	ID        string            `json:"id"`
	Type      SecurityEventType `json:"type"`
	Identity  string            `json:"identity,omitempty"`
	Operation string            `json:"operation,omitempty"`
	RiskLevel string            `json:"risk_level,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}
