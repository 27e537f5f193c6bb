package models

import "time"

// RiskLevel is the discrete outcome of a risk assessment. Levels are ordered:
// risk strictly increases and the request budget strictly decreases from LOW
// to CRITICAL.
type RiskLevel int

const (
	// RiskLow is the baseline for callers with no adverse signals.
	RiskLow RiskLevel = iota
	// RiskMedium marks suspicious callers.
	RiskMedium
	// RiskHigh marks very suspicious callers.
	RiskHigh
	// RiskCritical marks callers one step from being blocked outright.
	RiskCritical
)

// String returns the level name for logging and events.
func (l RiskLevel) String() string {
	switch l {
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	case RiskCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// RiskPolicy binds a risk level to its sliding-window admission budget.
type RiskPolicy struct {
	// MaxRequests is the admission budget inside one window.
	MaxRequests int
	// Window is the sliding-window length.
	Window time.Duration
}

// riskPolicies is the fixed lookup table. MaxRequests strictly decreases and
// Window is non-decreasing from LOW to CRITICAL.
var riskPolicies = map[RiskLevel]RiskPolicy{
	RiskLow:      {MaxRequests: 10, Window: time.Minute},
	RiskMedium:   {MaxRequests: 5, Window: time.Minute},
	RiskHigh:     {MaxRequests: 2, Window: 2 * time.Minute},
	RiskCritical: {MaxRequests: 1, Window: 5 * time.Minute},
}

// Policy returns the admission budget bound to the level. Unknown levels
// resolve to the CRITICAL policy.
func (l RiskLevel) Policy() RiskPolicy {
	if p, ok := riskPolicies[l]; ok {
		return p
	}
	return riskPolicies[RiskCritical]
}

// RiskProfile summarizes the recent failure history of one caller identity.
// A successful authentication clears the profile.
type RiskProfile struct {
	Identity       string    `json:"identity"`
	FailedAttempts int       `json:"failed_attempts"`
	LastFailure    time.Time `json:"last_failure"`
}

// RequestMetadata carries the request signals the risk scorer consumes.
// Missing fields are scored at the worst value known for that signal.
type RequestMetadata struct {
	UserAgent string
}
