// Package risk implements the risk scorer: a pure scoring function over a
// caller's recent failure history and request metadata.
package risk

import (
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/passlock/passlock/internal/domain/models"
	"github.com/passlock/passlock/internal/domain/service"
)

// Sub-score values and level thresholds. These are fixed contract values, not
// tunables: the limiter's policy table and the tests depend on them.
const (
	scoreFailuresFew  = 10 // 1-2 recent failures
	scoreFailuresSome = 20 // 3-5 recent failures
	scoreFailuresMany = 30 // more than 5

	scoreUserAgentMissing    = 15
	scoreUserAgentAutomation = 10

	thresholdCritical = 40
	thresholdHigh     = 25
	thresholdMedium   = 15
)

// defaultDenylist matches common automation tokens in User-Agent strings.
var defaultDenylist = []string{"bot", "crawler", "python"}

// Scorer assesses caller risk. Profiles live in an expiring in-process cache;
// an identity with no failures for the profile TTL decays back to a clean
// slate without explicit cleanup.
type Scorer struct {
	mu       sync.Mutex
	profiles *gocache.Cache
	denylist []string
	ttl      time.Duration

	// clock is swappable for tests.
	clock func() time.Time
}

var _ service.RiskAssessor = (*Scorer)(nil)

// NewScorer creates a Scorer. A zero ttl defaults to 24h; a nil denylist
// defaults to the built-in automation tokens.
func NewScorer(ttl time.Duration, denylist []string) *Scorer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if len(denylist) == 0 {
		denylist = defaultDenylist
	}
	lowered := make([]string, len(denylist))
	for i, token := range denylist {
		lowered[i] = strings.ToLower(token)
	}

	return &Scorer{
		profiles: gocache.New(ttl, 10*time.Minute),
		denylist: lowered,
		ttl:      ttl,
		clock:    time.Now,
	}
}

// Assess maps the caller's current signals to a risk level. It never fails:
// missing metadata is scored at the worst known value for that signal.
func (s *Scorer) Assess(identity string, meta models.RequestMetadata) models.RiskLevel {
	score := s.failedAttemptsScore(identity)
	score += s.userAgentScore(meta.UserAgent)
	score += s.timingScore(identity)

	return mapScoreToLevel(score)
}

// RecordFailedAttempt increments the failure counter for the identity.
// Concurrent calls for the same identity serialize on the scorer mutex:
// counts increment monotonically and the last writer wins on the timestamp.
func (s *Scorer) RecordFailedAttempt(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := models.RiskProfile{Identity: identity}
	if cached, ok := s.profiles.Get(identity); ok {
		profile = cached.(models.RiskProfile)
	}
	profile.FailedAttempts++
	profile.LastFailure = s.clock()
	s.profiles.Set(identity, profile, s.ttl)
}

// RecordSuccessfulAttempt clears the identity's profile. A successful
// authentication always resets the failure history.
func (s *Scorer) RecordSuccessfulAttempt(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles.Delete(identity)
}

// Profile returns the current profile, or a zero profile when none exists.
func (s *Scorer) Profile(identity string) models.RiskProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.profiles.Get(identity); ok {
		return cached.(models.RiskProfile)
	}
	return models.RiskProfile{Identity: identity}
}

func (s *Scorer) failedAttemptsScore(identity string) int {
	attempts := s.Profile(identity).FailedAttempts
	switch {
	case attempts == 0:
		return 0
	case attempts <= 2:
		return scoreFailuresFew
	case attempts <= 5:
		return scoreFailuresSome
	default:
		return scoreFailuresMany
	}
}

func (s *Scorer) userAgentScore(userAgent string) int {
	if strings.TrimSpace(userAgent) == "" {
		return scoreUserAgentMissing
	}

	ua := strings.ToLower(userAgent)
	for _, token := range s.denylist {
		if strings.Contains(ua, token) {
			return scoreUserAgentAutomation
		}
	}
	return 0
}

// timingScore is a reserved extension point for request-cadence heuristics.
// It returns 0 in the baseline design; the contract stays stable when an
// implementation lands.
func (s *Scorer) timingScore(string) int {
	return 0
}

func mapScoreToLevel(score int) models.RiskLevel {
	switch {
	case score >= thresholdCritical:
		return models.RiskCritical
	case score >= thresholdHigh:
		return models.RiskHigh
	case score >= thresholdMedium:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
