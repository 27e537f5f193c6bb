package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passlock/passlock/internal/domain/models"
	"github.com/passlock/passlock/internal/infrastructure/risk"
	"github.com/passlock/passlock/pkg/constants"
	"github.com/passlock/passlock/pkg/logger"
)

func newTestLimiter(t *testing.T) (*AdaptiveLimiter, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	scorer := risk.NewScorer(time.Hour, nil)
	l := NewAdaptiveLimiter(client, scorer, nil, logger.NewNoopLogger(), DefaultConfig())
	t.Cleanup(l.Stop)
	return l, s
}

func TestAdaptiveLimiter_FixedPasswordResetBudget(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < constants.PasswordResetMaxRequests; i++ {
		assert.True(t, l.CheckPasswordResetLimit(ctx, "alice"), "request %d", i+1)
	}
	assert.False(t, l.CheckPasswordResetLimit(ctx, "alice"))

	// A different identity has its own budget.
	assert.True(t, l.CheckPasswordResetLimit(ctx, "bob"))
}

func TestAdaptiveLimiter_RiskAdaptiveLoginBudget(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()

	// A clean caller with a normal browser gets the LOW budget.
	meta := models.RequestMetadata{UserAgent: "Mozilla/5.0"}
	lowBudget := models.RiskLow.Policy().MaxRequests
	for i := 0; i < lowBudget; i++ {
		assert.True(t, l.IsAllowed(ctx, "10.0.0.1", meta), "request %d", i+1)
	}
	assert.False(t, l.IsAllowed(ctx, "10.0.0.1", meta))

	// Repeated failures plus a missing User-Agent shrink the budget to one
	// request per window.
	for i := 0; i < 6; i++ {
		l.RecordFailedAttempt(ctx, "10.0.0.9")
	}
	hostile := models.RequestMetadata{}
	assert.True(t, l.IsAllowed(ctx, "10.0.0.9", hostile))
	assert.False(t, l.IsAllowed(ctx, "10.0.0.9", hostile))
}

func TestAdaptiveLimiter_FailoverIsTransparent(t *testing.T) {
	l, s := newTestLimiter(t)
	ctx := context.Background()

	assert.True(t, l.CheckLoginLimit(ctx, "alice"))
	assert.True(t, l.Stats(ctx).SharedAvailable)

	// Kill the shared store mid-flight. The next check fails over to the
	// local backend inside the same call and still returns a plain decision.
	s.Close()
	assert.True(t, l.CheckLoginLimit(ctx, "alice"))
	assert.False(t, l.Stats(ctx).SharedAvailable)

	// Budgets keep being enforced while degraded. The local backend starts
	// empty, so the full login budget is available again.
	for i := 0; i < constants.LoginMaxRequests-1; i++ {
		assert.True(t, l.CheckLoginLimit(ctx, "alice"))
	}
	assert.False(t, l.CheckLoginLimit(ctx, "alice"))
}

func TestAdaptiveLimiter_RecoversAfterProbe(t *testing.T) {
	l, s := newTestLimiter(t)
	ctx := context.Background()

	s.Close()
	_ = l.CheckLoginLimit(ctx, "alice")
	require.False(t, l.Stats(ctx).SharedAvailable)

	require.NoError(t, s.Restart())
	l.runMaintenance(ctx)
	assert.True(t, l.Stats(ctx).SharedAvailable)
}

func TestAdaptiveLimiter_FailedAttemptsMirror(t *testing.T) {
	l, s := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l.RecordFailedAttempt(ctx, "carol")
	}
	assert.Equal(t, 3, l.GetFailedAttempts(ctx, "carol"))
	assert.True(t, s.Exists("failed_attempts:carol"))

	l.RecordSuccessfulAttempt(ctx, "carol")
	assert.Equal(t, 0, l.GetFailedAttempts(ctx, "carol"))
	assert.False(t, s.Exists("failed_attempts:carol"))
}

func TestAdaptiveLimiter_FailedAttemptsFallBackToLocalProfile(t *testing.T) {
	l, s := newTestLimiter(t)
	ctx := context.Background()

	l.RecordFailedAttempt(ctx, "dave")
	s.Close()
	_ = l.CheckLoginLimit(ctx, "dave") // trips degraded mode

	assert.Equal(t, 1, l.GetFailedAttempts(ctx, "dave"),
		"local profile answers while the shared store is down")
}

func TestAdaptiveLimiter_ResetLimits(t *testing.T) {
	l, s := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < constants.PasswordResetMaxRequests; i++ {
		require.True(t, l.CheckPasswordResetLimit(ctx, "eve"))
	}
	require.False(t, l.CheckPasswordResetLimit(ctx, "eve"))
	for i := 0; i < 4; i++ {
		l.RecordFailedAttempt(ctx, "eve")
	}

	l.ResetLimits(ctx, "eve")

	assert.True(t, l.CheckPasswordResetLimit(ctx, "eve"))
	assert.Equal(t, 0, l.GetFailedAttempts(ctx, "eve"))
	assert.False(t, s.Exists("failed_attempts:eve"))
}

func TestAdaptiveLimiter_Stats(t *testing.T) {
	l, _ := newTestLimiter(t)
	ctx := context.Background()

	_ = l.CheckLoginLimit(ctx, "alice")
	_ = l.CheckAPILimit(ctx, "bob")

	stats := l.Stats(ctx)
	assert.True(t, stats.SharedAvailable)
	assert.Equal(t, 2, stats.SharedKeys)
	assert.Equal(t, 0, stats.LocalEntries)
}
