package ratelimit

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/passlock/passlock/internal/domain/models"
	"github.com/passlock/passlock/internal/domain/service"
	"github.com/passlock/passlock/internal/infrastructure/monitoring"
	"github.com/passlock/passlock/pkg/constants"
	"github.com/passlock/passlock/pkg/logger"
)

// Config holds limiter tuning parameters.
type Config struct {
	// KeyPrefix namespaces limiter keys in the shared store.
	KeyPrefix string
	// MaintenanceInterval drives health re-probes and the local sweep.
	MaintenanceInterval time.Duration
	// LocalRetention bounds how long the local backend keeps timestamps.
	LocalRetention time.Duration
	// BackendTimeout bounds one shared-backend round trip. A timeout counts
	// as backend failure and triggers failover, not a rejection.
	BackendTimeout time.Duration
}

// DefaultConfig returns the baseline limiter configuration.
func DefaultConfig() Config {
	return Config{
		KeyPrefix:           constants.RateLimitKeyPrefix,
		MaintenanceInterval: constants.DefaultMaintenanceInterval,
		LocalRetention:      constants.DefaultLocalRetention,
		BackendTimeout:      constants.DefaultBackendTimeout,
	}
}

// AdaptiveLimiter is the health-tracking admission controller. The login path
// is risk-adaptive: the risk scorer picks a (max-requests, window) policy per
// caller, and the check runs against the shared sorted-set backend while it is
// healthy, or the local in-process backend while degraded. Failover is
// invisible to callers: every check returns a plain boolean, and unexpected
// internal faults resolve to "allowed" rather than blocking legitimate
// traffic.
type AdaptiveLimiter struct {
	shared  *RedisWindowBackend
	local   *MemoryWindowBackend
	scorer  service.RiskAssessor
	client  redis.UniversalClient
	logger  logger.Logger
	metrics *monitoring.Metrics
	cfg     Config

	degraded atomic.Bool
	probes   singleflight.Group

	stopOnce sync.Once
	stopCh   chan struct{}
}

var _ service.RateLimitService = (*AdaptiveLimiter)(nil)

// NewAdaptiveLimiter creates the limiter and probes the shared backend once.
// A dead shared store at construction simply means starting degraded.
func NewAdaptiveLimiter(
	client redis.UniversalClient,
	scorer service.RiskAssessor,
	metrics *monitoring.Metrics,
	log logger.Logger,
	cfg Config,
) *AdaptiveLimiter {
	if cfg.MaintenanceInterval <= 0 {
		cfg.MaintenanceInterval = constants.DefaultMaintenanceInterval
	}
	if cfg.LocalRetention <= 0 {
		cfg.LocalRetention = constants.DefaultLocalRetention
	}
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = constants.DefaultBackendTimeout
	}

	l := &AdaptiveLimiter{
		shared:  NewRedisWindowBackend(client, cfg.KeyPrefix, log),
		local:   NewMemoryWindowBackend(),
		scorer:  scorer,
		client:  client,
		logger:  log.WithComponent("AdaptiveLimiter"),
		metrics: metrics,
		cfg:     cfg,
		stopCh:  make(chan struct{}),
	}

	l.probeHealth(context.Background())
	return l
}

// IsAllowed performs the risk-adaptive admission check for a login attempt.
func (l *AdaptiveLimiter) IsAllowed(ctx context.Context, identity string, meta models.RequestMetadata) bool {
	return l.failOpen(ctx, constants.OperationLogin, func() bool {
		level := l.scorer.Assess(identity, meta)
		policy := level.Policy()

		allowed := l.check(ctx, constants.OperationLogin, identity, policy.MaxRequests, policy.Window)
		if !allowed {
			l.metrics.RecordRateLimitHit(level.String())
			l.logger.Info(ctx, "login attempt rejected by rate limiter",
				logger.String("identity", identity),
				logger.String("risk_level", level.String()),
				logger.Int("max_requests", policy.MaxRequests),
				logger.Duration("window", policy.Window),
			)
		}
		return allowed
	})
}

// CheckLoginLimit enforces the fixed login budget, independent of risk.
func (l *AdaptiveLimiter) CheckLoginLimit(ctx context.Context, identity string) bool {
	return l.failOpen(ctx, constants.OperationLogin, func() bool {
		return l.check(ctx, constants.OperationLogin, identity, constants.LoginMaxRequests, constants.LoginWindow)
	})
}

// CheckAPILimit enforces the fixed general-API budget.
func (l *AdaptiveLimiter) CheckAPILimit(ctx context.Context, identity string) bool {
	return l.failOpen(ctx, constants.OperationAPI, func() bool {
		return l.check(ctx, constants.OperationAPI, identity, constants.APIMaxRequests, constants.APIWindow)
	})
}

// CheckPasswordResetLimit enforces the fixed password-reset budget.
func (l *AdaptiveLimiter) CheckPasswordResetLimit(ctx context.Context, identity string) bool {
	return l.failOpen(ctx, constants.OperationPasswordReset, func() bool {
		return l.check(ctx, constants.OperationPasswordReset, identity, constants.PasswordResetMaxRequests, constants.PasswordResetWindow)
	})
}

// CheckCreatePasswordLimit enforces the fixed vault-entry-creation budget.
func (l *AdaptiveLimiter) CheckCreatePasswordLimit(ctx context.Context, identity string) bool {
	return l.failOpen(ctx, constants.OperationCreatePassword, func() bool {
		return l.check(ctx, constants.OperationCreatePassword, identity, constants.CreatePasswordMaxRequests, constants.APIWindow)
	})
}

// CheckDeletePasswordLimit enforces the fixed vault-entry-deletion budget.
func (l *AdaptiveLimiter) CheckDeletePasswordLimit(ctx context.Context, identity string) bool {
	return l.failOpen(ctx, constants.OperationDeletePassword, func() bool {
		return l.check(ctx, constants.OperationDeletePassword, identity, constants.DeletePasswordMaxRequests, constants.APIWindow)
	})
}

// RecordFailedAttempt feeds a failure into the risk book-keeping and mirrors
// the counter to the shared store while it is healthy. The mirror is
// best-effort; the in-process profile is the authoritative scoring input.
func (l *AdaptiveLimiter) RecordFailedAttempt(ctx context.Context, identity string) {
	l.scorer.RecordFailedAttempt(identity)

	if l.degraded.Load() {
		return
	}
	key := constants.FailedAttemptsKeyPrefix + identity
	if err := l.client.Incr(ctx, key).Err(); err != nil {
		l.logger.Warn(ctx, "failed to mirror failure counter",
			logger.String("identity", identity), logger.Any("error", err.Error()))
		return
	}
	_ = l.client.Expire(ctx, key, constants.DefaultFailedAttemptsTTL).Err()
}

// RecordSuccessfulAttempt clears the failure book-keeping for the identity.
func (l *AdaptiveLimiter) RecordSuccessfulAttempt(ctx context.Context, identity string) {
	l.scorer.RecordSuccessfulAttempt(identity)

	if l.degraded.Load() {
		return
	}
	if err := l.client.Del(ctx, constants.FailedAttemptsKeyPrefix+identity).Err(); err != nil {
		l.logger.Warn(ctx, "failed to clear mirrored failure counter",
			logger.String("identity", identity), logger.Any("error", err.Error()))
	}
}

// GetFailedAttempts returns the recorded failure count for an identity,
// preferring the shared mirror while healthy.
func (l *AdaptiveLimiter) GetFailedAttempts(ctx context.Context, identity string) int {
	if !l.degraded.Load() {
		val, err := l.client.Get(ctx, constants.FailedAttemptsKeyPrefix+identity).Result()
		if err == nil {
			if count, parseErr := strconv.Atoi(val); parseErr == nil {
				return count
			}
		} else if err != redis.Nil {
			l.logger.Warn(ctx, "failed to read mirrored failure counter",
				logger.String("identity", identity), logger.Any("error", err.Error()))
		}
	}
	return l.scorer.Profile(identity).FailedAttempts
}

// ResetLimits clears every counter for the identity on both backends and
// clears its risk profile. The shared-store side is best-effort.
func (l *AdaptiveLimiter) ResetLimits(ctx context.Context, identity string) {
	keys := make([]string, 0, len(constants.Operations))
	for _, op := range constants.Operations {
		keys = append(keys, op+":"+identity)
	}

	if !l.degraded.Load() {
		if err := l.shared.Remove(ctx, keys...); err != nil {
			l.logger.Warn(ctx, "failed to reset shared counters",
				logger.String("identity", identity), logger.Any("error", err.Error()))
		}
		if err := l.client.Del(ctx, constants.FailedAttemptsKeyPrefix+identity).Err(); err != nil {
			l.logger.Warn(ctx, "failed to reset mirrored failure counter",
				logger.String("identity", identity), logger.Any("error", err.Error()))
		}
	}

	_ = l.local.Remove(ctx, keys...)
	l.scorer.RecordSuccessfulAttempt(identity)

	l.logger.Info(ctx, "rate limits reset", logger.String("identity", identity))
}

// Stats reports backend health and counter sizes.
func (l *AdaptiveLimiter) Stats(ctx context.Context) service.LimiterStats {
	stats := service.LimiterStats{
		SharedAvailable: !l.degraded.Load(),
		LocalEntries:    l.local.Len(),
	}
	if stats.SharedAvailable {
		if count, err := l.shared.KeyCount(ctx); err == nil {
			stats.SharedKeys = count
		}
	}
	return stats
}

// Start launches the maintenance loop: a health re-probe plus a local sweep
// every MaintenanceInterval. It runs until Stop.
func (l *AdaptiveLimiter) Start() {
	go func() {
		ticker := time.NewTicker(l.cfg.MaintenanceInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.runMaintenance(context.Background())
			case <-l.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the maintenance loop.
func (l *AdaptiveLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// runMaintenance is invoked by the maintenance ticker. Exported to tests via
// direct invocation with a controlled clock on the local backend.
func (l *AdaptiveLimiter) runMaintenance(ctx context.Context) {
	l.probeHealth(ctx)

	removed := l.local.Sweep(l.cfg.LocalRetention)
	l.metrics.AddSweepRemovals(removed)
	if removed > 0 {
		l.logger.Debug(ctx, "swept expired local counters", logger.Int("removed_keys", removed))
	}
}

// check runs one sliding-window admission for operation+identity against the
// active backend. Any shared-backend error flips the limiter into degraded
// mode and the same check is retried on the local backend within this call.
func (l *AdaptiveLimiter) check(ctx context.Context, operation, identity string, max int, window time.Duration) bool {
	key := operation + ":" + identity

	if !l.degraded.Load() {
		probeCtx, cancel := context.WithTimeout(ctx, l.cfg.BackendTimeout)
		allowed, err := l.shared.Admit(probeCtx, key, max, window)
		cancel()
		if err == nil {
			l.metrics.RecordAdmission(operation, "shared", allowed)
			return allowed
		}
		l.markDegraded(ctx, err)
	}

	allowed, _ := l.local.Admit(ctx, key, max, window)
	l.metrics.RecordAdmission(operation, "local", allowed)
	return allowed
}

// probeHealth pings the shared store. Concurrent probes collapse into one
// in-flight ping.
func (l *AdaptiveLimiter) probeHealth(ctx context.Context) {
	_, _, _ = l.probes.Do("probe", func() (interface{}, error) {
		probeCtx, cancel := context.WithTimeout(ctx, l.cfg.BackendTimeout)
		defer cancel()

		if err := l.shared.Ping(probeCtx); err != nil {
			l.markDegraded(ctx, err)
			return nil, nil
		}

		if l.degraded.CompareAndSwap(true, false) {
			l.metrics.SetDegraded(false)
			l.logger.Info(ctx, "shared counter backend recovered, leaving degraded mode")
		}
		return nil, nil
	})
}

// markDegraded routes all subsequent checks to the local backend until the
// next successful probe.
func (l *AdaptiveLimiter) markDegraded(ctx context.Context, cause error) {
	if l.degraded.CompareAndSwap(false, true) {
		l.metrics.RecordFailover()
		l.metrics.SetDegraded(true)
		l.logger.Warn(ctx, "shared counter backend unavailable, entering degraded mode",
			logger.Any("error", cause.Error()))
	}
}

// failOpen shields admission checks from internal faults: a panic inside the
// check resolves to "allowed". Availability over strict enforcement during
// internal faults is a deliberate trade-off.
func (l *AdaptiveLimiter) failOpen(ctx context.Context, operation string, fn func() bool) (allowed bool) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error(ctx, "rate limiter internal fault, failing open", nil,
				logger.String("operation", operation), logger.Any("panic", r))
			allowed = true
		}
	}()
	return fn()
}
