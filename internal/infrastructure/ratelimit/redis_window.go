package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/passlock/passlock/pkg/constants"
	"github.com/passlock/passlock/pkg/logger"
)

// RedisWindowBackend implements the sliding window on a Redis sorted set per
// key: member scores are request timestamps in epoch milliseconds, eviction is
// a range-remove below the window lower bound, and the count is a range-count
// inside the window. Atomicity of the per-key range operations comes from
// Redis itself; no external locking is involved.
type RedisWindowBackend struct {
	client redis.UniversalClient
	prefix string
	logger logger.Logger
}

// NewRedisWindowBackend creates the shared counter backend.
func NewRedisWindowBackend(client redis.UniversalClient, prefix string, log logger.Logger) *RedisWindowBackend {
	if prefix == "" {
		prefix = constants.RateLimitKeyPrefix
	}
	return &RedisWindowBackend{
		client: client,
		prefix: prefix,
		logger: log.WithComponent("RedisWindowBackend"),
	}
}

// Admit implements CounterBackend.
func (b *RedisWindowBackend) Admit(ctx context.Context, key string, max int, window time.Duration) (bool, error) {
	redisKey := b.prefix + key
	now := time.Now().UnixMilli()
	windowStart := now - window.Milliseconds()

	if err := b.client.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10)).Err(); err != nil {
		return false, err
	}

	count, err := b.client.ZCount(ctx, redisKey,
		strconv.FormatInt(windowStart, 10), strconv.FormatInt(now, 10)).Result()
	if err != nil {
		return false, err
	}

	if count >= int64(max) {
		b.incrementBlocked(ctx, redisKey)
		return false, nil
	}

	// Members carry a UUID so two requests in the same millisecond never
	// collapse into one sorted-set entry.
	member := fmt.Sprintf("%d:%s", now, uuid.NewString())
	if err := b.client.ZAdd(ctx, redisKey, redis.Z{Score: float64(now), Member: member}).Err(); err != nil {
		return false, err
	}

	// Refresh expiry so an abandoned key disappears one window after its
	// last request.
	if err := b.client.Expire(ctx, redisKey, window).Err(); err != nil {
		return false, err
	}

	return true, nil
}

// Remove implements CounterBackend.
func (b *RedisWindowBackend) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = b.prefix + k
	}
	return b.client.Del(ctx, redisKeys...).Err()
}

// Ping probes the shared store.
func (b *RedisWindowBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// KeyCount reports the number of limiter keys in the shared store. Used by
// the admin stats surface only; SCAN-based so it never blocks the store.
func (b *RedisWindowBackend) KeyCount(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := b.client.Scan(ctx, cursor, b.prefix+"*", 100).Result()
		if err != nil {
			return 0, err
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

// incrementBlocked bumps the per-key blocked counter. Best-effort: a failure
// here must not turn a clean rejection into a backend error.
func (b *RedisWindowBackend) incrementBlocked(ctx context.Context, redisKey string) {
	blockedKey := redisKey + constants.BlockedKeySuffix
	if err := b.client.Incr(ctx, blockedKey).Err(); err != nil {
		b.logger.Debug(ctx, "failed to increment blocked counter", logger.String("key", blockedKey))
		return
	}
	_ = b.client.Expire(ctx, blockedKey, constants.DefaultBlockedCounterTTL).Err()
}
