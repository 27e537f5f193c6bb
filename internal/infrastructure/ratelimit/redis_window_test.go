package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passlock/passlock/internal/infrastructure/ratelimit"
	"github.com/passlock/passlock/pkg/logger"
)

func newRedisBackend(t *testing.T) (*ratelimit.RedisWindowBackend, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	return ratelimit.NewRedisWindowBackend(client, "rate_limit:", logger.NewNoopLogger()), s
}

func TestRedisWindowBackend_AdmitBudget(t *testing.T) {
	b, s := newRedisBackend(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := b.Admit(ctx, "login:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be admitted", i+1)
	}

	allowed, err := b.Admit(ctx, "login:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Rejections land on the blocked counter, not the sorted set.
	blocked, err := s.Get("rate_limit:login:1.2.3.4:blocked")
	require.NoError(t, err)
	assert.Equal(t, "1", blocked)
}

func TestRedisWindowBackend_WindowSlides(t *testing.T) {
	b, _ := newRedisBackend(t)
	ctx := context.Background()

	window := 50 * time.Millisecond
	for i := 0; i < 2; i++ {
		allowed, err := b.Admit(ctx, "api:alice", 2, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := b.Admit(ctx, "api:alice", 2, window)
	require.NoError(t, err)
	assert.False(t, allowed)

	time.Sleep(window + 30*time.Millisecond)

	allowed, err = b.Admit(ctx, "api:alice", 2, window)
	require.NoError(t, err)
	assert.True(t, allowed, "budget frees up once the window has slid past")
}

func TestRedisWindowBackend_Remove(t *testing.T) {
	b, s := newRedisBackend(t)
	ctx := context.Background()

	_, err := b.Admit(ctx, "login:bob", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, s.Exists("rate_limit:login:bob"))

	require.NoError(t, b.Remove(ctx, "login:bob"))
	assert.False(t, s.Exists("rate_limit:login:bob"))
}

func TestRedisWindowBackend_KeyCount(t *testing.T) {
	b, _ := newRedisBackend(t)
	ctx := context.Background()

	_, _ = b.Admit(ctx, "login:a", 5, time.Minute)
	_, _ = b.Admit(ctx, "login:b", 5, time.Minute)

	count, err := b.KeyCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
