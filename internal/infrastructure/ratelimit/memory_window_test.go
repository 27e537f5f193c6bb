package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWindowBackend_AdmitBudget(t *testing.T) {
	b := NewMemoryWindowBackend()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := b.Admit(ctx, "login:10.0.0.1", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be admitted", i+1)
	}

	allowed, err := b.Admit(ctx, "login:10.0.0.1", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "request over budget should be rejected")

	// Other keys do not share the budget.
	allowed, err = b.Admit(ctx, "login:10.0.0.2", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryWindowBackend_WindowSlides(t *testing.T) {
	now := time.Now()
	b := NewMemoryWindowBackend()
	b.clock = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _ := b.Admit(ctx, "pwd_reset:alice", 3, time.Minute)
		assert.True(t, allowed)
	}
	allowed, _ := b.Admit(ctx, "pwd_reset:alice", 3, time.Minute)
	assert.False(t, allowed)

	// Just past the window the recorded timestamps fall out and the budget
	// frees up again.
	now = now.Add(time.Minute + time.Millisecond)
	allowed, _ = b.Admit(ctx, "pwd_reset:alice", 3, time.Minute)
	assert.True(t, allowed)
}

func TestMemoryWindowBackend_Remove(t *testing.T) {
	b := NewMemoryWindowBackend()
	ctx := context.Background()

	_, _ = b.Admit(ctx, "api:carol", 1, time.Minute)
	allowed, _ := b.Admit(ctx, "api:carol", 1, time.Minute)
	assert.False(t, allowed)

	require.NoError(t, b.Remove(ctx, "api:carol"))

	allowed, _ = b.Admit(ctx, "api:carol", 1, time.Minute)
	assert.True(t, allowed, "budget resets after removal")
}

func TestMemoryWindowBackend_Sweep(t *testing.T) {
	now := time.Now()
	b := NewMemoryWindowBackend()
	b.clock = func() time.Time { return now }
	ctx := context.Background()

	_, _ = b.Admit(ctx, "login:stale", 10, time.Minute)
	now = now.Add(30 * time.Minute)
	_, _ = b.Admit(ctx, "login:fresh", 10, time.Minute)

	removed := b.Sweep(time.Hour)
	assert.Equal(t, 0, removed, "nothing is past the retention bound yet")
	assert.Equal(t, 2, b.Len())

	now = now.Add(time.Hour)
	removed = b.Sweep(time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, b.Len())
}

func TestMemoryWindowBackend_ConcurrentAdmissions(t *testing.T) {
	b := NewMemoryWindowBackend()
	ctx := context.Background()

	const workers = 50
	const budget = 10

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, err := b.Admit(ctx, "login:shared", budget, time.Minute)
			assert.NoError(t, err)
			if allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(budget), admitted.Load(),
		"exactly the budget gets through under contention")
}
