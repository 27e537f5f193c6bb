package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryWindowBackend is the in-process fallback counter store: a map of
// per-key timestamp slices. Each key owns a mutex, so the evict-count-record
// sequence is one critical section per key and concurrent checks for the same
// key serialize at the admission boundary. Cross-key checks do not contend.
type MemoryWindowBackend struct {
	mu      sync.RWMutex
	entries map[string]*windowEntry

	// clock is swappable for tests.
	clock func() time.Time
}

type windowEntry struct {
	mu    sync.Mutex
	times []time.Time
}

// NewMemoryWindowBackend creates the local counter backend.
func NewMemoryWindowBackend() *MemoryWindowBackend {
	return &MemoryWindowBackend{
		entries: make(map[string]*windowEntry),
		clock:   time.Now,
	}
}

// Admit implements CounterBackend. It never returns an error.
func (b *MemoryWindowBackend) Admit(_ context.Context, key string, max int, window time.Duration) (bool, error) {
	entry := b.getOrCreate(key)
	now := b.clock()
	cutoff := now.Add(-window)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.evictBefore(cutoff)

	if len(entry.times) >= max {
		return false, nil
	}

	entry.times = append(entry.times, now)
	return true, nil
}

// Remove implements CounterBackend.
func (b *MemoryWindowBackend) Remove(_ context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		delete(b.entries, k)
	}
	return nil
}

// Len reports the number of tracked keys.
func (b *MemoryWindowBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Sweep drops timestamps older than the retention bound and deletes keys left
// empty, bounding memory growth. It locks one entry at a time; admission
// checks on other keys are never blocked for longer than one key's eviction.
// Returns the number of keys deleted.
func (b *MemoryWindowBackend) Sweep(retention time.Duration) int {
	cutoff := b.clock().Add(-retention)

	b.mu.RLock()
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	b.mu.RUnlock()

	removed := 0
	for _, k := range keys {
		b.mu.RLock()
		entry, ok := b.entries[k]
		b.mu.RUnlock()
		if !ok {
			continue
		}

		entry.mu.Lock()
		entry.evictBefore(cutoff)
		empty := len(entry.times) == 0
		entry.mu.Unlock()

		if !empty {
			continue
		}

		// Re-check emptiness under the write lock: a request may have
		// landed between the eviction and the delete.
		b.mu.Lock()
		if current, ok := b.entries[k]; ok && current == entry {
			entry.mu.Lock()
			if len(entry.times) == 0 {
				delete(b.entries, k)
				removed++
			}
			entry.mu.Unlock()
		}
		b.mu.Unlock()
	}

	return removed
}

// getOrCreate returns the entry for the key, creating it lazily. Follows the
// read-lock-first, double-checked pattern so the hot path stays on RLock.
func (b *MemoryWindowBackend) getOrCreate(key string) *windowEntry {
	b.mu.RLock()
	entry, ok := b.entries[key]
	b.mu.RUnlock()
	if ok {
		return entry
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if entry, ok = b.entries[key]; ok {
		return entry
	}
	entry = &windowEntry{}
	b.entries[key] = entry
	return entry
}

// evictBefore drops timestamps older than the cutoff. Caller holds entry.mu.
func (e *windowEntry) evictBefore(cutoff time.Time) {
	kept := e.times[:0]
	for _, t := range e.times {
		if !t.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	e.times = kept
}
