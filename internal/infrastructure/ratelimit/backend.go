// Package ratelimit implements the adaptive sliding-window rate limiter:
// a Redis-backed shared counter store, an in-process fallback store, and a
// health-tracking limiter that fails over between them.
package ratelimit

import (
	"context"
	"time"
)

// CounterBackend is the sliding-window admission capability the limiter
// dispatches over. An admission check is a single atomic sequence per key:
// evict entries older than now-window, compare the remaining count against
// max, and record the request only when it is admitted.
type CounterBackend interface {
	// Admit runs the evict-count-record sequence for the key and reports
	// whether the request is within budget. A rejected request records
	// nothing.
	Admit(ctx context.Context, key string, max int, window time.Duration) (bool, error)

	// Remove deletes the given counter keys outright.
	Remove(ctx context.Context, keys ...string) error
}
