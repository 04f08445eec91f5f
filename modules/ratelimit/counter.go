package ratelimit

import (
	"context"
	"time"
)

// CounterStore is the storage abstraction the fixed-window limiter uses.
type CounterStore interface {
	// IncrementAndGet records one hit against key and returns the count for
	// the current window together with the instant the window ends.
	//
	// Fixed-window semantics: the first live hit creates the entry with
	// count 1 and expiry now+window; later hits inside the window increment
	// the count and leave the expiry untouched; a hit at or after the expiry
	// starts a brand-new window. The read-modify-write must be atomic per
	// key with respect to concurrent callers.
	IncrementAndGet(ctx context.Context, key string, now time.Time, window time.Duration) (count int64, expiresAt time.Time, err error)
}
