// Copyright 2025 The gate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import (
	"context"
	"sync"
	"time"

	"gate/modules/clock"
)

var _ CounterStore = (*MemoryCounter)(nil)

// MemoryCounter is the in-process CounterStore: a mutex-guarded map of
// key to (count, expiry). Expired entries are replaced lazily on access;
// keys that stop receiving hits are purged by the janitor so memory stays
// bounded to live and recent keys.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry

	sweepEvery time.Duration
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

type MemoryOption func(*MemoryCounter)

// WithSweepInterval overrides how often the janitor scans for expired keys.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(m *MemoryCounter) { m.sweepEvery = d }
}

func NewMemoryCounter(opts ...MemoryOption) *MemoryCounter {
	m := &MemoryCounter{
		entries:    make(map[string]*memoryEntry),
		sweepEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IncrementAndGet implements CounterStore. It never fails.
func (m *MemoryCounter) IncrementAndGet(_ context.Context, key string, now time.Time, window time.Duration) (int64, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ent, ok := m.entries[key]; ok && now.Before(ent.expiresAt) {
		ent.count++
		return ent.count, ent.expiresAt, nil
	}

	ent := &memoryEntry{count: 1, expiresAt: now.Add(window)}
	m.entries[key] = ent
	return ent.count, ent.expiresAt, nil
}

// EvictExpired removes every entry whose window has ended at or before now.
func (m *MemoryCounter) EvictExpired(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, ent := range m.entries {
		if !now.Before(ent.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// Len reports the number of live plus not-yet-swept entries.
func (m *MemoryCounter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// StartJanitor starts a goroutine that periodically evicts expired keys.
// Stop it by cancelling the context.
func (m *MemoryCounter) StartJanitor(ctx context.Context, clk clock.Clock) {
	if m.sweepEvery <= 0 {
		return
	}

	t := time.NewTicker(m.sweepEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.EvictExpired(clk.Now())
			}
		}
	}()
}
