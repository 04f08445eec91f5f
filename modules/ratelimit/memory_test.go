package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"gate/modules/clock"
)

func TestMemoryCounter_FirstHitCreatesWindow(t *testing.T) {
	m := NewMemoryCounter()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	count, expiresAt, err := m.IncrementAndGet(context.Background(), "k", now, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if want := now.Add(time.Minute); !expiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", expiresAt, want)
	}
}

func TestMemoryCounter_ExpiryIsSetOncePerWindow(t *testing.T) {
	m := NewMemoryCounter()
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, firstExpiry, _ := m.IncrementAndGet(ctx, "k", start, time.Minute)

	// hits later in the window must not push the boundary
	for i, offset := range []time.Duration{10 * time.Second, 30 * time.Second, 59 * time.Second} {
		count, expiresAt, _ := m.IncrementAndGet(ctx, "k", start.Add(offset), time.Minute)
		if want := int64(i + 2); count != want {
			t.Fatalf("hit %d: count = %d, want %d", i+2, count, want)
		}
		if !expiresAt.Equal(firstExpiry) {
			t.Fatalf("hit %d: expiresAt moved from %v to %v", i+2, firstExpiry, expiresAt)
		}
	}
}

func TestMemoryCounter_HitAtExpiryStartsNewWindow(t *testing.T) {
	m := NewMemoryCounter()
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		m.IncrementAndGet(ctx, "k", start, time.Minute)
	}

	// expiresAt <= now means the entry is dead, however long ago it ended
	at := start.Add(time.Minute)
	count, expiresAt, _ := m.IncrementAndGet(ctx, "k", at, time.Minute)
	if count != 1 {
		t.Fatalf("count = %d, want 1 in the new window", count)
	}
	if want := at.Add(time.Minute); !expiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", expiresAt, want)
	}

	// hours after expiry behaves identically: no carry-over, no partial credit
	at = start.Add(5 * time.Hour)
	count, _, _ = m.IncrementAndGet(ctx, "k", at, time.Minute)
	if count != 1 {
		t.Fatalf("count = %d, want 1 long after expiry", count)
	}
}

func TestMemoryCounter_EvictExpired(t *testing.T) {
	m := NewMemoryCounter()
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	m.IncrementAndGet(ctx, "dead", start, time.Minute)
	m.IncrementAndGet(ctx, "live", start, time.Hour)
	if m.Len() != 2 {
		t.Fatalf("len = %d, want 2", m.Len())
	}

	m.EvictExpired(start.Add(time.Minute))
	if m.Len() != 1 {
		t.Fatalf("len = %d after eviction, want 1", m.Len())
	}

	// the surviving key kept its count
	count, _, _ := m.IncrementAndGet(ctx, "live", start.Add(time.Minute), time.Hour)
	if count != 2 {
		t.Fatalf("live count = %d, want 2", count)
	}
}

func TestMemoryCounter_JanitorPurgesIdleKeys(t *testing.T) {
	m := NewMemoryCounter(WithSweepInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	past := time.Now().Add(-time.Hour)
	m.IncrementAndGet(ctx, "idle", past, time.Minute)

	m.StartJanitor(ctx, clock.RealClock{})

	deadline := time.After(2 * time.Second)
	for m.Len() != 0 {
		select {
		case <-deadline:
			t.Fatalf("janitor did not purge the idle key, len = %d", m.Len())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestMemoryCounter_ConcurrentIncrementsLoseNoUpdates(t *testing.T) {
	const hits = 200

	m := NewMemoryCounter()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < hits; i++ {
		wg.Go(func() {
			m.IncrementAndGet(ctx, "k", now, time.Minute)
		})
	}
	wg.Wait()

	count, _, _ := m.IncrementAndGet(ctx, "k", now, time.Minute)
	if count != hits+1 {
		t.Fatalf("count = %d, want %d", count, hits+1)
	}
}
