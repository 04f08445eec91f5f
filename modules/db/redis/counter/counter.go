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

package counter

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"time"

	"gate/modules/ratelimit"

	"github.com/redis/rueidis"
)

var (
	_ ratelimit.CounterStore = (*RedisCounter)(nil)

	//go:embed incr_window.lua
	incrWindowLua string

	luaIncrWindow = rueidis.NewLuaScript(incrWindowLua)
)

// RedisCounter is the Redis-backed CounterStore. Counts are shared by every
// process pointing at the same Redis and prefix, which goes beyond the
// single-process model; it stays behind the same interface so callers choose.
//
// The window expiry is reconstructed from PTTL, so the expiresAt this store
// reports can trail the creating hit's by network latency. The invariant that
// matters — the TTL is set once, on the first hit — holds on the server.
type RedisCounter struct {
	client rueidis.Client
	prefix string
}

// NewRedisCounterStore wraps a rueidis.Client as a CounterStore.
//
// prefix is optional; if non-empty, keys become prefix + ":" + key. Give each
// limiter its own prefix so policies never share counters.
func NewRedisCounterStore(client rueidis.Client, prefix string) *RedisCounter {
	if prefix != "" && prefix[len(prefix)-1] != ':' {
		prefix += ":"
	}
	return &RedisCounter{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisCounter) buildKey(key string) string {
	return r.prefix + key
}

// IncrementAndGet implements ratelimit.CounterStore.
func (r *RedisCounter) IncrementAndGet(ctx context.Context, key string, now time.Time, window time.Duration) (int64, time.Time, error) {
	k := r.buildKey(key)
	ms := strconv.FormatInt(window.Milliseconds(), 10)

	resp := luaIncrWindow.Exec(ctx, r.client, []string{k}, []string{ms})
	arr, err := resp.ToArray()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis counter IncrementAndGet: %w", err)
	}
	if len(arr) != 2 {
		return 0, time.Time{}, fmt.Errorf("redis counter IncrementAndGet: unexpected reply of %d elements", len(arr))
	}

	count, err := arr[0].AsInt64()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis counter IncrementAndGet count: %w", err)
	}
	pttl, err := arr[1].AsInt64()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis counter IncrementAndGet pttl: %w", err)
	}
	// PTTL -1 means the key lost its expiry (e.g. manual tampering); treat
	// the current hit as the start of a fresh window.
	if pttl < 0 {
		pttl = window.Milliseconds()
	}

	return count, now.Add(time.Duration(pttl) * time.Millisecond), nil
}
