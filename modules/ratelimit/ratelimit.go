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
	"time"
)

type (
	// Key identifies one client within a single limiter's namespace.
	// It is typically derived from a remote IP, but the package does not
	// care about the final string format.
	Key string

	// RateLimiter enforces fixed time-window rate limits, e.g. "100 requests
	// per 60 seconds". Implementations never surface internal faults to the
	// caller: a limiter defect must not block the traffic it protects, so
	// errors resolve to an admitted, untracked Result.
	RateLimiter interface {
		Allow(ctx context.Context, key Key) Result
	}

	// Result is the outcome of a rate limit decision.
	Result struct {
		// Allowed reports whether the request may proceed.
		Allowed bool

		// Tracked reports whether a counter was actually consulted. It is
		// false when the client could not be identified or the counter store
		// failed; in both cases the request is admitted without quota
		// metadata and the fields below are zero.
		Tracked bool

		Limit     int64     // max allowed in window
		Remaining int64     // how many requests left in current window, never negative
		ResetAt   time.Time // when the current window ends
		Window    time.Duration

		// RetryAfter is how long the client should wait before retrying.
		// Only set when the request was rejected.
		RetryAfter time.Duration
	}
)

// UnknownKey is the sentinel produced by key derivation when a request
// carries no usable client identity. Limiters admit it without counting,
// otherwise every unidentifiable client would share one bucket.
const UnknownKey Key = "unknown"

// RetryAfterSeconds rounds RetryAfter up to whole seconds, the unit the
// Retry-After response header uses.
func (r Result) RetryAfterSeconds() int64 {
	if r.RetryAfter <= 0 {
		return 0
	}
	return int64((r.RetryAfter + time.Second - 1) / time.Second)
}
