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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gate/modules/clock"
)

// keyNamespace prefixes every counter key so limiter state cannot collide
// with other users of a shared store.
const keyNamespace = "ratelimit:"

var _ RateLimiter = (*FixedWindowLimiter)(nil)

// FixedWindowLimiter counts hits per key inside a window of fixed length.
// The window boundary is set by the first hit and never refreshed; when it
// elapses the next hit starts a fresh window with no carry-over.
//
// All state lives in the CounterStore; the limiter itself is stateless per
// call and safe for concurrent use.
type FixedWindowLimiter struct {
	clock   clock.Clock
	counter CounterStore

	window  time.Duration
	limit   int64
	message string
}

// FixedWindowConfig is immutable once the limiter is constructed.
type FixedWindowConfig struct {
	Window  time.Duration
	Limit   int64
	Message string
}

// DefaultMessage is the rejection message used when none is configured.
const DefaultMessage = "Too many requests, please try again later."

// NewFixedWindow validates the configuration eagerly; a misconfigured
// limiter is a construction error, never a request-time one.
func NewFixedWindow(clk clock.Clock, counter CounterStore, cfg FixedWindowConfig) (*FixedWindowLimiter, error) {
	if clk == nil {
		return nil, errors.New("fixed window: clock is required")
	}
	if counter == nil {
		return nil, errors.New("fixed window: counter store is required")
	}
	if cfg.Limit <= 0 {
		return nil, fmt.Errorf("fixed window: limit must be positive, got %d", cfg.Limit)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("fixed window: window must be positive, got %s", cfg.Window)
	}
	if cfg.Message == "" {
		cfg.Message = DefaultMessage
	}

	return &FixedWindowLimiter{
		clock:   clk,
		counter: counter,
		window:  cfg.Window,
		limit:   cfg.Limit,
		message: cfg.Message,
	}, nil
}

// Allow implements RateLimiter.
//
// A count equal to the limit is still admitted: the cap is the last allowed
// request in the window. Unidentifiable keys and counter faults fail open.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key Key) Result {
	if key == "" || key == UnknownKey {
		slog.WarnContext(ctx, "rate limit skipped: unidentifiable client",
			slog.String("key", string(key)),
		)
		return Result{Allowed: true}
	}

	now := l.clock.Now()
	count, expiresAt, err := l.counter.IncrementAndGet(ctx, keyNamespace+string(key), now, l.window)
	if err != nil {
		slog.ErrorContext(ctx, "rate limit counter failure, admitting request",
			slog.Any("error", err),
			slog.String("key", string(key)),
		)
		return Result{Allowed: true}
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:   count <= l.limit,
		Tracked:   true,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   expiresAt,
		Window:    l.window,
	}
	if !res.Allowed {
		res.RetryAfter = expiresAt.Sub(now)
	}
	return res
}

// Message is the rejection text configured for this limiter.
func (l *FixedWindowLimiter) Message() string { return l.message }

func (l *FixedWindowLimiter) Limit() int64 { return l.limit }

func (l *FixedWindowLimiter) Window() time.Duration { return l.window }
