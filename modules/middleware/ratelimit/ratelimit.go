// Package ratelimit adapts the core limiter to net/http: it derives the
// client key from the request, asks the limiter for a decision and renders
// quota headers plus the 429 rejection contract.
package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	rl "gate/modules/ratelimit"
	"gate/modules/telemetry"
)

type (
	// Options configure one middleware instance. Limiter is required;
	// everything else has a usable zero value.
	Options struct {
		Limiter rl.RateLimiter

		// KeyFn extracts the client identifier; DefaultKeyFunc when nil.
		KeyFn KeyFunc

		// Message is the rejection body text. Falls back to the limiter's
		// configured message when it exposes one, then to the package default.
		Message string

		// Policy labels log lines and metrics, e.g. "auth".
		Policy string

		// Metrics records decision counters when non-nil.
		Metrics *telemetry.LimiterMetrics
	}

	rejectionBody struct {
		IsSuccess bool   `json:"isSuccess"`
		Error     string `json:"error"`
	}
)

type messager interface {
	Message() string
}

// New builds the middleware for one limiter policy. A nil limiter yields a
// pass-through middleware, so optional policies need no branching at the
// call site.
func New(opts Options) func(http.Handler) http.Handler {
	if opts.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc
	}
	if opts.Message == "" {
		if m, ok := opts.Limiter.(messager); ok {
			opts.Message = m.Message()
		}
	}
	if opts.Message == "" {
		opts.Message = rl.DefaultMessage
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			result := opts.Limiter.Allow(r.Context(), key)

			opts.Metrics.RecordDecision(r.Context(), opts.Policy, outcome(result))
			if result.Tracked {
				writeQuotaHeaders(w, result)
				opts.Metrics.RecordUsage(r.Context(), opts.Policy, outcome(result),
					result.Limit-result.Remaining, result.Limit)
			}

			if !result.Allowed {
				slog.Debug("rate limited",
					slog.String("middleware", "rate_limiter"),
					slog.String("policy", opts.Policy),
					slog.String("url", r.URL.Path),
					slog.Int64("retry_after_seconds", result.RetryAfterSeconds()),
				)
				w.Header().Set("Retry-After", strconv.FormatInt(result.RetryAfterSeconds(), 10))
				writeRejection(w, opts.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func outcome(result rl.Result) string {
	switch {
	case !result.Tracked:
		return "fail_open"
	case result.Allowed:
		return "admitted"
	default:
		return "rejected"
	}
}

func writeQuotaHeaders(w http.ResponseWriter, result rl.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
	h.Set("X-RateLimit-Reset", result.ResetAt.UTC().Format(time.RFC3339))
}

func writeRejection(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(rejectionBody{IsSuccess: false, Error: message})
}
