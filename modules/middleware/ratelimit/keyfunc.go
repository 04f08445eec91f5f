package ratelimit

import (
	"net"
	"net/http"
	"strings"

	"gate/modules/hmac"
	rl "gate/modules/ratelimit"
)

// KeyFunc extracts from a HTTP request an identifier such as remote IP,
// API key, user id, etc.
type KeyFunc func(*http.Request) rl.Key

// DefaultKeyFunc is proxy-aware IP extraction: the first X-Forwarded-For
// entry is the original client, so it wins over the transport peer address.
// When nothing usable is present it returns rl.UnknownKey, which limiters
// admit without counting.
func DefaultKeyFunc(r *http.Request) rl.Key {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return rl.Key(ip)
		}
	}

	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return rl.Key(host)
	}
	if remote != "" {
		return rl.Key(remote)
	}

	return rl.UnknownKey
}

// HashedKeyFunc wraps a KeyFunc so raw client identifiers are never held as
// counter keys; the sentinel and empty keys pass through untouched so the
// fail-open path still triggers.
func HashedKeyFunc(hasher *hmac.KeyHasher, inner KeyFunc) KeyFunc {
	if inner == nil {
		inner = DefaultKeyFunc
	}
	return func(r *http.Request) rl.Key {
		key := inner(r)
		if key == "" || key == rl.UnknownKey {
			return key
		}
		return rl.Key(hasher.Hash(string(key)))
	}
}

// HeaderKeyFunc keys clients by an arbitrary header (e.g. an API key),
// falling back to the provided KeyFunc when the header is absent.
func HeaderKeyFunc(header string, fallback KeyFunc) KeyFunc {
	if fallback == nil {
		fallback = DefaultKeyFunc
	}
	return func(r *http.Request) rl.Key {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			return rl.Key(v)
		}
		return fallback(r)
	}
}
