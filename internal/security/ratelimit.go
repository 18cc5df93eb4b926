// Package security implements the request pipeline's rate limiting and
// Bearer+HMAC authentication gate.
package security

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// bucket is a per-client-IP sliding window:
// timestamps of admitted requests within the current window.
type bucket struct {
	timestamps []time.Time
}

// RateLimiter enforces a per-IP sliding-window request cap. One RateLimiter
// belongs to exactly one extension; rate-limit state is never shared across
// extensions (invariant).
type RateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	maxRequests int
	window      time.Duration
}

// NewRateLimiter builds a limiter with the given max-requests/window,
// falling back to 100 req / 60s when the caller passes non-positive
// values.
func NewRateLimiter(maxRequests, windowSeconds int) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 100
	}
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	return &RateLimiter{
		buckets:     make(map[string]*bucket),
		maxRequests: maxRequests,
		window:      time.Duration(windowSeconds) * time.Second,
	}
}

// Allow purges timestamps older than now-window for ip, then admits the
// request and records now if the purged count is still below max;
// otherwise it rejects without recording.
func (l *RateLimiter) Allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{}
		l.buckets[ip] = b
	}

	cutoff := now.Add(-l.window)
	kept := b.timestamps[:0]
	for _, ts := range b.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	b.timestamps = kept

	if len(b.timestamps) >= l.maxRequests {
		return false
	}
	b.timestamps = append(b.timestamps, now)
	return true
}

// ClientIP extracts the caller's address the way the request pipeline's
// front door does: X-Forwarded-For (first hop), else X-Real-IP, else
// RemoteAddr with the port stripped.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx >= 0 {
		addr = addr[:idx]
	}
	return addr
}
