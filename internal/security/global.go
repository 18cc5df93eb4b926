package security

import "golang.org/x/time/rate"

// NewGlobalLimiter builds a process-wide token-bucket ceiling shared across
// every caller, layered ahead of the per-IP sliding window in RateLimiter.
// Where RateLimiter enforces per-client fairness, this guards
// the extension's total throughput regardless of how many distinct IPs are
// calling, using golang.org/x/time/rate's standard token bucket rather than
// reimplementing one.
func NewGlobalLimiter(requestsPerSecond float64, burst int) *rate.Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 200
	}
	if burst <= 0 {
		burst = 400
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
