// Package middleware provides the HTTP front-end's cross-cutting
// concerns: security headers, CORS, request-id/structured logging,
// tracing, panic recovery, and a body-size cap. These wrap every request
// ahead of the router's endpoint dispatch.
package middleware

import (
	"net/http"

	"github.com/agentext/simhost/internal/config"
)

// SecureHeaders sets the fixed set of security headers on every
// response: CSP, X-Content-Type-Options, X-Frame-Options, Referrer-Policy,
// Permissions-Policy, and optionally HSTS. Values come from the loaded
// HTTPConfig so they are overridable via http.json.
func SecureHeaders(cfg config.HTTPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", cfg.SecurityHeaders.ContentSecurityPolicy)
			h.Set("Referrer-Policy", cfg.SecurityHeaders.ReferrerPolicy)
			h.Set("Permissions-Policy", cfg.SecurityHeaders.PermissionsPolicy)
			if cfg.SecurityHeaders.HSTSEnabled {
				h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
			}
			WriteVaryOrigin(w)
			next.ServeHTTP(w, r)
		})
	}
}
