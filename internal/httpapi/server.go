// Package httpapi implements the HTTP server and router shared by every
// extension: standard endpoints, CORS, security headers, the
// security gate (rate limit + auth), request decoding, and the uniform
// response envelope.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/agentext/simhost/internal/config"
	"github.com/agentext/simhost/internal/envelope"
	middleware "github.com/agentext/simhost/internal/httpmw"
	"github.com/agentext/simhost/internal/identity"
	"github.com/agentext/simhost/internal/metrics"
	"github.com/agentext/simhost/internal/security"
)

// Handler answers one HTTP request's decoded data. It
// returns the success payload, or an error — ideally an *envelope.APIError
// so the router can map it to the right status/code; any other error
// becomes a 500 "<OP>_FAILED".
type Handler func(method string, data map[string]any) (map[string]any, error)

// Route is one extension-specific endpoint: the handler plus the allowed
// methods. The router rejects a disallowed verb with 405 before dispatch;
// a handler may additionally return envelope.MethodNotAllowed for finer
// distinctions.
type Route struct {
	Handler Handler
	Methods []string
}

// RouteTable maps a path to its extension-specific route.
type RouteTable map[string]Route

// Capabilities is the aggregated per-extension capability set.
// HealthExtras and OpenAPI are optional; a nil func is simply not called.
type Capabilities struct {
	Identity       identity.Identity
	Version        config.VersionEntry
	HTTPConfig     config.HTTPConfig
	AllowedOrigins []string
	Security       *security.Manager
	RateLimiter    *security.RateLimiter
	GlobalLimiter  *rate.Limiter
	Metrics        *metrics.Registry
	Routes         RouteTable

	// HealthExtras contributes extra fields to /health, e.g. subsystem
	// readiness. Optional.
	HealthExtras func() map[string]any
	// OpenAPI returns the extension's OpenAPI document for /docs and
	// /openapi.json. Optional; with a nil func both endpoints answer 500
	// DOCS_FAILED.
	OpenAPI func() map[string]any
}

// Server is one extension's HTTP front-end.
type Server struct {
	caps   Capabilities
	router *mux.Router
	logger *slog.Logger
}

// New builds a Server wired with the standard middleware chain (CORS,
// security headers, tracing, request-id/structured log, recovery, body
// limit) and the standard + extension-specific endpoints.
func New(caps Capabilities, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{caps: caps, router: mux.NewRouter(), logger: logger}
	s.mountStandardRoutes()
	s.mountExtensionRoutes()
	return s
}

// Handler returns the fully wrapped http.Handler ready to be passed to
// http.Server.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = s.securityGate(h)
	h = middleware.Recovery(s.logger)(h)
	h = middleware.StructuredLog(s.caps.Identity.Name, s.caps.Metrics)(h)
	h = middleware.Tracing(h)
	h = middleware.RequestID(h)
	h = middleware.MaxBodySize(middleware.DefaultMaxBodyBytes)(h)
	origins := s.caps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h = middleware.CORS(origins, s.caps.HTTPConfig)(h)
	// Outermost, so preflights answered by the CORS wrapper carry them too.
	h = middleware.SecureHeaders(s.caps.HTTPConfig)(h)
	return h
}

// mountExtensionRoutes registers every path in the route table, dispatching
// through the shared decode/invoke/respond pipeline.
func (s *Server) mountExtensionRoutes() {
	for path, route := range s.caps.Routes {
		route := route
		s.router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if !methodAllowed(r.Method, route.Methods) {
				writeError(w, s.caps.HTTPConfig, envelope.CodeMethodNotAllowed, "Method not allowed", nil)
				return
			}
			s.dispatch(w, r, route.Handler)
		})
	}
}

// methodAllowed reports whether method is in the route's allow list. An
// empty list permits every verb.
func methodAllowed(method string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, m := range allowed {
		if m == method {
			return true
		}
	}
	return false
}

// dispatch decodes the request, invokes h, and writes the response through
// the uniform envelope.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, h Handler) {
	data, err := decode(r)
	if err != nil {
		writeError(w, s.caps.HTTPConfig, envelope.CodeInvalidJSON, "Invalid JSON", nil)
		return
	}

	payload, err := h(r.Method, data)
	if err != nil {
		writeHandlerError(w, s.caps.HTTPConfig, r.URL.Path, err)
		if s.caps.Metrics != nil {
			s.caps.Metrics.IncErrors()
		}
		return
	}
	writeSuccess(w, s.caps.HTTPConfig, payload)
}

// securityGate runs rate limiting first, then authentication, ahead of
// every request including the standard endpoints.
func (s *Server) securityGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if s.caps.GlobalLimiter != nil && !s.caps.GlobalLimiter.Allow() {
			if s.caps.Metrics != nil {
				s.caps.Metrics.IncRateLimited()
			}
			writeError(w, s.caps.HTTPConfig, envelope.CodeRateLimited, "Rate limit exceeded", nil)
			return
		}

		if s.caps.RateLimiter != nil {
			ip := security.ClientIP(r)
			if !s.caps.RateLimiter.Allow(ip, time.Now()) {
				if s.caps.Metrics != nil {
					s.caps.Metrics.IncRateLimited()
				}
				writeError(w, s.caps.HTTPConfig, envelope.CodeRateLimited, "Rate limit exceeded", nil)
				return
			}
		}

		if s.caps.Security != nil {
			ok, reason := s.caps.Security.Authenticate(r)
			if !ok {
				if s.caps.Metrics != nil {
					s.caps.Metrics.IncAuthFailures()
				}
				w.Header().Set("WWW-Authenticate", `HMAC-SHA256 realm="isaac-sim-`+s.caps.Identity.Name+`"`)
				writeError(w, s.caps.HTTPConfig, envelope.CodeUnauthorized, reason.ErrorMessage(), nil)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
