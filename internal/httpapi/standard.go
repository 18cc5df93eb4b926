package httpapi

import (
	"net/http"
	"time"

	"github.com/agentext/simhost/internal/envelope"
)

// mountStandardRoutes registers the fixed endpoints identical across every
// extension plus JSON 404/405 fallbacks so a
// caller never sees Go's default plain-text handlers.
func (s *Server) mountStandardRoutes() {
	s.router.HandleFunc("/health", s.handleStandard(s.health)).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleStandard(s.metricsJSON)).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics.json", s.handleStandard(s.metricsJSON)).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics.prom", s.handleStandard(s.metricsProm)).Methods(http.MethodGet)
	s.router.HandleFunc("/docs", s.handleDocs).Methods(http.MethodGet)
	s.router.HandleFunc("/openapi.json", s.handleDocs).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.handleStandard(s.status)).Methods(http.MethodGet)
	s.router.HandleFunc("/ping", s.handleStandard(s.status)).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, s.caps.HTTPConfig, envelope.CodeNotFound, "Not found", nil)
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, s.caps.HTTPConfig, envelope.CodeMethodNotAllowed, "Method not allowed", nil)
	})
}

// handleStandard adapts a no-input standard endpoint function into an
// http.HandlerFunc, writing its payload through the normal success
// envelope.
func (s *Server) handleStandard(fn func() map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, s.caps.HTTPConfig, fn())
	}
}

// health implements GET /health: service name, version, port,
// timestamp, plus any extension-specific health extras.
func (s *Server) health() map[string]any {
	out := map[string]any{
		"service":   s.caps.Version.ServiceName,
		"extension": s.caps.Identity.Name,
		"version":   s.caps.Version.Version,
		"port":      s.caps.Identity.Port,
		"timestamp": time.Now().Unix(),
	}
	if s.caps.HealthExtras != nil {
		for k, v := range s.caps.HealthExtras() {
			out[k] = v
		}
	}
	return out
}

// metricsJSON implements GET /metrics and /metrics.json.
func (s *Server) metricsJSON() map[string]any {
	if s.caps.Metrics == nil {
		return map[string]any{}
	}
	return s.caps.Metrics.Snapshot()
}

// metricsProm implements GET /metrics.prom: the raw text-exposition body,
// via the envelope's _raw_text escape hatch.
func (s *Server) metricsProm() map[string]any {
	if s.caps.Metrics == nil {
		return map[string]any{envelope.RawTextKey: ""}
	}
	text, err := s.caps.Metrics.TextExposition()
	if err != nil {
		text = ""
	}
	return map[string]any{envelope.RawTextKey: text}
}

// status implements GET /status and /ping.
func (s *Server) status() map[string]any {
	return map[string]any{
		"status":    "running",
		"extension": s.caps.Identity.Name,
		"timestamp": time.Now().Unix(),
	}
}

// handleDocs implements GET /docs and /openapi.json: status 200 only if
// the returned document carries an "openapi" field, else 500.
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if s.caps.OpenAPI != nil {
		doc = s.caps.OpenAPI()
	}
	if doc == nil {
		doc = map[string]any{}
	}

	if _, ok := doc["openapi"]; !ok {
		body := envelope.NewErrorBody("DOCS_FAILED", "OpenAPI document unavailable", nil)
		writeJSON(w, http.StatusInternalServerError, s.caps.HTTPConfig, body)
		return
	}
	// The document is served as-is: an OpenAPI body is its own shape, not
	// an envelope payload.
	writeJSON(w, http.StatusOK, s.caps.HTTPConfig, doc)
}
