package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/agentext/simhost/internal/config"
	"github.com/agentext/simhost/internal/identity"
	"github.com/agentext/simhost/internal/metrics"
	"github.com/agentext/simhost/internal/security"
)

func newTestServer(t *testing.T, routes RouteTable) *Server {
	t.Helper()
	caps := Capabilities{
		Identity:   identity.Identity{Name: "testext", Version: "0.0.0", APIVersion: "v1", ServiceName: "testext", Port: 9999},
		HTTPConfig: config.LoadHTTPConfig(),
		Routes:     routes,
		OpenAPI: func() map[string]any {
			return map[string]any{"openapi": "3.0.0"}
		},
	}
	return New(caps, nil)
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d; want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body not valid JSON: %v", err)
	}
	if body["success"] != true {
		t.Fatalf("body[success] = %v; want true", body["success"])
	}
}

func TestUnknownRouteIs404WithEnvelope(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s, http.MethodGet, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /nope status = %d; want 404", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body not valid JSON: %v", err)
	}
	if body["success"] != false {
		t.Fatalf("body[success] = %v; want false", body["success"])
	}
}

func TestExtensionRouteDispatch(t *testing.T) {
	routes := RouteTable{
		"/echo": {Handler: func(method string, data map[string]any) (map[string]any, error) {
			return map[string]any{"method": method}, nil
		}, Methods: []string{"GET"}},
	}
	s := newTestServer(t, routes)
	rec := doRequest(s, http.MethodGet, "/echo")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /echo status = %d; want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body not valid JSON: %v", err)
	}
	if body["method"] != "GET" {
		t.Fatalf("body[method] = %v; want GET", body["method"])
	}
}

func TestExtensionRouteRejectsWrongMethod(t *testing.T) {
	routes := RouteTable{
		"/echo": {Handler: func(method string, data map[string]any) (map[string]any, error) {
			return map[string]any{}, nil
		}, Methods: []string{"POST"}},
	}
	s := newTestServer(t, routes)
	rec := doRequest(s, http.MethodGet, "/echo")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET on POST-only route: status = %d; want 405", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body not valid JSON: %v", err)
	}
	if body["error_code"] != "METHOD_NOT_ALLOWED" {
		t.Fatalf("body[error_code] = %v; want METHOD_NOT_ALLOWED", body["error_code"])
	}
}

func TestDocsRequiresOpenAPIField(t *testing.T) {
	caps := Capabilities{
		Identity:   identity.Identity{Name: "testext"},
		HTTPConfig: config.LoadHTTPConfig(),
	}
	s := New(caps, nil)
	rec := doRequest(s, http.MethodGet, "/docs")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("GET /docs with no OpenAPI func: status = %d; want 500", rec.Code)
	}
}

func TestSecurityGateRejectsUnauthenticated(t *testing.T) {
	caps := Capabilities{
		Identity:   identity.Identity{Name: "testext"},
		HTTPConfig: config.LoadHTTPConfig(),
		Security: security.NewManager(true, security.Principal{
			BearerToken: "secret", BearerAuthEnabled: true,
		}, nil),
		Routes: RouteTable{
			"/thing": {Handler: func(method string, data map[string]any) (map[string]any, error) {
				return map[string]any{}, nil
			}, Methods: []string{"GET"}},
		},
	}
	s := New(caps, nil)
	rec := doRequest(s, http.MethodGet, "/thing")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("GET /thing without credentials: status = %d; want 401", rec.Code)
	}
}

func TestHMACSignedRequestAdmitted(t *testing.T) {
	caps := Capabilities{
		Identity:   identity.Identity{Name: "testext"},
		HTTPConfig: config.LoadHTTPConfig(),
		Security:   security.NewManager(true, security.Principal{HMACSecret: "abc"}, nil),
	}
	s := New(caps, nil)

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", security.SignRequest("abc", "GET", "/health", ts))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("signed GET /health status = %d; want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body not valid JSON: %v", err)
	}
	if body["success"] != true {
		t.Fatalf("body[success] = %v; want true", body["success"])
	}
}

func TestHMACSkewedTimestampRejected(t *testing.T) {
	caps := Capabilities{
		Identity:   identity.Identity{Name: "testext"},
		HTTPConfig: config.LoadHTTPConfig(),
		Security:   security.NewManager(true, security.Principal{HMACSecret: "abc"}, nil),
	}
	s := New(caps, nil)

	ts := strconv.FormatInt(time.Now().Add(-120*time.Second).Unix(), 10)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", security.SignRequest("abc", "GET", "/health", ts))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("skewed GET /health status = %d; want 401", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != `HMAC-SHA256 realm="isaac-sim-testext"` {
		t.Fatalf("WWW-Authenticate = %q; want HMAC realm header", got)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body not valid JSON: %v", err)
	}
	if body["error_code"] != "UNAUTHORIZED" {
		t.Fatalf("body[error_code] = %v; want UNAUTHORIZED", body["error_code"])
	}
}

func TestPerIPRateLimitIncrementsCounterOnce(t *testing.T) {
	reg := metrics.New("testext")
	caps := Capabilities{
		Identity:    identity.Identity{Name: "testext"},
		HTTPConfig:  config.LoadHTTPConfig(),
		RateLimiter: security.NewRateLimiter(2, 60),
		Metrics:     reg,
	}
	s := New(caps, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("request %d status = %d; want %d (all: %v)", i, codes[i], want[i], codes)
		}
	}
	snap := reg.Snapshot()
	if snap["agentext_rate_limited"] != float64(1) {
		t.Fatalf("rate_limited counter = %v; want 1", snap["agentext_rate_limited"])
	}
}

func TestGlobalLimiterRejectsOverBurst(t *testing.T) {
	caps := Capabilities{
		Identity:      identity.Identity{Name: "testext"},
		HTTPConfig:    config.LoadHTTPConfig(),
		GlobalLimiter: security.NewGlobalLimiter(1, 1),
	}
	s := New(caps, nil)
	first := doRequest(s, http.MethodGet, "/health")
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d; want 200", first.Code)
	}
	second := doRequest(s, http.MethodGet, "/health")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d; want 429", second.Code)
	}
}
