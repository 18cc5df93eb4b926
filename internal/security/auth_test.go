package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthenticate_GloballyDisabled(t *testing.T) {
	m := NewManager(false, Principal{HMACSecret: "s"}, nil)
	r := httptest.NewRequest(http.MethodGet, "/status", nil)
	ok, reason := m.Authenticate(r)
	assert.True(t, ok)
	assert.Equal(t, ReasonNone, reason)
}

func TestAuthenticate_NoSecretsConfigured(t *testing.T) {
	m := NewManager(true, Principal{}, nil)
	r := httptest.NewRequest(http.MethodGet, "/status", nil)
	ok, _ := m.Authenticate(r)
	assert.True(t, ok)
}

func TestAuthenticate_MissingCredentials(t *testing.T) {
	m := NewManager(true, Principal{HMACSecret: "s"}, nil)
	r := httptest.NewRequest(http.MethodGet, "/status", nil)
	ok, reason := m.Authenticate(r)
	assert.False(t, ok)
	assert.Equal(t, ReasonMissingCredentials, reason)
}

func TestAuthenticate_ValidHMAC(t *testing.T) {
	m := NewManager(true, Principal{HMACSecret: "topsecret"}, nil)
	r := httptest.NewRequest(http.MethodPost, "/cinematic/keyframes", nil)
	ts := "1700000000"
	sig := SignRequest("topsecret", r.Method, r.URL.Path, ts)
	r.Header.Set("X-Timestamp", ts)
	r.Header.Set("X-Signature", sig)

	// Freeze "now" near the signed timestamp by constructing the manager's
	// skew generously; validateHMAC itself reads time.Now(), so exercise the
	// signature match via a skew wide enough to cover test flakiness.
	m.Principal.HMACSkew = 1000000 * time.Hour
	ok, reason := m.Authenticate(r)
	assert.True(t, ok)
	assert.Equal(t, ReasonNone, reason)
}

func TestAuthenticate_InvalidHMACSignature(t *testing.T) {
	m := NewManager(true, Principal{HMACSecret: "topsecret", HMACSkew: 1000000 * time.Hour}, nil)
	r := httptest.NewRequest(http.MethodPost, "/cinematic/keyframes", nil)
	r.Header.Set("X-Timestamp", "1700000000")
	r.Header.Set("X-Signature", "deadbeef")

	ok, reason := m.Authenticate(r)
	assert.False(t, ok)
	assert.Equal(t, ReasonInvalidHMAC, reason)
}

func TestAuthenticate_HMACSkewExceeded(t *testing.T) {
	m := NewManager(true, Principal{HMACSecret: "topsecret", HMACSkew: 1 * time.Second}, nil)
	r := httptest.NewRequest(http.MethodPost, "/cinematic/keyframes", nil)
	ts := "1"
	sig := SignRequest("topsecret", r.Method, r.URL.Path, ts)
	r.Header.Set("X-Timestamp", ts)
	r.Header.Set("X-Signature", sig)

	ok, reason := m.Authenticate(r)
	assert.False(t, ok)
	assert.Equal(t, ReasonInvalidHMAC, reason)
}

func TestAuthenticate_BearerDisabledByDefault(t *testing.T) {
	m := NewManager(true, Principal{BearerToken: "abc123"}, nil)
	r := httptest.NewRequest(http.MethodGet, "/status", nil)
	r.Header.Set("Authorization", "Bearer abc123")

	ok, reason := m.Authenticate(r)
	assert.False(t, ok)
	assert.Equal(t, ReasonBearerDisabled, reason)
}

func TestAuthenticate_BearerOptedIn(t *testing.T) {
	m := NewManager(true, Principal{BearerToken: "abc123", BearerAuthEnabled: true}, nil)
	r := httptest.NewRequest(http.MethodGet, "/status", nil)
	r.Header.Set("Authorization", "Bearer abc123")

	ok, reason := m.Authenticate(r)
	assert.True(t, ok)
	assert.Equal(t, ReasonNone, reason)
}

func TestAuthenticate_InvalidBearer(t *testing.T) {
	m := NewManager(true, Principal{BearerToken: "abc123", BearerAuthEnabled: true}, nil)
	r := httptest.NewRequest(http.MethodGet, "/status", nil)
	r.Header.Set("Authorization", "Bearer wrong")

	ok, reason := m.Authenticate(r)
	assert.False(t, ok)
	assert.Equal(t, ReasonInvalidBearer, reason)
}

func TestSignRequest_Deterministic(t *testing.T) {
	a := SignRequest("secret", "GET", "/a", "123")
	b := SignRequest("secret", "GET", "/a", "123")
	assert.Equal(t, a, b)

	c := SignRequest("secret", "GET", "/b", "123")
	assert.NotEqual(t, a, c)
}

func TestRateLimiter_AllowsUpToMax(t *testing.T) {
	rl := NewRateLimiter(3, 60)
	now := time.Unix(1700000000, 0)
	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4", now))
	}
	assert.False(t, rl.Allow("1.2.3.4", now))
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	rl := NewRateLimiter(1, 10)
	now := time.Unix(1700000000, 0)
	assert.True(t, rl.Allow("1.2.3.4", now))
	assert.False(t, rl.Allow("1.2.3.4", now.Add(5*time.Second)))
	assert.True(t, rl.Allow("1.2.3.4", now.Add(11*time.Second)))
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	rl := NewRateLimiter(1, 60)
	now := time.Unix(1700000000, 0)
	assert.True(t, rl.Allow("1.2.3.4", now))
	assert.True(t, rl.Allow("5.6.7.8", now))
}

func TestClientIP_XForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", ClientIP(r))
}

func TestClientIP_RemoteAddrFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.2:4433"
	assert.Equal(t, "198.51.100.2", ClientIP(r))
}
