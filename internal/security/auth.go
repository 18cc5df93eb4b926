package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// Principal is the security configuration for a single extension: an
// optional Bearer token, an optional HMAC secret,
// and whether Bearer mode is opted in. HMAC is preferred and does not
// require opt-in once a secret is configured.
type Principal struct {
	BearerToken       string
	BearerAuthEnabled bool
	HMACSecret        string
	HMACSkew          time.Duration
}

// Reason distinguishes why authentication failed, for distinct error
// text and for the auth_failures metric.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMissingCredentials
	ReasonInvalidHMAC
	ReasonBearerDisabled
	ReasonInvalidBearer
)

// Manager validates incoming requests against a Principal and a global
// enable flag.
type Manager struct {
	GloballyEnabled bool
	Principal       Principal
	Logger          *slog.Logger
}

// NewManager builds a Manager. A nil logger falls back to slog.Default().
func NewManager(globallyEnabled bool, principal Principal, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if principal.HMACSkew <= 0 {
		principal.HMACSkew = 60 * time.Second
	}
	return &Manager{GloballyEnabled: globallyEnabled, Principal: principal, Logger: logger}
}

// Authenticate applies the authentication policy:
//  1. globally disabled or no secrets configured → admit.
//  2. HMAC path (preferred) when X-Timestamp/X-Signature are present.
//  3. Bearer path when opted in.
//  4. otherwise reject with ReasonMissingCredentials.
func (m *Manager) Authenticate(r *http.Request) (bool, Reason) {
	if !m.GloballyEnabled || (m.Principal.BearerToken == "" && m.Principal.HMACSecret == "") {
		return true, ReasonNone
	}

	ts := r.Header.Get("X-Timestamp")
	sig := r.Header.Get("X-Signature")
	if m.Principal.HMACSecret != "" && ts != "" && sig != "" {
		if validateHMAC(m.Principal.HMACSecret, r.Method, r.URL.Path, ts, sig, m.Principal.HMACSkew) {
			return true, ReasonNone
		}
		return false, ReasonInvalidHMAC
	}

	if auth := r.Header.Get("Authorization"); auth != "" {
		if !m.Principal.BearerAuthEnabled {
			return false, ReasonBearerDisabled
		}
		m.Logger.Warn("bearer token authentication used", "path", r.URL.Path)
		token, ok := bearerToken(auth)
		if !ok || !constantTimeEqual(token, m.Principal.BearerToken) {
			return false, ReasonInvalidBearer
		}
		return true, ReasonNone
	}

	return false, ReasonMissingCredentials
}

// validateHMAC checks |now-ts| <= skew and that sig equals
// HMAC-SHA256(secret, "METHOD|PATH|TIMESTAMP") in hex, constant-time.
func validateHMAC(secret, method, path, tsHeader, sigHeader string, skew time.Duration) bool {
	ts, err := strconv.ParseInt(tsHeader, 10, 64)
	if err != nil {
		return false
	}
	now := time.Now().Unix()
	delta := now - ts
	if delta < 0 {
		delta = -delta
	}
	if time.Duration(delta)*time.Second > skew {
		return false
	}

	expected := SignRequest(secret, method, path, tsHeader)
	return constantTimeEqual(sigHeader, expected)
}

// SignRequest computes HMAC-SHA256(secret, "METHOD|PATH|TIMESTAMP") in hex,
// the canonical signature callers must send in X-Signature.
func SignRequest(secret, method, path, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%s|%s|%s", method, path, timestamp)))
	return hex.EncodeToString(mac.Sum(nil))
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		// Still run a comparison of equal length to avoid leaking length
		// via early return timing; compare against a same-length string.
		subtle.ConstantTimeCompare([]byte(a), []byte(a))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) {
		return "", false
	}
	if header[:len(prefix)] != prefix {
		return "", false
	}
	return header[len(prefix):], true
}

// ErrorMessage returns the user-visible text for a failure reason.
func (r Reason) ErrorMessage() string {
	switch r {
	case ReasonInvalidHMAC:
		return "Invalid HMAC signature"
	case ReasonBearerDisabled:
		return "Bearer authentication is not enabled for this extension"
	case ReasonInvalidBearer:
		return "Invalid bearer token"
	default:
		return "Authentication required: provide a Bearer token or HMAC signature"
	}
}
