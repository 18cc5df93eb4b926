package config

import (
	"encoding/json"
	"os"
)

// HTTPConfig is the http.json document: CORS values, security headers, and
// response-formatting/error-message defaults.
type HTTPConfig struct {
	CORS struct {
		AllowMethods []string `json:"allow_methods"`
		AllowHeaders []string `json:"allow_headers"`
		MaxAgeSec    int      `json:"max_age_seconds"`
	} `json:"cors"`
	SecurityHeaders struct {
		ContentSecurityPolicy string `json:"content_security_policy"`
		ReferrerPolicy        string `json:"referrer_policy"`
		PermissionsPolicy     string `json:"permissions_policy"`
		HSTSEnabled           bool   `json:"hsts_enabled"`
	} `json:"security_headers"`
	Response struct {
		JSONIndent string `json:"json_indent"`
	} `json:"response"`
	ErrorMessages map[string]string `json:"error_messages"`
}

func defaultHTTPConfig() HTTPConfig {
	var c HTTPConfig
	c.CORS.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	c.CORS.AllowHeaders = []string{"Content-Type", "Authorization", "X-Timestamp", "X-Signature"}
	c.CORS.MaxAgeSec = 3600
	c.SecurityHeaders.ContentSecurityPolicy = "default-src 'self'; frame-ancestors 'none'"
	c.SecurityHeaders.ReferrerPolicy = "strict-origin-when-cross-origin"
	c.SecurityHeaders.PermissionsPolicy = "geolocation=(), microphone=(), camera=()"
	c.SecurityHeaders.HSTSEnabled = false
	c.Response.JSONIndent = ""
	c.ErrorMessages = map[string]string{
		"missing_credentials": "Authentication required: provide a Bearer token or HMAC signature",
		"invalid_hmac":        "Invalid HMAC signature",
		"bearer_disabled":     "Bearer authentication is not enabled for this extension",
	}
	return c
}

// LoadHTTPConfig reads http.json (CWD or /etc/agentext/); a missing or
// invalid file falls back to documented defaults.
func LoadHTTPConfig() HTTPConfig {
	for _, path := range []string{"http.json", "/etc/agentext/http.json"} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		c := defaultHTTPConfig()
		if err := json.Unmarshal(data, &c); err != nil {
			continue
		}
		return c
	}
	return defaultHTTPConfig()
}
