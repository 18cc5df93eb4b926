// Package config loads the layered runtime configuration for an extension
// process: built-in defaults, an optional JSON config file, then environment
// overrides, in that order (later layers win).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration for one extension's control
// plane. It is constructed once at startup by Load and passed by reference
// to every component that needs it; there is no other mutable global state.
type Config struct {
	Extension string `mapstructure:"extension"`
	Port      int    `mapstructure:"port"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// Auth: HMAC is the default when a secret is configured; Bearer
	// is opt-in. AuthEnabled is the global kill switch.
	AuthEnabled       bool   `mapstructure:"auth_enabled"`
	BearerToken       string `mapstructure:"auth_token"`
	BearerAuthEnabled bool   `mapstructure:"bearer_auth_enabled"`
	HMACSecret        string `mapstructure:"hmac_secret"`
	HMACSkewSeconds   int    `mapstructure:"hmac_skew_seconds"`

	// Rate limiting.
	RateLimitMaxRequests int `mapstructure:"rate_limit_max_requests"`
	RateLimitWindowSec   int `mapstructure:"rate_limit_window_sec"`

	// Process-wide throughput ceiling, layered ahead of the per-IP bucket.
	GlobalRateLimitRPS   float64 `mapstructure:"global_rate_limit_rps"`
	GlobalRateLimitBurst int     `mapstructure:"global_rate_limit_burst"`

	// Request tracker.
	TrackerTTLSeconds int `mapstructure:"tracker_ttl_seconds"`
	TrackerCapacity   int `mapstructure:"tracker_capacity"`

	// Main-thread dispatch.
	DispatchDefaultTimeoutSec float64 `mapstructure:"dispatch_default_timeout_sec"`

	// Cinematic queue.
	CinematicQueueCapacity int     `mapstructure:"cinematic_queue_capacity"`
	CinematicDefaultFPS    float64 `mapstructure:"cinematic_default_fps"`

	ShutdownTimeoutSec int `mapstructure:"shutdown_timeout_sec"`

	// Tracing (ambient observability stack).
	TracingEnabled      bool    `mapstructure:"tracing_enabled"`
	TracingEndpoint     string  `mapstructure:"tracing_endpoint"`
	TracingSamplingRate float64 `mapstructure:"tracing_sampling_rate"`

	// Metrics endpoint auth (reuses the same Bearer+HMAC manager).
	MetricsAuthEnabled bool `mapstructure:"metrics_auth_enabled"`

	// Streaming ingest endpoint (RTMP/SRT extensions only).
	StreamHost string `mapstructure:"stream_host"`
	StreamKey  string `mapstructure:"stream_key"`
	StreamPort int    `mapstructure:"stream_port"`
}

// Load reads configuration for the named extension: built-in defaults, an
// optional JSON file (<extension>.json in the CWD or /etc/agentext/), then
// AGENT_* / AGENT_<EXT>_* environment variables. extension must be the
// extension's stable identity name, e.g. "worldbuilder".
func Load(extension string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(extension)
	v.SetConfigType("json")
	v.AddConfigPath("/etc/agentext/")
	v.AddConfigPath(".")

	v.SetDefault("extension", extension)
	v.SetDefault("port", 8211)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("allowed_origins", []string{"*"})

	v.SetDefault("auth_enabled", true)
	v.SetDefault("auth_token", "")
	v.SetDefault("bearer_auth_enabled", false)
	v.SetDefault("hmac_secret", "")
	v.SetDefault("hmac_skew_seconds", 60)

	v.SetDefault("rate_limit_max_requests", 100)
	v.SetDefault("rate_limit_window_sec", 60)
	v.SetDefault("global_rate_limit_rps", 200.0)
	v.SetDefault("global_rate_limit_burst", 400)

	v.SetDefault("tracker_ttl_seconds", 300)
	v.SetDefault("tracker_capacity", 500)

	v.SetDefault("dispatch_default_timeout_sec", 5.0)

	v.SetDefault("cinematic_queue_capacity", 10)
	v.SetDefault("cinematic_default_fps", 30.0)

	v.SetDefault("shutdown_timeout_sec", 15)

	v.SetDefault("tracing_enabled", false)
	v.SetDefault("tracing_endpoint", "")
	v.SetDefault("tracing_sampling_rate", 1.0)

	v.SetDefault("metrics_auth_enabled", false)

	v.SetDefault("stream_host", "")
	v.SetDefault("stream_key", "")
	v.SetDefault("stream_port", 1935)

	v.SetEnvPrefix("AGENT_EXT")
	v.AutomaticEnv()
	bindPerExtensionEnv(v, extension)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: failed to read %s config: %w", extension, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	cfg.Extension = extension
	return &cfg, nil
}

// bindPerExtensionEnv applies the per-extension override variables
// (AGENT_<EXT>_AUTH_TOKEN, AGENT_<EXT>_HMAC_SECRET,
// AGENT_<EXT>_BEARER_AUTH_ENABLED) as explicit overrides, which viper
// consults before the blanket AGENT_EXT_* prefix lookup of AutomaticEnv,
// so a non-empty per-extension value always wins.
func bindPerExtensionEnv(v *viper.Viper, extension string) {
	upper := strings.ToUpper(extension)
	for key, name := range map[string]string{
		"auth_token":          "AGENT_" + upper + "_AUTH_TOKEN",
		"hmac_secret":         "AGENT_" + upper + "_HMAC_SECRET",
		"bearer_auth_enabled": "AGENT_" + upper + "_BEARER_AUTH_ENABLED",
	} {
		if val := os.Getenv(name); val != "" {
			v.Set(key, val)
		}
	}
	_ = v.BindEnv("auth_enabled", "AGENT_EXT_AUTH_ENABLED")
}
