// Package boot provides the bootstrap sequence shared by every extension's
// cmd/<extension>/main.go: load configuration, wire the security/metrics/
// tracing ambient stack, build the HTTP server, and run it until a
// shutdown signal. Five binaries share this sequence instead of
// duplicating it.
package boot

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentext/simhost/internal/config"
	"github.com/agentext/simhost/internal/httpapi"
	"github.com/agentext/simhost/internal/identity"
	"github.com/agentext/simhost/internal/logging"
	"github.com/agentext/simhost/internal/metrics"
	"github.com/agentext/simhost/internal/security"
	"github.com/agentext/simhost/internal/tracing"
)

// Options configures one extension's bootstrap. BuildRoutes receives the
// loaded config and the extension's metrics registry so handlers can read
// tunables (tracker TTL, dispatch timeout) and emit domain event counters.
type Options struct {
	Extension    string
	BuildRoutes  func(cfg *config.Config, reg *metrics.Registry) httpapi.RouteTable
	HealthExtras func() map[string]any
	OpenAPI      func(version config.VersionEntry) map[string]any
	// OnShutdown runs after the HTTP listener stops accepting new
	// connections but before the process exits, e.g. to drain a
	// dispatcher.
	OnShutdown func()
	// Background, if set, runs alongside the HTTP listener for the life of
	// the process (e.g. the cinematic update-tick loop) as a second member
	// of the same errgroup.Group as the listener, so a panic-free exit from
	// either one is waited on and surfaced through the same error path.
	// Background must return when stop is closed.
	Background func(stop <-chan struct{}) error
}

// Run loads configuration, builds the extension's HTTP server, and blocks
// until SIGINT/SIGTERM, then shuts down gracefully.
func Run(opts Options) error {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: .env discovery: %v\n", opts.Extension, err)
	}

	cfg, err := config.Load(opts.Extension)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: config load failed, using defaults: %v\n", opts.Extension, err)
		cfg = &config.Config{Extension: opts.Extension, Port: 8211}
	}

	logger := logging.New(cfg.LogFormat)
	logger.Info("starting", "extension", opts.Extension, "port", cfg.Port)

	shutdownTracing, err := tracing.Init(opts.Extension, cfg.TracingEndpoint, cfg.TracingSamplingRate)
	if err != nil {
		logger.Warn("tracing init failed, continuing without it", "error", err)
		shutdownTracing = func() {}
	}
	defer shutdownTracing()

	versions := config.LoadVersions()
	version := versions.For(opts.Extension)
	httpCfg := config.LoadHTTPConfig()

	metricsReg := metrics.New(opts.Extension)
	metricsReg.Start()

	secManager := security.NewManager(cfg.AuthEnabled, security.Principal{
		BearerToken:       cfg.BearerToken,
		BearerAuthEnabled: cfg.BearerAuthEnabled,
		HMACSecret:        cfg.HMACSecret,
		HMACSkew:          time.Duration(cfg.HMACSkewSeconds) * time.Second,
	}, logger)
	rateLimiter := security.NewRateLimiter(cfg.RateLimitMaxRequests, cfg.RateLimitWindowSec)
	globalLimiter := security.NewGlobalLimiter(cfg.GlobalRateLimitRPS, cfg.GlobalRateLimitBurst)

	caps := httpapi.Capabilities{
		Identity: identity.Identity{
			Name: opts.Extension, Version: version.Version, APIVersion: version.APIVersion,
			ServiceName: version.ServiceName, Port: cfg.Port,
		},
		Version:        version,
		HTTPConfig:     httpCfg,
		AllowedOrigins: cfg.AllowedOrigins,
		Security:       secManager,
		RateLimiter:    rateLimiter,
		GlobalLimiter:  globalLimiter,
		Metrics:        metricsReg,
		Routes:         opts.BuildRoutes(cfg, metricsReg),
		HealthExtras:   opts.HealthExtras,
	}
	if opts.OpenAPI != nil {
		caps.OpenAPI = func() map[string]any { return opts.OpenAPI(version) }
	}

	server := httpapi.New(caps, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// The HTTP listener and the optional background loop (e.g. the
	// cinematic update-tick driver) run as members of the same
	// errgroup.Group: whichever one exits first unblocks done below, so an
	// unexpected background-loop exit triggers the same shutdown path as a
	// listener failure instead of leaking an unmonitored goroutine.
	var g errgroup.Group
	stop := make(chan struct{})

	g.Go(func() error {
		logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http listener: %w", err)
		}
		return nil
	})

	if opts.Background != nil {
		g.Go(func() error { return opts.Background(stop) })
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var groupErr error
	select {
	case <-quit:
		logger.Info("shutting down")
	case groupErr = <-done:
		if groupErr != nil {
			logger.Error("background task failed, shutting down", "error", groupErr)
		}
	}

	close(stop)
	if opts.OnShutdown != nil {
		opts.OnShutdown()
	}
	metricsReg.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", "error", err)
	}

	if groupErr == nil {
		if err := <-done; err != nil {
			logger.Error("background task failed", "error", err)
		}
	}
	logger.Info("exited")
	return nil
}
