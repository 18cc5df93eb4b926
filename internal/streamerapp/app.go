// Package streamerapp implements the RTMP and SRT live-streaming
// extensions: one supervised streaming pipeline per
// process, parameterized by protocol so the same handlers back both
// cmd/rtmpstreamer and cmd/srtstreamer. RTMP/SRT wire formats are handled
// by the external encoder process; Session only tracks lifecycle.
package streamerapp

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/agentext/simhost/internal/envelope"
	"github.com/agentext/simhost/internal/httpapi"
	"github.com/agentext/simhost/internal/mediapipeline"
	"github.com/agentext/simhost/internal/metrics"
	"github.com/agentext/simhost/internal/reqdecode"
)

// App is one streaming extension's domain state.
type App struct {
	Protocol string // "rtmp" or "srt"
	Session  *mediapipeline.Session
	Metrics  *metrics.Registry

	// StreamKey and Host gate environment/validate and seed urls(); set
	// from extension config at construction.
	StreamKey string
	Host      string
	Port      int
}

// New builds an App for the given protocol.
func New(protocol, host, streamKey string, port int) *App {
	return &App{
		Protocol:  protocol,
		Session:   mediapipeline.NewSession(mediapipeline.NullEncoder{}),
		StreamKey: streamKey,
		Host:      host,
		Port:      port,
	}
}

// Routes builds the streaming route table.
func (a *App) Routes() httpapi.RouteTable {
	return httpapi.RouteTable{
		"/streaming/start":                {Handler: a.Start, Methods: []string{"POST"}},
		"/streaming/stop":                 {Handler: a.Stop, Methods: []string{"POST"}},
		"/streaming/status":               {Handler: a.Status, Methods: []string{"GET"}},
		"/streaming/urls":                 {Handler: a.URLs, Methods: []string{"GET"}},
		"/streaming/environment/validate": {Handler: a.ValidateEnvironment, Methods: []string{"GET"}},
	}
}

// Start implements POST /streaming/start.
func (a *App) Start(method string, data map[string]any) (map[string]any, error) {
	bitrate := reqdecode.FloatOr(data, "bitrate_kbps", 4500)
	sessionID := uuid.New().String()
	params := map[string]any{"protocol": a.Protocol, "bitrate_kbps": bitrate}
	if err := a.Session.Start(sessionID, params); err != nil {
		if apiErr, ok := err.(*envelope.APIError); ok {
			return nil, apiErr
		}
		return nil, envelope.Domain(envelope.Code("STREAMING_FAILED"), err.Error(), nil)
	}
	if a.Metrics != nil {
		a.Metrics.IncEvent("streams_started")
	}
	return map[string]any{"session_id": sessionID, "state": "running", "protocol": a.Protocol}, nil
}

// Stop implements POST /streaming/stop.
func (a *App) Stop(method string, data map[string]any) (map[string]any, error) {
	result, err := a.Session.Stop()
	if err != nil {
		return nil, envelope.Domain(envelope.Code("STREAMING_FAILED"), err.Error(), nil)
	}
	return result, nil
}

// Status implements GET /streaming/status.
func (a *App) Status(method string, data map[string]any) (map[string]any, error) {
	return a.Session.Status(), nil
}

// URLs implements GET /streaming/urls: the protocol-specific ingest and
// playback endpoints.
func (a *App) URLs(method string, data map[string]any) (map[string]any, error) {
	switch a.Protocol {
	case "srt":
		return map[string]any{
			"ingest_url":   fmt.Sprintf("srt://%s:%d?streamid=%s", a.Host, a.Port, a.StreamKey),
			"playback_url": fmt.Sprintf("srt://%s:%d", a.Host, a.Port),
		}, nil
	default:
		return map[string]any{
			"ingest_url":   fmt.Sprintf("rtmp://%s:%d/live/%s", a.Host, a.Port, a.StreamKey),
			"playback_url": fmt.Sprintf("rtmp://%s:%d/live/%s", a.Host, a.Port, a.StreamKey),
		}, nil
	}
}

// ValidateEnvironment implements GET /streaming/environment/validate:
// reports whether the configuration needed to start a stream is present,
// without attempting to start one.
func (a *App) ValidateEnvironment(method string, data map[string]any) (map[string]any, error) {
	problems := []string{}
	if a.Host == "" {
		problems = append(problems, "host is not configured")
	}
	if a.StreamKey == "" {
		problems = append(problems, "stream key is not configured")
	}
	if a.Port <= 0 {
		problems = append(problems, "port is not configured")
	}
	return map[string]any{"valid": len(problems) == 0, "problems": problems, "protocol": a.Protocol}, nil
}
