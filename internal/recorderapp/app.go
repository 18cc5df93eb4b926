// Package recorderapp implements the viewport recorder extension: a
// single supervised video-recording pipeline plus one-off frame capture
// and frame cleanup ("Recorder" routes), built on the generic
// start/stop/status session shape in mediapipeline.
package recorderapp

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentext/simhost/internal/envelope"
	"github.com/agentext/simhost/internal/httpapi"
	"github.com/agentext/simhost/internal/mediapipeline"
	"github.com/agentext/simhost/internal/metrics"
	"github.com/agentext/simhost/internal/reqdecode"
)

// Frame is one captured viewport still.
type Frame struct {
	ID         string
	Path       string
	CapturedAt time.Time
}

// App is the recorder extension's domain state.
type App struct {
	Session *mediapipeline.Session
	Metrics *metrics.Registry

	mu     sync.Mutex
	frames []Frame
}

// New builds an App with an idle recording session and no captured frames.
func New() *App {
	return &App{Session: mediapipeline.NewSession(mediapipeline.NullEncoder{})}
}

// Routes builds the recorder route table. /recording/* are aliases
// of /video/*.
func (a *App) Routes() httpapi.RouteTable {
	video := httpapi.RouteTable{
		"/video/start":  {Handler: a.Start, Methods: []string{"POST"}},
		"/video/stop":   {Handler: a.Stop, Methods: []string{"POST"}},
		"/video/status": {Handler: a.Status, Methods: []string{"GET"}},
	}
	routes := httpapi.RouteTable{
		"/viewport/capture_frame": {Handler: a.CaptureFrame, Methods: []string{"POST"}},
		"/cleanup/frames":         {Handler: a.CleanupFrames, Methods: []string{"POST"}},
	}
	for path, route := range video {
		routes[path] = route
		alias := "/recording" + path[len("/video"):]
		routes[alias] = route
	}
	return routes
}

// Start implements POST /video/start (and /recording/start).
func (a *App) Start(method string, data map[string]any) (map[string]any, error) {
	outputPath := reqdecode.StringOr(data, "output_path", "")
	fps := reqdecode.FloatOr(data, "fps", 30.0)
	width := reqdecode.FloatOr(data, "width", 1920)
	height := reqdecode.FloatOr(data, "height", 1080)

	sessionID := uuid.New().String()
	params := map[string]any{"output_path": outputPath, "fps": fps, "width": width, "height": height}
	if err := a.Session.Start(sessionID, params); err != nil {
		if apiErr, ok := err.(*envelope.APIError); ok {
			return nil, apiErr
		}
		return nil, envelope.Domain(envelope.Code("RECORDING_FAILED"), err.Error(), nil)
	}
	if a.Metrics != nil {
		a.Metrics.IncEvent("recordings_started")
	}
	return map[string]any{"session_id": sessionID, "state": "running"}, nil
}

// Stop implements POST /video/stop (and /recording/stop).
func (a *App) Stop(method string, data map[string]any) (map[string]any, error) {
	result, err := a.Session.Stop()
	if err != nil {
		return nil, envelope.Domain(envelope.Code("RECORDING_FAILED"), err.Error(), nil)
	}
	return result, nil
}

// Status implements GET /video/status (and /recording/status).
func (a *App) Status(method string, data map[string]any) (map[string]any, error) {
	return a.Session.Status(), nil
}

// CaptureFrame implements POST /viewport/capture_frame: an immediate
// still capture independent of an active recording session.
func (a *App) CaptureFrame(method string, data map[string]any) (map[string]any, error) {
	outputDir := reqdecode.StringOr(data, "output_dir", "/tmp/frames")
	id := uuid.New().String()
	frame := Frame{ID: id, Path: fmt.Sprintf("%s/%s.png", outputDir, id), CapturedAt: time.Now()}

	a.mu.Lock()
	a.frames = append(a.frames, frame)
	a.mu.Unlock()

	if a.Metrics != nil {
		a.Metrics.IncEvent("frames_captured")
	}
	return map[string]any{"frame_id": id, "path": frame.Path}, nil
}

// CleanupFrames implements POST /cleanup/frames: drop frames older than
// max_age_seconds (default 3600).
func (a *App) CleanupFrames(method string, data map[string]any) (map[string]any, error) {
	maxAge := reqdecode.FloatOr(data, "max_age_seconds", 3600)
	cutoff := time.Now().Add(-time.Duration(maxAge) * time.Second)

	a.mu.Lock()
	defer a.mu.Unlock()

	sort.Slice(a.frames, func(i, j int) bool { return a.frames[i].CapturedAt.Before(a.frames[j].CapturedAt) })
	kept := a.frames[:0]
	removed := 0
	for _, f := range a.frames {
		if f.CapturedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	a.frames = kept
	return map[string]any{"removed": removed, "remaining": len(a.frames)}, nil
}
