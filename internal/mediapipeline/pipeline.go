// Package mediapipeline models the recording and streaming extensions'
// shared shape: a start/stop/status session wrapped around an encoding
// pipeline. The encoding pipeline itself (GStreamer/NVENC process
// supervision) lives outside this module, so Encoder is the seam a real
// host wires a process supervisor into; NullEncoder is this repo's
// in-process stand-in.
package mediapipeline

import (
	"sync"
	"time"

	"github.com/agentext/simhost/internal/envelope"
)

// State is a session's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateError   State = "error"
)

// Encoder is the process-supervision seam: Start/Stop spawn or tear down
// whatever external encoding process a real host would run.
type Encoder interface {
	Start(params map[string]any) error
	Stop() error
}

// NullEncoder tracks running state without ever spawning a process —
// this repo's stand-in for the out-of-scope GStreamer/NVENC supervisor.
type NullEncoder struct{}

func (NullEncoder) Start(params map[string]any) error { return nil }
func (NullEncoder) Stop() error { return nil }

// Session is one supervised recording or streaming pipeline.
type Session struct {
	mu        sync.Mutex
	encoder   Encoder
	state     State
	sessionID string
	startedAt time.Time
	params    map[string]any
	lastError string
}

// NewSession builds an idle Session around encoder.
func NewSession(encoder Encoder) *Session {
	if encoder == nil {
		encoder = NullEncoder{}
	}
	return &Session{encoder: encoder, state: StateIdle}
}

// Start transitions idle -> running. Starting an already-running session
// is rejected: each extension supervises exactly one pipeline at a time.
func (s *Session) Start(sessionID string, params map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return envelope.Domain(envelope.Code("ALREADY_RUNNING"), "a session is already running", map[string]any{"session_id": s.sessionID})
	}
	if err := s.encoder.Start(params); err != nil {
		s.state = StateError
		s.lastError = err.Error()
		return err
	}
	s.sessionID = sessionID
	s.params = params
	s.startedAt = time.Now()
	s.state = StateRunning
	s.lastError = ""
	return nil
}

// Stop transitions running -> idle and reports the session's elapsed
// duration. Stopping an idle session is a no-op, not an error.
func (s *Session) Stop() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return map[string]any{"stopped": false}, nil
	}
	if err := s.encoder.Stop(); err != nil {
		s.state = StateError
		s.lastError = err.Error()
		return nil, err
	}
	elapsed := time.Since(s.startedAt).Seconds()
	sessionID := s.sessionID
	s.state = StateIdle
	s.sessionID = ""
	return map[string]any{
		"stopped":          true,
		"session_id":       sessionID,
		"duration_seconds": elapsed,
	}, nil
}

// Status reports the current lifecycle state and, when running, elapsed
// time and the params Start was called with.
func (s *Session) Status() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]any{"state": string(s.state)}
	if s.state == StateRunning {
		out["session_id"] = s.sessionID
		out["elapsed_seconds"] = time.Since(s.startedAt).Seconds()
		out["params"] = s.params
	}
	if s.lastError != "" {
		out["last_error"] = s.lastError
	}
	return out
}
