package mediapipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeEncoder struct {
	startErr error
	stopErr  error
	started  bool
}

func (f *fakeEncoder) Start(params map[string]any) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	return nil
}

func (f *fakeEncoder) Stop() error {
	if f.stopErr != nil {
		return f.stopErr
	}
	f.started = false
	return nil
}

func TestSessionStartStop(t *testing.T) {
	enc := &fakeEncoder{}
	s := NewSession(enc)

	assert.Equal(t, string(StateIdle), s.Status()["state"])

	err := s.Start("sess-1", map[string]any{"fps": 30.0})
	assert.NoError(t, err)
	assert.True(t, enc.started)
	status := s.Status()
	assert.Equal(t, string(StateRunning), status["state"])
	assert.Equal(t, "sess-1", status["session_id"])

	result, err := s.Stop()
	assert.NoError(t, err)
	assert.True(t, result["stopped"].(bool))
	assert.Equal(t, "sess-1", result["session_id"])
	assert.False(t, enc.started)
	assert.Equal(t, string(StateIdle), s.Status()["state"])
}

func TestSessionStartTwiceRejected(t *testing.T) {
	s := NewSession(&fakeEncoder{})
	assert.NoError(t, s.Start("a", nil))
	err := s.Start("b", nil)
	assert.Error(t, err)
}

func TestSessionStopIdleIsNoop(t *testing.T) {
	s := NewSession(&fakeEncoder{})
	result, err := s.Stop()
	assert.NoError(t, err)
	assert.False(t, result["stopped"].(bool))
}

func TestSessionStartErrorTransitionsToError(t *testing.T) {
	enc := &fakeEncoder{startErr: errors.New("boom")}
	s := NewSession(enc)
	err := s.Start("a", nil)
	assert.Error(t, err)
	assert.Equal(t, string(StateError), s.Status()["state"])
	assert.Equal(t, "boom", s.Status()["last_error"])
}

func TestNullEncoderDefault(t *testing.T) {
	s := NewSession(nil)
	assert.NoError(t, s.Start("x", nil))
	_, err := s.Stop()
	assert.NoError(t, err)
}
