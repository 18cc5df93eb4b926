// Package cinematic implements the queued camera-movement engine: an
// ordered queue of shots, a play/pause/stop state machine, and
// per-tick progression that advances the active movement by interpolating
// its precomputed keyframes.
package cinematic

import (
	"time"

	"github.com/agentext/simhost/internal/cinematic/keyframe"
)

// Movement is one in-flight camera operation: the shot type, its
// precomputed keyframes, and where it currently is in its pass.
type Movement struct {
	MovementID      string
	Operation       string
	Params          any
	StartTime       time.Time
	DurationSeconds float64
	Keyframes       []keyframe.Keyframe
	CurrentFrame    int
}

// pending is a queued-but-not-yet-started shot.
type pending struct {
	MovementID string
	Operation  string
	Params     any
}

// Pose is the (position, target) pair applied to the camera each tick.
type Pose struct {
	Position keyframe.Vec3
	Target   keyframe.Vec3
}

// frameAt selects the keyframe for a given progress in [0,1], clamped to
// the valid index range.
func (m *Movement) frameAt(progress float64) keyframe.Keyframe {
	if len(m.Keyframes) == 0 {
		return keyframe.Keyframe{}
	}
	idx := int(progress * float64(len(m.Keyframes)))
	if idx >= len(m.Keyframes) {
		idx = len(m.Keyframes) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return m.Keyframes[idx]
}

// Elapsed returns how long the movement has been running as of now.
func (m *Movement) Elapsed(now time.Time) time.Duration {
	return now.Sub(m.StartTime)
}

// Progress returns elapsed/duration, not clamped.
func (m *Movement) Progress(now time.Time) float64 {
	if m.DurationSeconds <= 0 {
		return 1
	}
	return m.Elapsed(now).Seconds() / m.DurationSeconds
}

// Done reports whether the movement's duration has elapsed.
func (m *Movement) Done(now time.Time) bool {
	return m.Elapsed(now).Seconds() >= m.DurationSeconds
}

// RemainingSeconds returns the time left before the movement completes,
// floored at zero.
func (m *Movement) RemainingSeconds(now time.Time) float64 {
	remaining := m.DurationSeconds - m.Elapsed(now).Seconds()
	if remaining < 0 {
		return 0
	}
	return remaining
}
