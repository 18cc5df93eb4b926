package keyframe

import "fmt"

// Position checks a 3-numeric position/target vector.
func Position(name string, v []float64) (Vec3, error) {
	if len(v) != 3 {
		return Vec3{}, fmt.Errorf("%s must have exactly 3 components, got %d", name, len(v))
	}
	return Vec3{v[0], v[1], v[2]}, nil
}

// Duration checks that a supplied duration is positive.
func Duration(seconds float64) error {
	if seconds <= 0 {
		return fmt.Errorf("duration must be positive, got %g", seconds)
	}
	return nil
}

// FPS checks that a frame rate is in (0,120].
func FPS(fps float64) error {
	if fps <= 0 || fps > 120 {
		return fmt.Errorf("fps must be in (0,120], got %g", fps)
	}
	return nil
}

// DefaultFPS is used when a generator's caller does not override it.
const DefaultFPS = 30.0

// Default per-shot speeds (units/s) used by DurationFromSpeed.
const (
	DefaultSpeedSmoothMove = 10.0
	DefaultSpeedArc        = 8.0
	DefaultSpeedOrbit      = 15.0
)

// DefaultCurvatureIntensity is the "standard" style's curvature_intensity
// for arc_shot and cinematic_orbit.
const DefaultCurvatureIntensity = 0.25

// minimalDuration is the floor applied when start and end coincide.
const minimalDuration = 0.1

// DurationFromSpeed implements "Duration-from-speed": if duration is
// supplied (non-nil), it wins; otherwise the duration is derived from the
// Euclidean distance between start and end divided by speed, floored at
// 0.1s for a near-zero-distance move.
func DurationFromSpeed(duration *float64, start, end Vec3, speed float64) float64 {
	if duration != nil {
		return *duration
	}
	distance := Distance(start, end)
	if distance < 1e-9 {
		return minimalDuration
	}
	return distance / speed
}

// FrameCount returns the keyframe count for a duration/fps pair:
// max(1, round(duration*fps)) + 1, so that frame 0 and the final frame
// both exist even for very short movements.
func FrameCount(durationSeconds, fps float64) int {
	n := int(roundHalfAwayFromZero(durationSeconds * fps))
	if n < 1 {
		n = 1
	}
	return n + 1
}

func roundHalfAwayFromZero(v float64) float64 {
	if v < 0 {
		return -roundHalfAwayFromZero(-v)
	}
	return float64(int(v + 0.5))
}
