package keyframe

// Keyframe is an immutable per-frame camera pose.
// AzimuthDeg is populated only by orbit_shot; no generator in this package
// sets CurvatureControl. Consumers may ignore both.
type Keyframe struct {
	Position         Vec3
	Target           Vec3
	Progress         float64
	Timestamp        float64
	AzimuthDeg       float64 `json:"azimuth_deg,omitempty"`
	CurvatureControl *Vec3   `json:"curvature_control,omitempty"`
}

// sequence builds n frames by sampling posAt/targetAt at eased progress
// values 0..1, guaranteeing frame 0 and the last frame land exactly on
// t=0/t=1 (precision contract).
func sequence(n int, durationSeconds float64, ease EasingFunc, posAt, targetAt func(t float64) Vec3) []Keyframe {
	frames := make([]Keyframe, n)
	last := n - 1
	for i := 0; i < n; i++ {
		linear := float64(i) / float64(last)
		if last == 0 {
			linear = 1
		}
		eased := ease(linear)
		frames[i] = Keyframe{
			Position:  posAt(eased),
			Target:    targetAt(eased),
			Progress:  linear,
			Timestamp: linear * durationSeconds,
		}
	}
	// Precision contract: timestamps strictly increase, but a
	// zero-duration movement would otherwise collapse every sample to 0 —
	// nudge subsequent frames forward by a negligible epsilon so ordering
	// still holds without perturbing progress semantics.
	if durationSeconds <= 0 {
		for i := range frames {
			frames[i].Timestamp = float64(i) * 1e-6
		}
	}
	return frames
}
