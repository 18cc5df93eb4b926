package keyframe

// SmoothMove implements smooth_move: linear interpolation of
// position and (explicit target, or one computed from rotation) under the
// selected easing.
func SmoothMove(p SmoothMoveParams) (frames []Keyframe, duration float64, err error) {
	speed := p.Speed
	if speed <= 0 {
		speed = DefaultSpeedSmoothMove
	}
	duration = DurationFromSpeed(p.Duration, p.Start, p.End, speed)
	if err := Duration(duration); err != nil {
		return nil, 0, err
	}

	ease, _ := p.easing()
	n := FrameCount(duration, p.fps())

	targetAt := p.resolveTargetFunc()

	frames = sequence(n, duration, ease,
		func(t float64) Vec3 { return Lerp(p.Start, p.End, t) },
		targetAt,
	)
	return frames, duration, nil
}

// resolveTargetFunc picks between an explicit start/end target pair and a
// rotation-derived forward-looking target (smooth_move).
func (p SmoothMoveParams) resolveTargetFunc() func(t float64) Vec3 {
	if p.StartTarget != nil || p.EndTarget != nil {
		start := zeroOr(p.StartTarget, p.Start)
		end := zeroOr(p.EndTarget, p.End)
		return func(t float64) Vec3 { return Lerp(start, end, t) }
	}
	if p.RotationDeg != nil {
		const forwardDistance = 10.0
		forward := forwardFromRotation(p.RotationDeg[0], p.RotationDeg[1], p.RotationDeg[2])
		offset := forward.Scale(forwardDistance)
		return func(t float64) Vec3 { return Lerp(p.Start, p.End, t).Add(offset) }
	}
	// No target information: look 10 units in front of the camera
	// (negative Z), interpolated along the path.
	defaultOffset := Vec3{0, 0, -10}
	return func(t float64) Vec3 { return Lerp(p.Start, p.End, t).Add(defaultOffset) }
}

func zeroOr(v *Vec3, fallback Vec3) Vec3 {
	if v != nil {
		return *v
	}
	return fallback
}
