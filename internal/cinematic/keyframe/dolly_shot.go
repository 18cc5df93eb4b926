package keyframe

// DollyShot implements dolly_shot: linear position interpolation
// under a style-driven approach curve, with an extra deceleration blend
// over the final 20% of the motion.
func DollyShot(p DollyShotParams) (frames []Keyframe, duration float64, err error) {
	speed := p.Speed
	if speed <= 0 {
		speed = DefaultSpeedSmoothMove
	}
	duration = DurationFromSpeed(p.Duration, p.Start, p.End, speed)
	if err := Duration(duration); err != nil {
		return nil, 0, err
	}

	style := dollyEasing(p.Style)
	ease := func(t float64) float64 { return dollyDecelerate(style(t), t) }

	n := FrameCount(duration, p.fps())

	posAt := func(t float64) Vec3 { return Lerp(p.Start, p.End, t) }
	targetAt := dollyTargetFunc(p)

	frames = sequence(n, duration, ease, posAt, targetAt)
	return frames, duration, nil
}

// dollyDecelerate smooths the final 20% of normalized time t toward a
// gentle stop, blending the style curve's value with an ease-out curve as
// t approaches 1 (dolly_shot "deceleration factor").
func dollyDecelerate(styled, t float64) float64 {
	const decelStart = 0.8
	if t <= decelStart {
		return styled
	}
	local := (t - decelStart) / (1 - decelStart)
	blend := local * local * (3 - 2*local) // smoothstep, 0..1 over the tail
	decelerated := 1 - (1-t)*(1-t)
	return styled*(1-blend) + decelerated*blend
}

// dollyTargetFunc resolves dolly_shot's target behavior: interpolate
// if both endpoints are supplied, hold the one that is, else look at the
// midpoint between the two camera positions.
func dollyTargetFunc(p DollyShotParams) func(t float64) Vec3 {
	switch {
	case p.StartTarget != nil && p.EndTarget != nil:
		start, end := *p.StartTarget, *p.EndTarget
		return func(t float64) Vec3 { return Lerp(start, end, t) }
	case p.StartTarget != nil:
		held := *p.StartTarget
		return func(t float64) Vec3 { return held }
	case p.EndTarget != nil:
		held := *p.EndTarget
		return func(t float64) Vec3 { return held }
	default:
		mid := Lerp(p.Start, p.End, 0.5)
		return func(t float64) Vec3 { return mid }
	}
}
