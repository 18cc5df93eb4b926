package keyframe

// ArcShot implements arc_shot: a quadratic Bézier through
// (start, control, end) with sinusoidal easing.
func ArcShot(p ArcShotParams) (frames []Keyframe, duration float64, err error) {
	speed := p.Speed
	if speed <= 0 {
		speed = DefaultSpeedArc
	}
	duration = DurationFromSpeed(p.Duration, p.Start, p.End, speed)
	if err := Duration(duration); err != nil {
		return nil, 0, err
	}

	curvature := p.CurvatureIntensity
	if curvature == 0 {
		curvature = DefaultCurvatureIntensity
	}
	control := arcControlPoint(p.Start, p.End, curvature)

	n := FrameCount(duration, p.fps())

	posAt := func(t float64) Vec3 { return quadraticBezier(p.Start, control, p.End, t) }
	targetAt := arcTargetFunc(p, posAt, n)

	frames = sequence(n, duration, sinusoidalEase, posAt, targetAt)
	return frames, duration, nil
}

// arcControlPoint computes the midpoint offset by a horizontal
// perpendicular scaled by distance*curvature_intensity, plus a vertical
// lift of 0.1*distance (arc_shot).
func arcControlPoint(start, end Vec3, curvatureIntensity float64) Vec3 {
	distance := Distance(start, end)
	mid := Lerp(start, end, 0.5)
	perp := horizontalPerpendicular(end.Sub(start))
	offset := perp.Scale(distance * curvatureIntensity)
	lift := Vec3{0, 0, 0.1 * distance}
	return mid.Add(offset).Add(lift)
}

// arcTargetFunc resolves arc_shot's target behavior: linear-eased between
// explicit start/end targets, or a look-ahead 5 frames along the curve
// (arc_shot).
func arcTargetFunc(p ArcShotParams, posAt func(t float64) Vec3, n int) func(t float64) Vec3 {
	if p.StartTarget != nil || p.EndTarget != nil {
		start := zeroOr(p.StartTarget, p.Start)
		end := zeroOr(p.EndTarget, p.End)
		return func(t float64) Vec3 { return Lerp(start, end, t) }
	}
	const lookAheadFrames = 5
	return func(t float64) Vec3 {
		lookAheadT := t + float64(lookAheadFrames)/float64(max(n-1, 1))
		if lookAheadT > 1 {
			lookAheadT = 1
		}
		return posAt(lookAheadT)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
