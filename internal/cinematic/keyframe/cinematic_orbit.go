package keyframe

// CinematicOrbit implements cinematic_orbit: the same Bézier curve
// scheme as arc_shot, with the look-at target biased toward the average of
// both endpoint targets as the camera nears the midpoint of the path
// ("scene-focus" blend).
func CinematicOrbit(p CinematicOrbitParams) (frames []Keyframe, duration float64, err error) {
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
	targetAt := cinematicOrbitTargetFunc(p, posAt, n)

	frames = sequence(n, duration, sinusoidalEase, posAt, targetAt)
	return frames, duration, nil
}

// cinematicOrbitTargetFunc blends a linear-eased start/end target with
// the midpoint of both targets, weighted by how close t is to 0.5. Falls
// back to arc_shot's look-ahead behavior when no explicit targets are
// supplied.
func cinematicOrbitTargetFunc(p CinematicOrbitParams, posAt func(t float64) Vec3, n int) func(t float64) Vec3 {
	if p.StartTarget == nil && p.EndTarget == nil {
		const lookAheadFrames = 5
		return func(t float64) Vec3 {
			lookAheadT := t + float64(lookAheadFrames)/float64(max(n-1, 1))
			if lookAheadT > 1 {
				lookAheadT = 1
			}
			return posAt(lookAheadT)
		}
	}

	start := zeroOr(p.StartTarget, p.Start)
	end := zeroOr(p.EndTarget, p.End)
	focus := Lerp(start, end, 0.5)

	return func(t float64) Vec3 {
		linear := Lerp(start, end, t)
		// Weight peaks at t=0.5 (weight 1) and fades to 0 at the endpoints.
		weight := 1 - absf(2*t-1)
		return Lerp(linear, focus, weight)
	}
}
