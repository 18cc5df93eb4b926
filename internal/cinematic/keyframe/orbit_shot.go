package keyframe

import "math"

// OrbitShot implements orbit_shot in both of its modes: a spherical
// sweep around an explicit center, and a sweep around a target object's
// bounding center resolved through an AssetTransformer collaborator.
func OrbitShot(p OrbitShotParams) (frames []Keyframe, duration float64, err error) {
	center := p.Center
	radius := p.Radius
	elevation := p.Elevation
	startAz := p.StartAzimuthDeg
	endAz := p.EndAzimuthDeg
	if endAz == 0 && startAz == 0 {
		endAz = 360
	}

	if p.TargetObject != "" || p.StartPos != nil {
		center, radius, elevation, startAz = p.resolveAroundObject()
		count := p.OrbitCount
		if count <= 0 {
			count = 1
		}
		endAz = startAz + 360*count
	}

	speed := p.Speed
	if speed <= 0 {
		speed = DefaultSpeedOrbit
	}
	arcLength := radius * math.Abs(endAz-startAz) * math.Pi / 180
	startPoint := orbitPoint(center, radius, elevation, startAz)
	endPoint := orbitPoint(center, radius, elevation, endAz)
	if math.Mod(endAz-startAz, 360) == 0 {
		// A whole number of turns ends where it began; reuse the start point
		// so trigonometric drift cannot leave the final frame off it.
		endPoint = startPoint
	}
	duration =DurationFromSpeed(p.Duration, Vec3{}, Vec3{arcLength, 0, 0}, speed)
	if p.Duration == nil && arcLength < 1e-9 {
		duration = 0.1
	}
	if err := Duration(duration); err != nil {
		return nil, 0, err
	}

	n := FrameCount(duration, p.fps())

	posAt := func(t float64) Vec3 {
		az := startAz + (endAz-startAz)*t
		return orbitPoint(center, radius, elevation, az)
	}
	posAt = clampEndpoints(posAt, startPoint, endPoint)

	targetAt := func(t float64) Vec3 {
		if p.StartTarget != nil || p.EndTarget != nil {
			start := zeroOr(p.StartTarget, center)
			end := zeroOr(p.EndTarget, center)
			return Lerp(start, end, t)
		}
		return center
	}

	frames = sequence(n, duration, sinusoidalEase, posAt, targetAt)
	for i := range frames {
		frames[i].AzimuthDeg = startAz + (endAz-startAz)*frames[i].Progress
	}
	return frames, duration, nil
}

// resolveAroundObject computes the around-object mode's center, radius,
// elevation, and starting azimuth: the center comes from the asset's
// bounding center (via the Transformer collaborator, falling back to the
// origin), radius/elevation derive from the explicit start position
// relative to that center.
func (p OrbitShotParams) resolveAroundObject() (center Vec3, radius, elevation, startAz float64) {
	center = Vec3{}
	if p.TargetObject != "" && p.Transformer != nil {
		if c, ok := p.Transformer.GetAssetTransform(p.TargetObject); ok {
			center = c
		}
	}
	start := Vec3{}
	if p.StartPos != nil {
		start = *p.StartPos
	}
	rel := start.Sub(center)
	radius = math.Hypot(rel[0], rel[1])
	elevation = rel[2]
	startAz = math.Atan2(rel[1], rel[0]) * 180 / math.Pi
	if startAz < 0 {
		startAz += 360
	}
	return center, radius, elevation, startAz
}

// orbitPoint samples a point on a horizontal circle of the given radius
// and elevation around center at azimuth degrees (measured from +X,
// counter-clockwise about +Z).
func orbitPoint(center Vec3, radius, elevation, azimuthDeg float64) Vec3 {
	rad := azimuthDeg * math.Pi / 180
	return Vec3{
		center[0] + radius*math.Cos(rad),
		center[1] + radius*math.Sin(rad),
		center[2] + elevation,
	}
}

// clampEndpoints wraps posAt so that t=0 and t=1 land exactly on the
// supplied start/end points, guarding against floating point drift in the
// trigonometric evaluation (precision contract).
func clampEndpoints(posAt func(t float64) Vec3, start, end Vec3) func(t float64) Vec3 {
	return func(t float64) Vec3 {
		if t <= 0 {
			return start
		}
		if t >= 1 {
			return end
		}
		return posAt(t)
	}
}
