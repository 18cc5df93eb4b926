package keyframe

import (
	"fmt"
	"math"
)

// PanTiltShot implements pan_tilt_shot in both of its modes:
// keyframe mode (explicit start/end positions, behaving like smooth_move)
// and rotation mode (start/end azimuth around a fixed-radius orbit).
func PanTiltShot(p PanTiltShotParams) (frames []Keyframe, duration float64, err error) {
	if p.Start != nil && p.End != nil {
		return panTiltKeyframeMode(p)
	}
	if p.StartAzimuthDeg != nil && p.EndAzimuthDeg != nil {
		return panTiltRotationMode(p)
	}
	return nil, 0, fmt.Errorf("pan_tilt_shot requires either start/end positions or start/end azimuth")
}

func panTiltKeyframeMode(p PanTiltShotParams) (frames []Keyframe, duration float64, err error) {
	start, end := *p.Start, *p.End
	speed := p.Speed
	if speed <= 0 {
		speed = DefaultSpeedSmoothMove
	}
	duration = DurationFromSpeed(p.Duration, start, end, speed)
	if err := Duration(duration); err != nil {
		return nil, 0, err
	}
	ease, _ := p.easing()
	n := FrameCount(duration, p.fps())

	posAt := func(t float64) Vec3 { return Lerp(start, end, t) }
	targetAt := func(t float64) Vec3 {
		if p.StartTarget != nil || p.EndTarget != nil {
			s := zeroOr(p.StartTarget, start)
			e := zeroOr(p.EndTarget, end)
			return Lerp(s, e, t)
		}
		return posAt(t).Add(Vec3{0, 0, -10})
	}

	frames = sequence(n, duration, ease, posAt, targetAt)
	return frames, duration, nil
}

func panTiltRotationMode(p PanTiltShotParams) (frames []Keyframe, duration float64, err error) {
	center := Vec3{}
	if p.Center != nil {
		center = *p.Center
	}
	startAz, endAz := *p.StartAzimuthDeg, *p.EndAzimuthDeg
	startElev, endElev := 0.0, 0.0
	if p.StartElevation != nil {
		startElev = *p.StartElevation
	}
	if p.EndElevation != nil {
		endElev = *p.EndElevation
	} else {
		endElev = startElev
	}
	radius := p.Distance
	if radius <= 0 {
		radius = 10
	}

	speed := p.Speed
	if speed <= 0 {
		speed = DefaultSpeedOrbit
	}
	arcLength := radius * absf(endAz-startAz) * math.Pi / 180
	duration = DurationFromSpeed(p.Duration, Vec3{}, Vec3{arcLength, 0, 0}, speed)
	if err := Duration(duration); err != nil {
		return nil, 0, err
	}

	n := FrameCount(duration, p.fps())
	startPoint := orbitPoint(center, radius, startElev, startAz)
	endPoint := orbitPoint(center, radius, endElev, endAz)

	posAt := clampEndpoints(func(t float64) Vec3 {
		az := startAz + (endAz-startAz)*t
		elev := startElev + (endElev-startElev)*t
		return orbitPoint(center, radius, elev, az)
	}, startPoint, endPoint)
	targetAt := func(t float64) Vec3 { return center }

	frames = sequence(n, duration, sinusoidalEase, posAt, targetAt)
	return frames, duration, nil
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
