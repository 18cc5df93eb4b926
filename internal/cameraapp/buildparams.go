package cameraapp

import (
	"fmt"
	"log/slog"

	"github.com/agentext/simhost/internal/cinematic/keyframe"
	"github.com/agentext/simhost/internal/envelope"
)

// buildParams decodes a POST body into the keyframe.*Params type the named
// operation expects. Unknown operations are rejected with a
// validation error; the cinematic registry itself also rejects unknown
// operation names, but failing fast here keeps the error a 400 instead of
// a 500 QUEUE_UNAVAILABLE.
//
// commonParams is unexported in package keyframe, so the shared
// duration/easing fields are assigned through the promoted-field selectors
// below rather than inside each composite literal.
func buildParams(operation string, data map[string]any) (any, error) {
	duration := toFloatPtr(data, "duration")
	easing := toStringOr(data, "easing", "")
	if easing != "" {
		if _, recognized := keyframe.Easing(easing); !recognized {
			slog.Warn("unknown easing, falling back to ease_in_out", "easing", easing, "operation", operation)
		}
	}

	switch operation {
	case "smooth_move":
		start, err := toVec3(data, "start")
		if err != nil {
			return nil, err
		}
		end, err := toVec3(data, "end")
		if err != nil {
			return nil, err
		}
		startTarget, err := toVec3Ptr(data, "start_target")
		if err != nil {
			return nil, err
		}
		endTarget, err := toVec3Ptr(data, "end_target")
		if err != nil {
			return nil, err
		}
		rotation, err := toVec3Ptr(data, "rotation_deg")
		if err != nil {
			return nil, err
		}
		p := keyframe.SmoothMoveParams{
			Start: start, End: end,
			StartTarget: startTarget, EndTarget: endTarget, RotationDeg: rotation,
			Speed: toFloatOr(data, "speed", keyframe.DefaultSpeedSmoothMove),
		}
		p.Duration, p.Easing = duration, easing
		return p, nil

	case "arc_shot":
		start, err := toVec3(data, "start")
		if err != nil {
			return nil, err
		}
		end, err := toVec3(data, "end")
		if err != nil {
			return nil, err
		}
		startTarget, err := toVec3Ptr(data, "start_target")
		if err != nil {
			return nil, err
		}
		endTarget, err := toVec3Ptr(data, "end_target")
		if err != nil {
			return nil, err
		}
		p := keyframe.ArcShotParams{
			Start: start, End: end,
			StartTarget: startTarget, EndTarget: endTarget,
			CurvatureIntensity: toFloatOr(data, "curvature_intensity", keyframe.DefaultCurvatureIntensity),
			Speed:              toFloatOr(data, "speed", keyframe.DefaultSpeedArc),
		}
		p.Duration, p.Easing = duration, easing
		return p, nil

	case "orbit_shot":
		center, err := toVec3Ptr(data, "center")
		if err != nil {
			return nil, err
		}
		c := keyframe.Vec3{}
		if center != nil {
			c = *center
		}
		startTarget, err := toVec3Ptr(data, "start_target")
		if err != nil {
			return nil, err
		}
		endTarget, err := toVec3Ptr(data, "end_target")
		if err != nil {
			return nil, err
		}
		startPos, err := toVec3Ptr(data, "start_position")
		if err != nil {
			return nil, err
		}
		p := keyframe.OrbitShotParams{
			Center:          c,
			Radius:          toFloatOr(data, "radius", 10.0),
			Elevation:       toFloatOr(data, "elevation", 2.0),
			StartAzimuthDeg: toFloatOr(data, "start_azimuth_deg", 0.0),
			EndAzimuthDeg:   toFloatOr(data, "end_azimuth_deg", 360.0),
			StartTarget:     startTarget,
			EndTarget:       endTarget,
			TargetObject:    toStringOr(data, "target_object", ""),
			StartPos:        startPos,
			OrbitCount:      toFloatOr(data, "orbit_count", 1.0),
			Speed:           toFloatOr(data, "speed", keyframe.DefaultSpeedOrbit),
		}
		p.Duration, p.Easing = duration, easing
		return p, nil

	case "dolly_shot":
		start, err := toVec3(data, "start")
		if err != nil {
			return nil, err
		}
		end, err := toVec3(data, "end")
		if err != nil {
			return nil, err
		}
		startTarget, err := toVec3Ptr(data, "start_target")
		if err != nil {
			return nil, err
		}
		endTarget, err := toVec3Ptr(data, "end_target")
		if err != nil {
			return nil, err
		}
		p := keyframe.DollyShotParams{
			Start: start, End: end,
			StartTarget: startTarget, EndTarget: endTarget,
			Style: toStringOr(data, "style", "ease_in_out"),
			Speed: toFloatOr(data, "speed", keyframe.DefaultSpeedSmoothMove),
		}
		p.Duration, p.Easing = duration, easing
		return p, nil

	case "pan_tilt_shot":
		start, err := toVec3Ptr(data, "start")
		if err != nil {
			return nil, err
		}
		end, err := toVec3Ptr(data, "end")
		if err != nil {
			return nil, err
		}
		startTarget, err := toVec3Ptr(data, "start_target")
		if err != nil {
			return nil, err
		}
		endTarget, err := toVec3Ptr(data, "end_target")
		if err != nil {
			return nil, err
		}
		center, err := toVec3Ptr(data, "center")
		if err != nil {
			return nil, err
		}
		p := keyframe.PanTiltShotParams{
			Start: start, End: end,
			StartTarget: startTarget, EndTarget: endTarget,
			Center:          center,
			StartAzimuthDeg: toFloatPtr(data, "start_azimuth_deg"),
			EndAzimuthDeg:   toFloatPtr(data, "end_azimuth_deg"),
			StartElevation:  toFloatPtr(data, "start_elevation"),
			EndElevation:    toFloatPtr(data, "end_elevation"),
			Distance:        toFloatOr(data, "distance", 10.0),
			Speed:           toFloatOr(data, "speed", keyframe.DefaultSpeedSmoothMove),
		}
		p.Duration, p.Easing = duration, easing
		return p, nil

	case "cinematic_orbit":
		start, err := toVec3(data, "start")
		if err != nil {
			return nil, err
		}
		end, err := toVec3(data, "end")
		if err != nil {
			return nil, err
		}
		startTarget, err := toVec3Ptr(data, "start_target")
		if err != nil {
			return nil, err
		}
		endTarget, err := toVec3Ptr(data, "end_target")
		if err != nil {
			return nil, err
		}
		p := keyframe.CinematicOrbitParams{
			Start: start, End: end,
			StartTarget: startTarget, EndTarget: endTarget,
			CurvatureIntensity: toFloatOr(data, "curvature_intensity", keyframe.DefaultCurvatureIntensity),
			Speed:              toFloatOr(data, "speed", keyframe.DefaultSpeedArc),
		}
		p.Duration, p.Easing = duration, easing
		return p, nil

	default:
		return nil, envelope.Validation(fmt.Sprintf("unknown shot operation %q", operation), map[string]any{"operation": operation})
	}
}
