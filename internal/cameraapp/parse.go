// Package cameraapp implements the cameracontroller extension's
// domain handlers: direct camera pose control plus the cinematic queue
// operations exposed over HTTP ("Camera" routes).
package cameraapp

import (
	"github.com/agentext/simhost/internal/cinematic/keyframe"
	"github.com/agentext/simhost/internal/reqdecode"
)

// The helpers below adapt reqdecode's generic extraction to the keyframe
// package's own Vec3 so handlers and buildParams stay free of repeated
// conversions.

func toVec3(data map[string]any, key string) (keyframe.Vec3, error) {
	v, err := reqdecode.Vec(data, key)
	if err != nil {
		return keyframe.Vec3{}, err
	}
	return keyframe.Vec3(v), nil
}

// toVec3Ptr is toVec3's optional counterpart: a missing key returns (nil,
// nil) rather than an error.
func toVec3Ptr(data map[string]any, key string) (*keyframe.Vec3, error) {
	v, err := reqdecode.VecPtr(data, key)
	if err != nil || v == nil {
		return nil, err
	}
	kv := keyframe.Vec3(*v)
	return &kv, nil
}

func toFloatOr(data map[string]any, key string, def float64) float64 {
	return reqdecode.FloatOr(data, key, def)
}

func toFloatPtr(data map[string]any, key string) *float64 {
	return reqdecode.FloatPtr(data, key)
}

func toStringOr(data map[string]any, key, def string) string {
	return reqdecode.StringOr(data, key, def)
}

func toString(data map[string]any, key string) (string, error) {
	return reqdecode.String(data, key)
}

func vec3JSON(v keyframe.Vec3) []float64 { return []float64{v[0], v[1], v[2]} }
