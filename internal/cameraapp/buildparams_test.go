package cameraapp

import (
	"testing"

	"github.com/agentext/simhost/internal/cinematic/keyframe"
)

func TestBuildParamsSmoothMove(t *testing.T) {
	params, err := buildParams("smooth_move", map[string]any{
		"start": []any{0.0, 0.0, 0.0},
		"end":   []any{5.0, 0.0, 0.0},
		"speed": 2.0,
	})
	if err != nil {
		t.Fatalf("buildParams() error = %v", err)
	}
	p, ok := params.(keyframe.SmoothMoveParams)
	if !ok {
		t.Fatalf("buildParams() type = %T; want SmoothMoveParams", params)
	}
	if p.End != (keyframe.Vec3{5, 0, 0}) {
		t.Fatalf("End = %v; want [5 0 0]", p.End)
	}
	if p.Speed != 2.0 {
		t.Fatalf("Speed = %v; want 2.0", p.Speed)
	}
}

func TestBuildParamsUnknownOperation(t *testing.T) {
	_, err := buildParams("nonexistent", map[string]any{})
	if err == nil {
		t.Fatalf("buildParams(nonexistent) error = nil; want error")
	}
}

func TestBuildParamsOrbitShotDefaults(t *testing.T) {
	params, err := buildParams("orbit_shot", map[string]any{})
	if err != nil {
		t.Fatalf("buildParams() error = %v", err)
	}
	p, ok := params.(keyframe.OrbitShotParams)
	if !ok {
		t.Fatalf("buildParams() type = %T; want OrbitShotParams", params)
	}
	if p.Radius != 10.0 {
		t.Fatalf("Radius = %v; want default 10.0", p.Radius)
	}
	if p.EndAzimuthDeg != 360.0 {
		t.Fatalf("EndAzimuthDeg = %v; want default 360.0", p.EndAzimuthDeg)
	}
}

func TestBuildParamsMissingRequiredVector(t *testing.T) {
	_, err := buildParams("dolly_shot", map[string]any{"end": []any{1.0, 2.0, 3.0}})
	if err == nil {
		t.Fatalf("buildParams(dolly_shot) with missing start: error = nil; want error")
	}
}
