package cameraapp

import (
	"testing"
	"time"
)

func startDraining(a *App, stop chan struct{}) {
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				a.Dispatcher.Drain()
			}
		}
	}()
}

func newTestApp() *App {
	return New(30, time.Second, 300, 500)
}

func TestSetPositionWithExplicitTarget(t *testing.T) {
	a := newTestApp()
	stop := make(chan struct{})
	startDraining(a, stop)
	defer close(stop)

	out, err := a.SetPosition("POST", map[string]any{
		"position": []any{1.0, 2.0, 3.0},
		"target":   []any{0.0, 0.0, 0.0},
	})
	if err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	pos := out["position"].([]float64)
	if pos[0] != 1 || pos[1] != 2 || pos[2] != 3 {
		t.Fatalf("SetPosition() position = %v; want [1 2 3]", pos)
	}
}

func TestSetPositionRequiresPosition(t *testing.T) {
	a := newTestApp()
	_, err := a.SetPosition("POST", map[string]any{})
	if err == nil {
		t.Fatalf("SetPosition() with no position: error = nil; want validation error")
	}
}

func TestFrameObjectUnknownAsset(t *testing.T) {
	a := newTestApp()
	_, err := a.FrameObject("POST", map[string]any{"target_object": "missing"})
	if err == nil {
		t.Fatalf("FrameObject() with unknown asset: error = nil; want not-found error")
	}
}

func TestFrameObjectUsesRegisteredAsset(t *testing.T) {
	a := newTestApp()
	stop := make(chan struct{})
	startDraining(a, stop)
	defer close(stop)

	a.Assets.Register("/World/thing", [3]float64{5, 5, 0})
	out, err := a.FrameObject("POST", map[string]any{"target_object": "/World/thing"})
	if err != nil {
		t.Fatalf("FrameObject() error = %v", err)
	}
	target := out["target"].([]float64)
	if target[0] != 5 || target[1] != 5 || target[2] != 0 {
		t.Fatalf("FrameObject() target = %v; want [5 5 0]", target)
	}
}

func TestQueueHandlerEnqueuesMovement(t *testing.T) {
	a := newTestApp()
	out, err := a.queueHandler("smooth_move")("POST", map[string]any{
		"start": []any{0.0, 0.0, 0.0},
		"end":   []any{10.0, 0.0, 0.0},
	})
	if err != nil {
		t.Fatalf("queueHandler(smooth_move)() error = %v", err)
	}
	if out["movement_id"] == "" {
		t.Fatalf("queueHandler() movement_id is empty")
	}
}

func TestQueueHandlerRejectsUnknownOperation(t *testing.T) {
	a := newTestApp()
	_, err := a.queueHandler("teleport")("POST", map[string]any{})
	if err == nil {
		t.Fatalf("queueHandler(teleport)() error = nil; want error")
	}
}

func TestShotQueueStatusReflectsPlayState(t *testing.T) {
	a := newTestApp()
	if _, err := a.queueHandler("smooth_move")("POST", map[string]any{
		"start": []any{0.0, 0.0, 0.0}, "end": []any{1.0, 0.0, 0.0},
	}); err != nil {
		t.Fatalf("queueHandler() error = %v", err)
	}

	out, err := a.ShotQueueStatus("GET", nil)
	if err != nil {
		t.Fatalf("ShotQueueStatus() error = %v", err)
	}
	if out["state"] != "pending" {
		t.Fatalf("ShotQueueStatus() state = %v; want pending", out["state"])
	}
}

func TestGetAssetTransformUnknown(t *testing.T) {
	a := newTestApp()
	_, err := a.GetAssetTransform("GET", map[string]any{"path": "nope"})
	if err == nil {
		t.Fatalf("GetAssetTransform() with unknown path: error = nil; want not-found error")
	}
}

func TestRequestStatusUnknownID(t *testing.T) {
	a := newTestApp()
	_, err := a.RequestStatus("GET", map[string]any{"request_id": "nope"})
	if err == nil {
		t.Fatalf("RequestStatus() with unknown id: error = nil; want not-found error")
	}
}
