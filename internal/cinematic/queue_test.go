package cinematic

import (
	"testing"
	"time"

	"github.com/agentext/simhost/internal/cinematic/keyframe"
)

func smoothMove(start, end keyframe.Vec3) keyframe.SmoothMoveParams {
	return keyframe.SmoothMoveParams{Start: start, End: end}
}

func TestPlayRequiresNonEmptyQueue(t *testing.T) {
	q := New(nil)
	if err := q.Play(); err == nil {
		t.Fatalf("Play() on empty idle queue: error = nil; want error")
	}
}

func TestAddPlayPauseStopTransitions(t *testing.T) {
	q := New(nil)
	if _, err := q.AddMovement("smooth_move", smoothMove(keyframe.Vec3{0, 0, 0}, keyframe.Vec3{10, 0, 0})); err != nil {
		t.Fatalf("AddMovement() error = %v", err)
	}

	if err := q.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if q.state != StateRunning {
		t.Fatalf("state = %v; want running", q.state)
	}

	if err := q.Pause(); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if q.state != StatePaused {
		t.Fatalf("state = %v; want paused", q.state)
	}

	if err := q.Play(); err != nil {
		t.Fatalf("Play() from paused: error = %v", err)
	}

	if err := q.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if q.state != StateStopped {
		t.Fatalf("state = %v; want stopped", q.state)
	}
	if len(q.pending) != 0 || q.active != nil {
		t.Fatalf("Stop() did not clear queue: pending=%v active=%v", q.pending, q.active)
	}
}

func TestPlayAfterStopResumesWithNewItems(t *testing.T) {
	q := New(nil)
	if _, err := q.AddMovement("smooth_move", smoothMove(keyframe.Vec3{0, 0, 0}, keyframe.Vec3{10, 0, 0})); err != nil {
		t.Fatalf("AddMovement() error = %v", err)
	}
	if err := q.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := q.Play(); err == nil {
		t.Fatalf("Play() on empty stopped queue: error = nil; want error")
	}

	if _, err := q.AddMovement("smooth_move", smoothMove(keyframe.Vec3{0, 0, 0}, keyframe.Vec3{5, 0, 0})); err != nil {
		t.Fatalf("AddMovement() error = %v", err)
	}
	if err := q.Play(); err != nil {
		t.Fatalf("Play() from stopped with items queued: error = %v", err)
	}
	if q.state != StateRunning {
		t.Fatalf("state = %v; want running", q.state)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	q := New(nil)
	if err := q.Stop(); err != nil {
		t.Fatalf("Stop() on idle queue: error = %v", err)
	}
	if err := q.Stop(); err != nil {
		t.Fatalf("second Stop(): error = %v", err)
	}
}

func TestAddMovementRejectsOverCapacity(t *testing.T) {
	q := New(nil)
	for i := 0; i < Capacity; i++ {
		if _, err := q.AddMovement("smooth_move", smoothMove(keyframe.Vec3{}, keyframe.Vec3{1, 0, 0})); err != nil {
			t.Fatalf("AddMovement() #%d error = %v", i, err)
		}
	}
	if _, err := q.AddMovement("smooth_move", smoothMove(keyframe.Vec3{}, keyframe.Vec3{1, 0, 0})); err == nil {
		t.Fatalf("AddMovement() beyond capacity: error = nil; want error")
	}
}

func TestRemoveMovementUnknownID(t *testing.T) {
	q := New(nil)
	if err := q.RemoveMovement("missing"); err == nil {
		t.Fatalf("RemoveMovement() of unknown id: error = nil; want error")
	}
}

func TestTickStartsAndCompletesMovement(t *testing.T) {
	q := New(nil)
	if _, err := q.AddMovement("smooth_move", smoothMove(keyframe.Vec3{0, 0, 0}, keyframe.Vec3{10, 0, 0})); err != nil {
		t.Fatalf("AddMovement() error = %v", err)
	}
	if err := q.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	start := time.Now()
	var lastPose Pose
	applied := 0
	q.Tick(start, keyframe.DefaultFPS, func(p Pose) { lastPose = p; applied++ })
	if applied != 1 {
		t.Fatalf("Tick() apply call count = %d; want 1", applied)
	}
	if q.active == nil {
		t.Fatalf("active movement not started after first Tick()")
	}

	// duration ~= 1s (distance 10 / default speed 10); advance past it.
	q.Tick(start.Add(2*time.Second), keyframe.DefaultFPS, func(p Pose) { lastPose = p; applied++ })
	if q.active != nil {
		t.Fatalf("active movement still set after completion tick")
	}
	if lastPose.Position != (keyframe.Vec3{10, 0, 0}) {
		t.Fatalf("final pose position = %v; want end position", lastPose.Position)
	}
}

func TestGetStatusEffectiveStateInference(t *testing.T) {
	q := New(nil)
	if _, err := q.AddMovement("smooth_move", smoothMove(keyframe.Vec3{}, keyframe.Vec3{1, 0, 0})); err != nil {
		t.Fatalf("AddMovement() error = %v", err)
	}

	status := q.GetStatus(time.Now(), keyframe.DefaultFPS)
	if status.State != "pending" {
		t.Fatalf("GetStatus().State = %v; want pending (idle with items queued)", status.State)
	}
	if len(status.Queued) != 1 {
		t.Fatalf("GetStatus().Queued = %v; want 1 entry", status.Queued)
	}
}

func TestGetStatusRunningWithNoWorkReportsIdle(t *testing.T) {
	q := New(nil)
	q.state = StateRunning
	status := q.GetStatus(time.Now(), keyframe.DefaultFPS)
	if status.State != StateIdle {
		t.Fatalf("GetStatus().State = %v; want idle (running with nothing queued or active)", status.State)
	}
}
