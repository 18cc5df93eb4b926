package tick

import (
	"testing"
	"time"

	"github.com/agentext/simhost/internal/cinematic"
	"github.com/agentext/simhost/internal/cinematic/keyframe"
	"github.com/agentext/simhost/internal/dispatch"
	"github.com/agentext/simhost/internal/tracker"
)

func TestTickDrainsDispatcherBeforeApplyingCinematic(t *testing.T) {
	d := dispatch.New(0)
	q := cinematic.New(nil)
	_, err := q.AddMovement("smooth_move", keyframe.SmoothMoveParams{Start: keyframe.Vec3{}, End: keyframe.Vec3{10, 0, 0}})
	if err != nil {
		t.Fatalf("AddMovement() error = %v", err)
	}
	if err := q.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	var applied int
	in := &Integration{Dispatcher: d, Cinematic: q, FPS: keyframe.DefaultFPS, Apply: func(cinematic.Pose) { applied++ }}

	drained := make(chan struct{})
	go func() {
		_, _ = d.RunOnMain(func() (any, error) { return nil, nil }, time.Second)
		close(drained)
	}()

	// Give the dispatcher a moment to enqueue before the tick drains it.
	time.Sleep(10 * time.Millisecond)
	in.Tick(time.Now())

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatalf("RunOnMain() did not complete after Tick() drained the queue")
	}
	if applied != 1 {
		t.Fatalf("Apply() call count = %d; want 1", applied)
	}
}

func TestTickPrunesTrackerOnlyAfterInterval(t *testing.T) {
	tr := tracker.New(1, 10)
	tr.Add("req-1", "op", nil)
	tr.MarkCompleted("req-1", nil, nil)

	// Let the entry outlive its 1s TTL, then tick inside the prune interval.
	start := time.Now()
	in := &Integration{Tracker: tr, lastPrune: start}
	time.Sleep(1100 * time.Millisecond)
	in.Tick(start.Add(pruneEvery / 2))
	if _, err := tr.Get("req-1"); err != nil {
		t.Fatalf("tracker entry pruned before the prune interval elapsed: %v", err)
	}

	in.Tick(start.Add(pruneEvery))
	if _, err := tr.Get("req-1"); err == nil {
		t.Fatalf("expired tracker entry still present once the prune interval elapsed")
	}
}
