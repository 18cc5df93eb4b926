// Package tick integrates the main-thread dispatcher and the cinematic
// scheduler with the host's update stream: on every update
// tick, main-thread tasks drain first, then any active camera movement
// advances, then the request tracker prunes stale entries.
package tick

import (
	"time"

	"github.com/agentext/simhost/internal/cinematic"
	"github.com/agentext/simhost/internal/dispatch"
	"github.com/agentext/simhost/internal/tracker"
)

// pruneEvery bounds how often the tracker's periodic prune runs, so a
// busy extension isn't sorting its tracked-request list on every single
// tick.
const pruneEvery = 2 * time.Second

// Integration binds one extension's dispatcher, cinematic queue, and
// request tracker to a single update-tick callback. Extensions
// subscribe Tick to the host's update stream; if no such subscription can
// be created, callers fall back to driving Tick from a ticker goroutine.
type Integration struct {
	Dispatcher *dispatch.Dispatcher
	Cinematic  *cinematic.Queue
	Tracker    *tracker.Tracker
	FPS        float64
	Apply      cinematic.Apply

	lastPrune time.Time
}

// Tick runs one update-tick's work in fixed order: drain main-thread
// tasks, advance the cinematic queue, then prune the request tracker.
func (in *Integration) Tick(now time.Time) {
	if in.Dispatcher != nil {
		in.Dispatcher.Drain()
	}
	if in.Cinematic != nil && in.Apply != nil {
		fps := in.FPS
		if fps <= 0 {
			fps = cinematic.DefaultFPS
		}
		in.Cinematic.Tick(now, fps, in.Apply)
	}
	if in.Tracker != nil && now.Sub(in.lastPrune) >= pruneEvery {
		in.Tracker.Prune()
		in.lastPrune = now
	}
}

// Run drives Tick from a plain ticker at the given cadence, for hosts
// where no native update-stream subscription is available (fallback
// path). It blocks until stop is closed.
func Run(in *Integration, interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case now := <-t.C:
			in.Tick(now)
		case <-stop:
			return
		}
	}
}
