// Command cameracontroller hosts the camera + cinematic playback
// extension: direct pose control plus the queued shot generators, driven
// by the shared control-plane runtime.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/agentext/simhost/internal/boot"
	"github.com/agentext/simhost/internal/cameraapp"
	"github.com/agentext/simhost/internal/config"
	"github.com/agentext/simhost/internal/httpapi"
	"github.com/agentext/simhost/internal/metrics"
	"github.com/agentext/simhost/internal/tick"
)

const extensionName = "cameracontroller"

func main() {
	var app *cameraapp.App

	if err := boot.Run(boot.Options{
		Extension: extensionName,
		BuildRoutes: func(cfg *config.Config, reg *metrics.Registry) httpapi.RouteTable {
			app = cameraapp.New(cfg.CinematicDefaultFPS, time.Duration(cfg.DispatchDefaultTimeoutSec*float64(time.Second)),
				cfg.TrackerTTLSeconds, cfg.TrackerCapacity)
			app.Metrics = reg
			return app.Routes()
		},
		HealthExtras: func() map[string]any {
			if app == nil {
				return nil
			}
			return map[string]any{
				"queue_state":    string(app.Queue.GetStatus(time.Now(), app.FPS).State),
				"dispatch_depth": app.Dispatcher.Pending(),
			}
		},
		OpenAPI: func(version config.VersionEntry) map[string]any {
			if app == nil {
				return httpapi.BuildOpenAPI(version.ServiceName, version.Version, nil)
			}
			return httpapi.BuildOpenAPI(version.ServiceName, version.Version, app.Routes())
		},
		// Background runs the cinematic update-tick loop as the second
		// errgroup member alongside the HTTP listener (internal/boot), in
		// place of the extension's own unmonitored ticker goroutine.
		Background: func(stop <-chan struct{}) error {
			integration := &tick.Integration{
				Dispatcher: app.Dispatcher,
				Cinematic:  app.Queue,
				Tracker:    app.Tracker,
				FPS:        app.FPS,
				Apply:      app.ApplyPose,
			}
			tick.Run(integration, time.Second/time.Duration(maxFPS(app.FPS)), stop)
			return nil
		},
		OnShutdown: func() {
			if app != nil {
				app.Dispatcher.Shutdown()
			}
		},
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func maxFPS(fps float64) int {
	if fps <= 0 {
		return 30
	}
	return int(fps)
}
