// Command worldbuilder hosts the scene-construction extension: element
// placement, batch creation, and bounds/ground/alignment queries over an
// in-memory scene graph.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/agentext/simhost/internal/boot"
	"github.com/agentext/simhost/internal/config"
	"github.com/agentext/simhost/internal/httpapi"
	"github.com/agentext/simhost/internal/metrics"
	"github.com/agentext/simhost/internal/sceneapp"
)

const extensionName = "worldbuilder"

func main() {
	var app *sceneapp.App

	if err := boot.Run(boot.Options{
		Extension: extensionName,
		BuildRoutes: func(cfg *config.Config, reg *metrics.Registry) httpapi.RouteTable {
			app = sceneapp.New(time.Duration(cfg.DispatchDefaultTimeoutSec*float64(time.Second)),
				cfg.TrackerTTLSeconds, cfg.TrackerCapacity)
			app.Metrics = reg
			return app.Routes()
		},
		HealthExtras: func() map[string]any {
			if app == nil {
				return nil
			}
			return map[string]any{"dispatch_depth": app.Dispatcher.Pending()}
		},
		OpenAPI: func(version config.VersionEntry) map[string]any {
			if app == nil {
				return httpapi.BuildOpenAPI(version.ServiceName, version.Version, nil)
			}
			return httpapi.BuildOpenAPI(version.ServiceName, version.Version, app.Routes())
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
