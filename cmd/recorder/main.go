// Command recorder hosts the viewport recording extension: video session
// start/stop/status, single-frame capture, and frame cleanup.
package main

import (
	"fmt"
	"os"

	"github.com/agentext/simhost/internal/boot"
	"github.com/agentext/simhost/internal/config"
	"github.com/agentext/simhost/internal/httpapi"
	"github.com/agentext/simhost/internal/metrics"
	"github.com/agentext/simhost/internal/recorderapp"
)

const extensionName = "recorder"

func main() {
	var app *recorderapp.App

	if err := boot.Run(boot.Options{
		Extension: extensionName,
		BuildRoutes: func(cfg *config.Config, reg *metrics.Registry) httpapi.RouteTable {
			app = recorderapp.New()
			app.Metrics = reg
			return app.Routes()
		},
		HealthExtras: func() map[string]any {
			if app == nil {
				return nil
			}
			return app.Session.Status()
		},
		OpenAPI: func(version config.VersionEntry) map[string]any {
			if app == nil {
				return httpapi.BuildOpenAPI(version.ServiceName, version.Version, nil)
			}
			return httpapi.BuildOpenAPI(version.ServiceName, version.Version, app.Routes())
		},
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
