// Command srtstreamer hosts the SRT live-streaming extension.
package main

import (
	"fmt"
	"os"

	"github.com/agentext/simhost/internal/boot"
	"github.com/agentext/simhost/internal/config"
	"github.com/agentext/simhost/internal/httpapi"
	"github.com/agentext/simhost/internal/metrics"
	"github.com/agentext/simhost/internal/streamerapp"
)

const extensionName = "srtstreamer"

func main() {
	var app *streamerapp.App

	if err := boot.Run(boot.Options{
		Extension: extensionName,
		BuildRoutes: func(cfg *config.Config, reg *metrics.Registry) httpapi.RouteTable {
			app = streamerapp.New("srt", cfg.StreamHost, cfg.StreamKey, cfg.StreamPort)
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
