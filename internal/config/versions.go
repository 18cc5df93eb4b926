package config

import (
	"encoding/json"
	"os"
	"strings"
)

// VersionEntry is one extension's reported identity fields.
type VersionEntry struct {
	Version     string `json:"version"`
	APIVersion  string `json:"api_version"`
	ServiceName string `json:"service_name"`
}

// Versions is the versions.json document: one entry per known extension
// plus a fallback used for unlisted ones.
type Versions struct {
	Default    VersionEntry            `json:"default_version"`
	Extensions map[string]VersionEntry `json:"extensions"`
}

func defaultVersions() Versions {
	return Versions{
		Default: VersionEntry{Version: "0.1.0", APIVersion: "v1", ServiceName: "Agent Extension"},
		Extensions: map[string]VersionEntry{
			"worldbuilder":     {Version: "0.1.0", APIVersion: "v1", ServiceName: "Scene Builder"},
			"cameracontroller": {Version: "0.1.0", APIVersion: "v1", ServiceName: "Camera Controller"},
			"recorder":         {Version: "0.1.0", APIVersion: "v1", ServiceName: "Viewport Recorder"},
			"rtmpstreamer":     {Version: "0.1.0", APIVersion: "v1", ServiceName: "RTMP Streamer"},
			"srtstreamer":      {Version: "0.1.0", APIVersion: "v1", ServiceName: "SRT Streamer"},
		},
	}
}

// LoadVersions reads versions.json (CWD or /etc/agentext/); a missing or
// invalid file falls back to documented defaults.
func LoadVersions() Versions {
	for _, path := range []string{"versions.json", "/etc/agentext/versions.json"} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var v Versions
		if err := json.Unmarshal(data, &v); err != nil {
			continue
		}
		if v.Extensions == nil {
			v.Extensions = map[string]VersionEntry{}
		}
		return v
	}
	return defaultVersions()
}

// For resolves the version entry for extension, applying
// AGENT_WORLD_VERSION / AGENT_WORLD_<EXT>_VERSION overrides on top of
// the file/default value.
func (v Versions) For(extension string) VersionEntry {
	entry, ok := v.Extensions[extension]
	if !ok {
		entry = v.Default
		if entry.ServiceName == "" {
			entry.ServiceName = extension
		}
	}
	if override := os.Getenv("AGENT_WORLD_" + strings.ToUpper(extension) + "_VERSION"); override != "" {
		entry.Version = override
	} else if override := os.Getenv("AGENT_WORLD_VERSION"); override != "" {
		entry.Version = override
	}
	return entry
}
