package cameraapp

import (
	"sync"

	"github.com/agentext/simhost/internal/cinematic/keyframe"
)

// assetRegistry is a minimal in-process stand-in for the scene-builder
// extension's asset store, which lives in a separate process: it answers
// orbit_shot's around-object mode and
// /get_asset_transform with whatever transforms have been registered this
// process, via Register — there is no cross-extension call in this core.
type assetRegistry struct {
	mu      sync.Mutex
	centers map[string]keyframe.Vec3
}

func newAssetRegistry() *assetRegistry {
	return &assetRegistry{centers: make(map[string]keyframe.Vec3)}
}

// Register records path's world-space bounding center.
func (a *assetRegistry) Register(path string, center keyframe.Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.centers[path] = center
}

// GetAssetTransform implements keyframe.AssetTransformer.
func (a *assetRegistry) GetAssetTransform(path string) (keyframe.Vec3, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.centers[path]
	return c, ok
}
