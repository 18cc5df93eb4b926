package cinematic

import "github.com/agentext/simhost/internal/cinematic/keyframe"

// withFPS fills in the queue's default frame rate and asset transformer on
// a shot's params when the caller didn't set them, without mutating the
// caller's original value (params are stored by the queue and may be
// re-read by GetStatus for estimation).
func withFPS(params any, fps float64, transformer keyframe.AssetTransformer) any {
	switch p := params.(type) {
	case keyframe.SmoothMoveParams:
		p.FPS = fpsOr(p.FPS, fps)
		return p
	case keyframe.ArcShotParams:
		p.FPS = fpsOr(p.FPS, fps)
		return p
	case keyframe.OrbitShotParams:
		p.FPS = fpsOr(p.FPS, fps)
		if p.Transformer == nil {
			p.Transformer = transformer
		}
		return p
	case keyframe.DollyShotParams:
		p.FPS = fpsOr(p.FPS, fps)
		return p
	case keyframe.PanTiltShotParams:
		p.FPS = fpsOr(p.FPS, fps)
		return p
	case keyframe.CinematicOrbitParams:
		p.FPS = fpsOr(p.FPS, fps)
		return p
	default:
		return params
	}
}

func fpsOr(existing, fallback float64) float64 {
	if existing > 0 {
		return existing
	}
	return fallback
}
