package cameraapp

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentext/simhost/internal/cinematic"
	"github.com/agentext/simhost/internal/cinematic/keyframe"
	"github.com/agentext/simhost/internal/dispatch"
	"github.com/agentext/simhost/internal/envelope"
	"github.com/agentext/simhost/internal/httpapi"
	"github.com/agentext/simhost/internal/metrics"
	"github.com/agentext/simhost/internal/tracker"
)

// App is the cameracontroller extension's domain state: the current camera
// pose (mutated only via the main-thread dispatcher, per "Camera/USD
// mutations: exclusively main-thread"), the cinematic queue, and the
// collaborators handlers need (request tracker, asset registry, metrics).
type App struct {
	mu   sync.Mutex
	pose cinematic.Pose

	Dispatcher      *dispatch.Dispatcher
	Tracker         *tracker.Tracker
	Queue           *cinematic.Queue
	Assets          *assetRegistry
	Metrics         *metrics.Registry
	FPS             float64
	DispatchTimeout time.Duration
}

// New builds an App with an idle cinematic queue and the camera parked at
// the origin looking down -Z. trackerTTLSeconds/trackerCapacity configure
// the request tracker (defaults apply when non-positive).
func New(fps float64, dispatchTimeout time.Duration, trackerTTLSeconds, trackerCapacity int) *App {
	assets := newAssetRegistry()
	return &App{
		Dispatcher:      dispatch.New(0),
		Tracker:         tracker.New(trackerTTLSeconds, trackerCapacity),
		Queue:           cinematic.New(assets),
		Assets:          assets,
		FPS:             fps,
		DispatchTimeout: dispatchTimeout,
		pose:            cinematic.Pose{Position: keyframe.Vec3{0, 0, 0}, Target: keyframe.Vec3{0, 0, -1}},
	}
}

// ApplyPose is the tick.Integration Apply closure: the cinematic queue
// invokes it each tick with the interpolated pose.
func (a *App) ApplyPose(p cinematic.Pose) {
	a.mu.Lock()
	a.pose = p
	a.mu.Unlock()
}

func (a *App) currentPose() cinematic.Pose {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pose
}

// Routes builds the cameracontroller route table ("Camera" routes).
func (a *App) Routes() httpapi.RouteTable {
	return httpapi.RouteTable{
		"/camera/status":            {Handler: a.Status, Methods: []string{"GET"}},
		"/camera/set_position":      {Handler: a.SetPosition, Methods: []string{"POST"}},
		"/camera/frame_object":      {Handler: a.FrameObject, Methods: []string{"POST"}},
		"/camera/orbit":             {Handler: a.Orbit, Methods: []string{"POST"}},
		"/camera/smooth_move":       {Handler: a.queueHandler("smooth_move"), Methods: []string{"POST"}},
		"/camera/arc_shot":          {Handler: a.queueHandler("arc_shot"), Methods: []string{"POST"}},
		"/camera/orbit_shot":        {Handler: a.queueHandler("orbit_shot"), Methods: []string{"POST"}},
		"/camera/dolly_shot":        {Handler: a.queueHandler("dolly_shot"), Methods: []string{"POST"}},
		"/camera/pan_tilt_shot":     {Handler: a.queueHandler("pan_tilt_shot"), Methods: []string{"POST"}},
		"/camera/cinematic_orbit":   {Handler: a.queueHandler("cinematic_orbit"), Methods: []string{"POST"}},
		"/camera/stop_movement":     {Handler: a.StopMovement, Methods: []string{"POST"}},
		"/camera/movement_status":   {Handler: a.MovementStatus, Methods: []string{"GET"}},
		"/camera/shot_queue_status": {Handler: a.ShotQueueStatus, Methods: []string{"GET"}},
		"/camera/queue/play":        {Handler: a.queueControl(a.Queue.Play), Methods: []string{"POST"}},
		"/camera/queue/pause":       {Handler: a.queueControl(a.Queue.Pause), Methods: []string{"POST"}},
		"/camera/queue/stop":        {Handler: a.queueControl(a.Queue.Stop), Methods: []string{"POST"}},
		"/get_asset_transform":      {Handler: a.GetAssetTransform, Methods: []string{"GET"}},
		"/request_status":           {Handler: a.RequestStatus, Methods: []string{"GET"}},
	}
}

// Status implements GET /camera/status: the current interpolated pose.
func (a *App) Status(method string, data map[string]any) (map[string]any, error) {
	p := a.currentPose()
	return map[string]any{
		"position": vec3JSON(p.Position),
		"target":   vec3JSON(p.Target),
	}, nil
}

// SetPosition implements POST /camera/set_position: an immediate
// main-thread pose assignment, outside the cinematic queue.
func (a *App) SetPosition(method string, data map[string]any) (map[string]any, error) {
	pos, err := toVec3(data, "position")
	if err != nil {
		return nil, err
	}
	target, err := toVec3Ptr(data, "target")
	if err != nil {
		return nil, err
	}

	result, err := a.Dispatcher.RunOnMain(func() (any, error) {
		newPose := cinematic.Pose{Position: pos, Target: pos.Add(keyframe.Vec3{0, 0, -1})}
		if target != nil {
			newPose.Target = *target
		} else {
			a.mu.Lock()
			newPose.Target = a.pose.Target
			a.mu.Unlock()
		}
		a.ApplyPose(newPose)
		return newPose, nil
	}, a.DispatchTimeout)
	if err != nil {
		return nil, err
	}

	p := result.(cinematic.Pose)
	return map[string]any{"position": vec3JSON(p.Position), "target": vec3JSON(p.Target)}, nil
}

// FrameObject implements POST /camera/frame_object: position the camera to
// look at a registered asset's bounding center from a fixed standoff
// distance.
func (a *App) FrameObject(method string, data map[string]any) (map[string]any, error) {
	targetObject, err := toString(data, "target_object")
	if err != nil {
		return nil, err
	}
	distance := toFloatOr(data, "distance", 10.0)

	center, ok := a.Assets.GetAssetTransform(targetObject)
	if !ok {
		return nil, envelope.NotFound("unknown asset: " + targetObject)
	}

	result, err := a.Dispatcher.RunOnMain(func() (any, error) {
		pos := center.Add(keyframe.Vec3{0, distance * 0.35, distance})
		newPose := cinematic.Pose{Position: pos, Target: center}
		a.ApplyPose(newPose)
		return newPose, nil
	}, a.DispatchTimeout)
	if err != nil {
		return nil, err
	}

	p := result.(cinematic.Pose)
	return map[string]any{"position": vec3JSON(p.Position), "target": vec3JSON(p.Target)}, nil
}

// Orbit implements POST /camera/orbit: an immediate single-pose orbit
// placement (as distinct from the queued orbit_shot movement).
func (a *App) Orbit(method string, data map[string]any) (map[string]any, error) {
	center, err := toVec3Ptr(data, "center")
	if err != nil {
		return nil, err
	}
	c := keyframe.Vec3{}
	if center != nil {
		c = *center
	}
	radius := toFloatOr(data, "radius", 10.0)
	elevation := toFloatOr(data, "elevation", 2.0)
	azimuthDeg := toFloatOr(data, "azimuth_deg", 0.0)

	az := azimuthDeg * math.Pi / 180
	pos := keyframe.Vec3{
		c[0] + radius*math.Cos(az),
		c[1] + radius*math.Sin(az),
		c[2] + elevation,
	}

	result, err := a.Dispatcher.RunOnMain(func() (any, error) {
		newPose := cinematic.Pose{Position: pos, Target: c}
		a.ApplyPose(newPose)
		return newPose, nil
	}, a.DispatchTimeout)
	if err != nil {
		return nil, err
	}

	p := result.(cinematic.Pose)
	return map[string]any{"position": vec3JSON(p.Position), "target": vec3JSON(p.Target)}, nil
}

// queueHandler builds a handler for one of the six queued shot
// operations: parse operation-specific params, enqueue, and return the
// generated movement id.
func (a *App) queueHandler(operation string) httpapi.Handler {
	return func(method string, data map[string]any) (map[string]any, error) {
		params, err := buildParams(operation, data)
		if err != nil {
			return nil, err
		}
		id, err := a.Queue.AddMovement(operation, params)
		if err != nil {
			return nil, envelope.Domain(envelope.CodeQueueUnavailable, err.Error(), nil)
		}
		if a.Metrics != nil {
			a.Metrics.IncEvent("movements_queued")
		}
		return map[string]any{"movement_id": id, "operation": operation}, nil
	}
}

// queueControl adapts a zero-argument queue state-transition method (Play,
// Pause, Stop) into an httpapi.Handler.
func (a *App) queueControl(fn func() error) httpapi.Handler {
	return func(method string, data map[string]any) (map[string]any, error) {
		if err := fn(); err != nil {
			return nil, envelope.Domain(envelope.CodeQueueUnavailable, err.Error(), nil)
		}
		return map[string]any{"state": string(a.Queue.GetStatus(time.Now(), a.FPS).State)}, nil
	}
}

// StopMovement implements POST /camera/stop_movement: clears
// the queue and discards the active movement without applying a final
// keyframe.
func (a *App) StopMovement(method string, data map[string]any) (map[string]any, error) {
	if err := a.Queue.Stop(); err != nil {
		return nil, envelope.Domain(envelope.CodeQueueUnavailable, err.Error(), nil)
	}
	return map[string]any{"state": "stopped"}, nil
}

// MovementStatus implements GET /camera/movement_status: the active
// movement's progress, if any.
func (a *App) MovementStatus(method string, data map[string]any) (map[string]any, error) {
	status := a.Queue.GetStatus(time.Now(), a.FPS)
	if status.Active == nil {
		return map[string]any{"active": nil, "state": string(status.State)}, nil
	}
	return map[string]any{
		"active": map[string]any{
			"movement_id":       status.Active.MovementID,
			"operation":         status.Active.Operation,
			"progress":          status.Active.Progress,
			"remaining_seconds": status.Active.RemainingSeconds,
		},
		"state": string(status.State),
	}, nil
}

// ShotQueueStatus implements GET /camera/shot_queue_status: full
// effective state, active/queued detail, and the
// total-remaining-duration rollup.
func (a *App) ShotQueueStatus(method string, data map[string]any) (map[string]any, error) {
	status := a.Queue.GetStatus(time.Now(), a.FPS)
	queued := make([]map[string]any, len(status.Queued))
	for i, q := range status.Queued {
		queued[i] = map[string]any{
			"movement_id":                    q.MovementID,
			"operation":                      q.Operation,
			"estimated_duration_seconds":     q.EstimatedDuration,
			"estimated_start_offset_seconds": q.EstimatedStartOffset,
		}
	}
	out := map[string]any{
		"state":                            string(status.State),
		"queued":                           queued,
		"total_remaining_duration_seconds": status.TotalRemainingDuration,
	}
	if status.Active != nil {
		out["active"] = map[string]any{
			"movement_id":       status.Active.MovementID,
			"operation":         status.Active.Operation,
			"progress":          status.Active.Progress,
			"remaining_seconds": status.Active.RemainingSeconds,
		}
	}
	return out, nil
}

// GetAssetTransform implements GET /get_asset_transform: looks up a
// registered asset's bounding center by path.
func (a *App) GetAssetTransform(method string, data map[string]any) (map[string]any, error) {
	path, err := toString(data, "path")
	if err != nil {
		return nil, err
	}
	center, ok := a.Assets.GetAssetTransform(path)
	if !ok {
		return nil, envelope.NotFound("unknown asset: " + path)
	}
	return map[string]any{"path": path, "center": vec3JSON(center)}, nil
}

// RequestStatus implements GET /request_status: looks up a previously
// tracked asynchronous request by id.
func (a *App) RequestStatus(method string, data map[string]any) (map[string]any, error) {
	id, err := toString(data, "request_id")
	if err != nil {
		return nil, err
	}
	rec, err := a.Tracker.Get(id)
	if err != nil {
		return nil, envelope.NotFound(err.Error())
	}
	out := map[string]any{
		"request_id": rec.RequestID,
		"operation":  rec.Operation,
		"completed":  rec.Completed,
	}
	if rec.Completed {
		if rec.Err != nil {
			out["error"] = rec.Err.Error()
		} else {
			out["result"] = rec.Result
		}
	}
	return out, nil
}

// TrackAsync records a fire-and-forget request and returns its generated
// id, for handlers that answer immediately but complete the real work on
// the main thread later.
func (a *App) TrackAsync(operation string, params map[string]any) string {
	id := uuid.New().String()
	a.Tracker.Add(id, operation, params)
	return id
}
