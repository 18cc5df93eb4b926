package sceneapp

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/agentext/simhost/internal/dispatch"
	"github.com/agentext/simhost/internal/envelope"
	"github.com/agentext/simhost/internal/httpapi"
	"github.com/agentext/simhost/internal/metrics"
	"github.com/agentext/simhost/internal/reqdecode"
	"github.com/agentext/simhost/internal/tracker"
)

// App is the worldbuilder extension's domain state.
type App struct {
	Scene           *Scene
	Dispatcher      *dispatch.Dispatcher
	Tracker         *tracker.Tracker
	Metrics         *metrics.Registry
	DispatchTimeout time.Duration
}

// New builds an App with an empty scene.
func New(dispatchTimeout time.Duration, trackerTTLSeconds, trackerCapacity int) *App {
	return &App{
		Scene:           newScene(),
		Dispatcher:      dispatch.New(0),
		Tracker:         tracker.New(trackerTTLSeconds, trackerCapacity),
		DispatchTimeout: dispatchTimeout,
	}
}

// Routes builds the worldbuilder route table ("World" routes).
func (a *App) Routes() httpapi.RouteTable {
	return httpapi.RouteTable{
		"/add_element":                 {Handler: a.AddElement, Methods: []string{"POST"}},
		"/create_batch":                {Handler: a.CreateBatch, Methods: []string{"POST"}},
		"/remove_element":              {Handler: a.RemoveElement, Methods: []string{"POST"}},
		"/clear_path":                  {Handler: a.ClearPath, Methods: []string{"POST"}},
		"/get_scene":                   {Handler: a.GetScene, Methods: []string{"GET"}},
		"/scene_status":                {Handler: a.SceneStatus, Methods: []string{"GET"}},
		"/list_elements":               {Handler: a.ListElements, Methods: []string{"GET"}},
		"/place_asset":                 {Handler: a.PlaceAsset, Methods: []string{"POST"}},
		"/transform_asset":             {Handler: a.TransformAsset, Methods: []string{"POST"}},
		"/batch_info":                  {Handler: a.BatchInfo, Methods: []string{"GET"}},
		"/clear_batch":                 {Handler: a.ClearBatch, Methods: []string{"POST"}},
		"/request_status":              {Handler: a.RequestStatus, Methods: []string{"GET"}},
		"/query/objects_by_type":       {Handler: a.QueryObjectsByType, Methods: []string{"GET"}},
		"/query/objects_in_bounds":     {Handler: a.QueryObjectsInBounds, Methods: []string{"GET"}},
		"/query/objects_near_point":    {Handler: a.QueryObjectsNearPoint, Methods: []string{"GET"}},
		"/transform/calculate_bounds":  {Handler: a.CalculateBounds, Methods: []string{"POST"}},
		"/transform/find_ground_level": {Handler: a.FindGroundLevel, Methods: []string{"POST"}},
		"/transform/align_objects":     {Handler: a.AlignObjects, Methods: []string{"POST"}},
	}
}

func elementJSON(e *Element) map[string]any {
	return map[string]any{
		"id":       e.ID,
		"type":     e.Type,
		"path":     e.Path,
		"position": vec3JSON(e.Position),
		"rotation": vec3JSON(e.Rotation),
		"scale":    vec3JSON(e.Scale),
		"batch_id": e.BatchID,
	}
}

func vec3JSON(v reqdecode.Vec3) []float64 { return []float64{v[0], v[1], v[2]} }

func decodeElement(data map[string]any, batchID string) (*Element, error) {
	elementType, err := reqdecode.String(data, "type")
	if err != nil {
		return nil, err
	}
	path, err := reqdecode.String(data, "path")
	if err != nil {
		return nil, err
	}
	position, err := reqdecode.VecOr(data, "position", reqdecode.Vec3{})
	if err != nil {
		return nil, err
	}
	rotation, err := reqdecode.VecOr(data, "rotation", reqdecode.Vec3{})
	if err != nil {
		return nil, err
	}
	scale, err := reqdecode.VecOr(data, "scale", reqdecode.Vec3{1, 1, 1})
	if err != nil {
		return nil, err
	}
	return &Element{
		ID: uuid.New().String(), Type: elementType, Path: path,
		Position: position, Rotation: rotation, Scale: scale, BatchID: batchID,
	}, nil
}

// AddElement implements POST /add_element: place a single element on the
// main thread.
func (a *App) AddElement(method string, data map[string]any) (map[string]any, error) {
	e, err := decodeElement(data, "")
	if err != nil {
		return nil, err
	}
	_, err = a.Dispatcher.RunOnMain(func() (any, error) {
		a.Scene.add(e)
		return nil, nil
	}, a.DispatchTimeout)
	if err != nil {
		return nil, err
	}
	if a.Metrics != nil {
		a.Metrics.IncEvent("elements_added")
	}
	return elementJSON(e), nil
}

// CreateBatch implements POST /create_batch: place every element in
// "elements" under one newly generated batch id, atomically with respect
// to the main thread.
func (a *App) CreateBatch(method string, data map[string]any) (map[string]any, error) {
	raw, ok := data["elements"].([]any)
	if !ok || len(raw) == 0 {
		return nil, envelope.Validation("elements must be a non-empty list", nil)
	}

	batchID := uuid.New().String()
	elements := make([]*Element, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, envelope.Validation("each element must be an object", nil)
		}
		e, err := decodeElement(m, batchID)
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}

	_, err := a.Dispatcher.RunOnMain(func() (any, error) {
		for _, e := range elements {
			a.Scene.add(e)
		}
		return nil, nil
	}, a.DispatchTimeout)
	if err != nil {
		return nil, err
	}
	if a.Metrics != nil {
		a.Metrics.IncEvent("batches_created")
	}

	ids := make([]string, len(elements))
	for i, e := range elements {
		ids[i] = e.ID
	}
	return map[string]any{"batch_id": batchID, "element_ids": ids, "count": len(ids)}, nil
}

// RemoveElement implements POST /remove_element.
func (a *App) RemoveElement(method string, data map[string]any) (map[string]any, error) {
	id, err := reqdecode.String(data, "id")
	if err != nil {
		return nil, err
	}
	result, err := a.Dispatcher.RunOnMain(func() (any, error) {
		return a.Scene.remove(id), nil
	}, a.DispatchTimeout)
	if err != nil {
		return nil, err
	}
	removed := result.(bool)
	if !removed {
		return nil, envelope.NotFound("unknown element: " + id)
	}
	return map[string]any{"id": id, "removed": true}, nil
}

// ClearPath implements POST /clear_path: remove every element whose path
// starts with the given prefix.
func (a *App) ClearPath(method string, data map[string]any) (map[string]any, error) {
	prefix, err := reqdecode.String(data, "path")
	if err != nil {
		return nil, err
	}
	result, err := a.Dispatcher.RunOnMain(func() (any, error) {
		return a.Scene.removeByPathPrefix(prefix), nil
	}, a.DispatchTimeout)
	if err != nil {
		return nil, err
	}
	return map[string]any{"path": prefix, "removed": result.(int)}, nil
}

// GetScene implements GET /get_scene: the full element list.
func (a *App) GetScene(method string, data map[string]any) (map[string]any, error) {
	elements := a.Scene.all()
	out := make([]map[string]any, len(elements))
	for i, e := range elements {
		out[i] = elementJSON(e)
	}
	return map[string]any{"elements": out, "count": len(out)}, nil
}

// SceneStatus implements GET /scene_status: per-type element counts.
func (a *App) SceneStatus(method string, data map[string]any) (map[string]any, error) {
	elements := a.Scene.all()
	byType := make(map[string]int)
	for _, e := range elements {
		byType[e.Type]++
	}
	return map[string]any{"total_elements": len(elements), "by_type": byType}, nil
}

// ListElements implements GET /list_elements, optionally filtered by type.
func (a *App) ListElements(method string, data map[string]any) (map[string]any, error) {
	t := reqdecode.StringOr(data, "type", "")
	var elements []*Element
	if t != "" {
		elements = a.Scene.byType(t)
	} else {
		elements = a.Scene.all()
	}
	out := make([]map[string]any, len(elements))
	for i, e := range elements {
		out[i] = elementJSON(e)
	}
	return map[string]any{"elements": out, "count": len(out)}, nil
}

// PlaceAsset implements POST /place_asset: add_element's semantic twin for
// a pre-authored asset reference (path doubles as the asset reference).
func (a *App) PlaceAsset(method string, data map[string]any) (map[string]any, error) {
	return a.AddElement(method, data)
}

// TransformAsset implements POST /transform_asset: update an existing
// element's position/rotation/scale.
func (a *App) TransformAsset(method string, data map[string]any) (map[string]any, error) {
	id, err := reqdecode.String(data, "id")
	if err != nil {
		return nil, err
	}
	position, err := reqdecode.VecPtr(data, "position")
	if err != nil {
		return nil, err
	}
	rotation, err := reqdecode.VecPtr(data, "rotation")
	if err != nil {
		return nil, err
	}
	scale, err := reqdecode.VecPtr(data, "scale")
	if err != nil {
		return nil, err
	}

	result, err := a.Dispatcher.RunOnMain(func() (any, error) {
		e, ok := a.Scene.get(id)
		if !ok {
			return nil, envelope.NotFound("unknown element: " + id)
		}
		if position != nil {
			e.Position = *position
		}
		if rotation != nil {
			e.Rotation = *rotation
		}
		if scale != nil {
			e.Scale = *scale
		}
		return e, nil
	}, a.DispatchTimeout)
	if err != nil {
		return nil, err
	}
	return elementJSON(result.(*Element)), nil
}

// BatchInfo implements GET /batch_info.
func (a *App) BatchInfo(method string, data map[string]any) (map[string]any, error) {
	batchID, err := reqdecode.String(data, "batch_id")
	if err != nil {
		return nil, err
	}
	elements, ok := a.Scene.batchElements(batchID)
	if !ok {
		return nil, envelope.NotFound("unknown batch: " + batchID)
	}
	out := make([]map[string]any, len(elements))
	for i, e := range elements {
		out[i] = elementJSON(e)
	}
	return map[string]any{"batch_id": batchID, "elements": out, "count": len(out)}, nil
}

// ClearBatch implements POST /clear_batch: remove every element created
// under a batch.
func (a *App) ClearBatch(method string, data map[string]any) (map[string]any, error) {
	batchID, err := reqdecode.String(data, "batch_id")
	if err != nil {
		return nil, err
	}
	result, err := a.Dispatcher.RunOnMain(func() (any, error) {
		return a.Scene.removeBatch(batchID), nil
	}, a.DispatchTimeout)
	if err != nil {
		return nil, err
	}
	return map[string]any{"batch_id": batchID, "removed": result.(int)}, nil
}

// RequestStatus implements GET /request_status.
func (a *App) RequestStatus(method string, data map[string]any) (map[string]any, error) {
	id, err := reqdecode.String(data, "request_id")
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

// QueryObjectsByType implements GET /query/objects_by_type.
func (a *App) QueryObjectsByType(method string, data map[string]any) (map[string]any, error) {
	t, err := reqdecode.String(data, "type")
	if err != nil {
		return nil, err
	}
	elements := a.Scene.byType(t)
	out := make([]map[string]any, len(elements))
	for i, e := range elements {
		out[i] = elementJSON(e)
	}
	return map[string]any{"elements": out, "count": len(out)}, nil
}

// QueryObjectsInBounds implements GET /query/objects_in_bounds.
func (a *App) QueryObjectsInBounds(method string, data map[string]any) (map[string]any, error) {
	min, err := reqdecode.Vec(data, "min")
	if err != nil {
		return nil, err
	}
	max, err := reqdecode.Vec(data, "max")
	if err != nil {
		return nil, err
	}
	elements := a.Scene.inBounds(min, max)
	out := make([]map[string]any, len(elements))
	for i, e := range elements {
		out[i] = elementJSON(e)
	}
	return map[string]any{"elements": out, "count": len(out)}, nil
}

// QueryObjectsNearPoint implements GET /query/objects_near_point.
func (a *App) QueryObjectsNearPoint(method string, data map[string]any) (map[string]any, error) {
	point, err := reqdecode.Vec(data, "point")
	if err != nil {
		return nil, err
	}
	radius, err := reqdecode.Float(data, "radius")
	if err != nil {
		return nil, err
	}
	elements := a.Scene.nearPoint(point, radius)
	out := make([]map[string]any, len(elements))
	for i, e := range elements {
		out[i] = elementJSON(e)
	}
	return map[string]any{"elements": out, "count": len(out)}, nil
}

// CalculateBounds implements POST /transform/calculate_bounds: the
// axis-aligned bounding box of the given element ids, or the whole scene
// when "ids" is omitted.
func (a *App) CalculateBounds(method string, data map[string]any) (map[string]any, error) {
	ids := reqdecode.StringSlice(data, "ids")
	var elements []*Element
	if len(ids) == 0 {
		elements = a.Scene.all()
	} else {
		for _, id := range ids {
			e, ok := a.Scene.get(id)
			if !ok {
				return nil, envelope.NotFound("unknown element: " + id)
			}
			elements = append(elements, e)
		}
	}
	if len(elements) == 0 {
		return map[string]any{"min": vec3JSON(reqdecode.Vec3{}), "max": vec3JSON(reqdecode.Vec3{})}, nil
	}

	min, max := elements[0].Position, elements[0].Position
	for _, e := range elements[1:] {
		for axis := 0; axis < 3; axis++ {
			min[axis] = math.Min(min[axis], e.Position[axis])
			max[axis] = math.Max(max[axis], e.Position[axis])
		}
	}
	return map[string]any{"min": vec3JSON(min), "max": vec3JSON(max)}, nil
}

// FindGroundLevel implements POST /transform/find_ground_level: the lowest
// Z among elements whose X/Y falls within tolerance of the query point,
// falling back to 0 when nothing is nearby (no terrain collaborator is in
// scope here).
func (a *App) FindGroundLevel(method string, data map[string]any) (map[string]any, error) {
	point, err := reqdecode.Vec(data, "point")
	if err != nil {
		return nil, err
	}
	tolerance := reqdecode.FloatOr(data, "tolerance", 1.0)

	groundZ := 0.0
	found := false
	for _, e := range a.Scene.all() {
		dx, dy := e.Position[0]-point[0], e.Position[1]-point[1]
		if math.Sqrt(dx*dx+dy*dy) <= tolerance {
			if !found || e.Position[2] < groundZ {
				groundZ = e.Position[2]
				found = true
			}
		}
	}
	return map[string]any{"ground_level": groundZ, "found": found}, nil
}

// AlignObjects implements POST /transform/align_objects: set one axis
// component to a common value across every listed element, on the main
// thread.
func (a *App) AlignObjects(method string, data map[string]any) (map[string]any, error) {
	ids := reqdecode.StringSlice(data, "ids")
	if len(ids) == 0 {
		return nil, envelope.Validation("ids must be a non-empty list", nil)
	}
	axis, err := reqdecode.String(data, "axis")
	if err != nil {
		return nil, err
	}
	axisIdx := map[string]int{"x": 0, "y": 1, "z": 2}[axis]
	if axis != "x" && axis != "y" && axis != "z" {
		return nil, envelope.Validation("axis must be one of x, y, z", map[string]any{"param": "axis"})
	}
	_, hasValue := data["value"]
	var target float64
	if hasValue {
		target, err = reqdecode.Float(data, "value")
		if err != nil {
			return nil, err
		}
	}

	result, err := a.Dispatcher.RunOnMain(func() (any, error) {
		elements := make([]*Element, 0, len(ids))
		for _, id := range ids {
			e, ok := a.Scene.get(id)
			if !ok {
				return nil, envelope.NotFound("unknown element: " + id)
			}
			elements = append(elements, e)
		}
		if !hasValue {
			sum := 0.0
			for _, e := range elements {
				sum += e.Position[axisIdx]
			}
			target = sum / float64(len(elements))
		}
		for _, e := range elements {
			e.Position[axisIdx] = target
		}
		return elements, nil
	}, a.DispatchTimeout)
	if err != nil {
		return nil, err
	}

	aligned := result.([]*Element)
	out := make([]map[string]any, len(aligned))
	for i, e := range aligned {
		out[i] = elementJSON(e)
	}
	return map[string]any{"axis": axis, "value": target, "elements": out}, nil
}
