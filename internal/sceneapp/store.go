// Package sceneapp implements the worldbuilder extension's domain
// handlers: scene-graph element placement, batch creation, and the
// bounds/ground/alignment transform queries layered on top, using the
// same main-thread mutation discipline cameraapp uses for the camera.
package sceneapp

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/agentext/simhost/internal/reqdecode"
)

// Element is one placed scene-graph node.
type Element struct {
	ID       string
	Type     string
	Path     string
	Position reqdecode.Vec3
	Rotation reqdecode.Vec3
	Scale    reqdecode.Vec3
	BatchID  string
	Attrs    map[string]any
}

// Scene holds every placed element for one worldbuilder process. All
// mutating methods are invoked from within a Dispatcher.RunOnMain task;
// Scene itself still locks internally so read-side queries can run
// concurrently with the main-thread tick.
type Scene struct {
	mu       sync.Mutex
	elements map[string]*Element
	batches  map[string][]string // batch id -> element ids, insertion order
}

func newScene() *Scene {
	return &Scene{
		elements: make(map[string]*Element),
		batches:  make(map[string][]string),
	}
}

func (s *Scene) add(e *Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[e.ID] = e
	if e.BatchID != "" {
		s.batches[e.BatchID] = append(s.batches[e.BatchID], e.ID)
	}
}

func (s *Scene) get(id string) (*Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elements[id]
	return e, ok
}

func (s *Scene) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elements[id]; !ok {
		return false
	}
	delete(s.elements, id)
	return true
}

// removeByPathPrefix removes every element whose Path starts with prefix
// and returns how many were removed.
func (s *Scene) removeByPathPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.elements {
		if strings.HasPrefix(e.Path, prefix) {
			delete(s.elements, id)
			removed++
		}
	}
	return removed
}

// removeBatch removes every element created under batchID.
func (s *Scene) removeBatch(batchID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, ok := s.batches[batchID]
	if !ok {
		return 0
	}
	removed := 0
	for _, id := range ids {
		if _, ok := s.elements[id]; ok {
			delete(s.elements, id)
			removed++
		}
	}
	delete(s.batches, batchID)
	return removed
}

func (s *Scene) batchElements(batchID string) ([]*Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, ok := s.batches[batchID]
	if !ok {
		return nil, false
	}
	out := make([]*Element, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.elements[id]; ok {
			out = append(out, e)
		}
	}
	return out, true
}

// all returns a stable-ordered snapshot of every element.
func (s *Scene) all() []*Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Element, 0, len(s.elements))
	for _, e := range s.elements {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Scene) byType(t string) []*Element {
	var out []*Element
	for _, e := range s.all() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// inBounds returns elements whose position falls within [min, max] on every
// axis.
func (s *Scene) inBounds(min, max reqdecode.Vec3) []*Element {
	var out []*Element
	for _, e := range s.all() {
		p := e.Position
		if p[0] >= min[0] && p[0] <= max[0] &&
			p[1] >= min[1] && p[1] <= max[1] &&
			p[2] >= min[2] && p[2] <= max[2] {
			out = append(out, e)
		}
	}
	return out
}

// nearPoint returns elements within radius of point, nearest first.
func (s *Scene) nearPoint(point reqdecode.Vec3, radius float64) []*Element {
	type hit struct {
		e    *Element
		dist float64
	}
	var hits []hit
	for _, e := range s.all() {
		d := distance(e.Position, point)
		if d <= radius {
			hits = append(hits, hit{e, d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	out := make([]*Element, len(hits))
	for i, h := range hits {
		out[i] = h.e
	}
	return out
}

func distance(a, b reqdecode.Vec3) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
