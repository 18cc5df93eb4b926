package sceneapp

import (
	"testing"

	"github.com/agentext/simhost/internal/reqdecode"
)

func TestSceneAddGetRemove(t *testing.T) {
	s := newScene()
	e := &Element{ID: "a", Type: "cube", Path: "/World/a"}
	s.add(e)

	got, ok := s.get("a")
	if !ok || got.Type != "cube" {
		t.Fatalf("get() = %v, %v; want cube element", got, ok)
	}

	if !s.remove("a") {
		t.Fatalf("remove() = false; want true")
	}
	if _, ok := s.get("a"); ok {
		t.Fatalf("element still present after remove")
	}
	if s.remove("a") {
		t.Fatalf("remove() of already-removed id = true; want false")
	}
}

func TestSceneRemoveByPathPrefix(t *testing.T) {
	s := newScene()
	s.add(&Element{ID: "1", Path: "/World/props/chair"})
	s.add(&Element{ID: "2", Path: "/World/props/table"})
	s.add(&Element{ID: "3", Path: "/World/lights/key"})

	removed := s.removeByPathPrefix("/World/props")
	if removed != 2 {
		t.Fatalf("removed = %d; want 2", removed)
	}
	if len(s.all()) != 1 {
		t.Fatalf("remaining = %d; want 1", len(s.all()))
	}
}

func TestSceneBatchLifecycle(t *testing.T) {
	s := newScene()
	s.add(&Element{ID: "1", BatchID: "b1"})
	s.add(&Element{ID: "2", BatchID: "b1"})
	s.add(&Element{ID: "3", BatchID: "b2"})

	elems, ok := s.batchElements("b1")
	if !ok || len(elems) != 2 {
		t.Fatalf("batchElements(b1) = %v, %v; want 2 elements", elems, ok)
	}

	removed := s.removeBatch("b1")
	if removed != 2 {
		t.Fatalf("removeBatch = %d; want 2", removed)
	}
	if _, ok := s.batchElements("b1"); ok {
		t.Fatalf("batch b1 still exists after removal")
	}
	if len(s.all()) != 1 {
		t.Fatalf("remaining = %d; want 1", len(s.all()))
	}
}

func TestSceneByType(t *testing.T) {
	s := newScene()
	s.add(&Element{ID: "1", Type: "cube"})
	s.add(&Element{ID: "2", Type: "sphere"})
	s.add(&Element{ID: "3", Type: "cube"})

	cubes := s.byType("cube")
	if len(cubes) != 2 {
		t.Fatalf("byType(cube) = %d; want 2", len(cubes))
	}
}

func TestSceneInBounds(t *testing.T) {
	s := newScene()
	s.add(&Element{ID: "inside", Position: reqdecode.Vec3{1, 1, 1}})
	s.add(&Element{ID: "outside", Position: reqdecode.Vec3{10, 10, 10}})

	hits := s.inBounds(reqdecode.Vec3{0, 0, 0}, reqdecode.Vec3{5, 5, 5})
	if len(hits) != 1 || hits[0].ID != "inside" {
		t.Fatalf("inBounds = %v; want just 'inside'", hits)
	}
}

func TestSceneNearPointOrdersByDistance(t *testing.T) {
	s := newScene()
	s.add(&Element{ID: "far", Position: reqdecode.Vec3{5, 0, 0}})
	s.add(&Element{ID: "near", Position: reqdecode.Vec3{1, 0, 0}})

	hits := s.nearPoint(reqdecode.Vec3{0, 0, 0}, 10)
	if len(hits) != 2 || hits[0].ID != "near" || hits[1].ID != "far" {
		t.Fatalf("nearPoint order = %v; want near before far", hits)
	}

	within := s.nearPoint(reqdecode.Vec3{0, 0, 0}, 2)
	if len(within) != 1 || within[0].ID != "near" {
		t.Fatalf("nearPoint(radius=2) = %v; want just 'near'", within)
	}
}

func TestSceneAllIsSortedByID(t *testing.T) {
	s := newScene()
	s.add(&Element{ID: "c"})
	s.add(&Element{ID: "a"})
	s.add(&Element{ID: "b"})

	all := s.all()
	if len(all) != 3 || all[0].ID != "a" || all[1].ID != "b" || all[2].ID != "c" {
		t.Fatalf("all() = %v; want sorted a,b,c", all)
	}
}
