package httpapi

import "testing"

func TestBuildOpenAPIDocumentsExtensionRoutes(t *testing.T) {
	routes := RouteTable{
		"/camera/smooth_move": {Methods: []string{"POST"}},
		"/camera/status":      {Methods: []string{"GET"}},
	}

	doc := BuildOpenAPI("Camera Controller", "0.1.0", routes)

	if _, ok := doc["openapi"]; !ok {
		t.Fatalf("doc missing openapi field: %v", doc)
	}
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		t.Fatalf("doc[paths] is not a map: %v", doc["paths"])
	}

	for _, path := range []string{"/camera/smooth_move", "/camera/status", "/health", "/metrics.prom"} {
		if _, ok := paths[path]; !ok {
			t.Fatalf("paths missing %q: %v", path, paths)
		}
	}

	smoothMove, ok := paths["/camera/smooth_move"].(map[string]any)
	if !ok {
		t.Fatalf("paths[/camera/smooth_move] is not a map")
	}
	post, ok := smoothMove["post"].(map[string]any)
	if !ok {
		t.Fatalf("smooth_move missing post operation: %v", smoothMove)
	}
	if post["operationId"] != "postCameraSmoothMove" {
		t.Fatalf("operationId = %v; want postCameraSmoothMove", post["operationId"])
	}
}
