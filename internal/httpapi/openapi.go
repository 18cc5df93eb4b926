package httpapi

import "strings"

// standardPaths are the fixed endpoints every extension mounts (mountStandardRoutes),
// documented here so BuildOpenAPI's output covers the full surface a caller can hit,
// not just the extension-specific routes.
var standardPaths = RouteTable{
	"/health":       {Methods: []string{"GET"}},
	"/metrics":      {Methods: []string{"GET"}},
	"/metrics.json": {Methods: []string{"GET"}},
	"/metrics.prom": {Methods: []string{"GET"}},
	"/docs":         {Methods: []string{"GET"}},
	"/openapi.json": {Methods: []string{"GET"}},
	"/status":       {Methods: []string{"GET"}},
	"/ping":         {Methods: []string{"GET"}},
}

// BuildOpenAPI assembles an OpenAPI 3.0 document from an extension's actual
// route table plus the standard endpoints every extension mounts, so the
// "paths" object reflects what is really routable. Every path gets one operation
// entry per allowed method with a stable operationId and the envelope's
// success/error response shapes.
func BuildOpenAPI(title, version string, routes RouteTable) map[string]any {
	paths := make(map[string]any, len(routes)+len(standardPaths))
	for path, route := range mergeRoutes(standardPaths, routes) {
		paths[path] = pathItem(path, route.Methods)
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   title,
			"version": version,
		},
		"paths": paths,
		"components": map[string]any{
			"schemas": map[string]any{
				"SuccessResponse": map[string]any{
					"type":       "object",
					"properties": map[string]any{"success": map[string]any{"type": "boolean"}},
				},
				"ErrorResponse": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"success":    map[string]any{"type": "boolean"},
						"error":      map[string]any{"type": "string"},
						"error_code": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

func mergeRoutes(tables ...RouteTable) RouteTable {
	merged := make(RouteTable)
	for _, t := range tables {
		for path, route := range t {
			merged[path] = route
		}
	}
	return merged
}

func pathItem(path string, methods []string) map[string]any {
	if len(methods) == 0 {
		methods = []string{"GET"}
	}
	item := make(map[string]any, len(methods))
	for _, method := range methods {
		item[strings.ToLower(method)] = map[string]any{
			"operationId": operationID(method, path),
			"responses": map[string]any{
				"200": map[string]any{
					"description": "Success",
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": map[string]any{"$ref": "#/components/schemas/SuccessResponse"},
						},
					},
				},
				"400": errorResponse("Validation error"),
				"401": errorResponse("Unauthorized"),
				"500": errorResponse("Operation failed"),
			},
		}
	}
	return item
}

func errorResponse(description string) map[string]any {
	return map[string]any{
		"description": description,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
			},
		},
	}
}

// operationID turns "POST /camera/smooth_move" into "postCameraSmoothMove".
func operationID(method, path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '_' || r == '.' })
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
