package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
)

// The OpenAPI document is computed once and cached for the process
// lifetime; sync.Once guards the concurrent first access.
var (
	openAPIOnce   sync.Once
	openAPICached []byte
)

func openAPISchema() []byte {
	openAPIOnce.Do(func() {
		doc := map[string]any{
			"openapi": "3.0.3",
			"info": map[string]any{
				"title":       "GitRospector API Documentation",
				"version":     "1.0.0",
				"description": "API for analyzing GitHub repositories into code graphs",
			},
			"paths": map[string]any{
				"/": map[string]any{
					"get": map[string]any{
						"summary":   "Service banner",
						"responses": jsonResponse("Service name message"),
					},
				},
				"/analyze": map[string]any{
					"post": map[string]any{
						"summary":     "Clone a GitHub repository and return its code graph",
						"requestBody": analyzeRequestBody(),
						"responses":   jsonResponse("Graph nodes and relationships"),
					},
				},
				"/summarize": map[string]any{
					"post": map[string]any{
						"summary":     "Clone, analyze, and produce an AI narrative of the graph",
						"requestBody": analyzeRequestBody(),
						"responses":   jsonResponse("Natural-language summary"),
					},
				},
				"/analyses/latest": map[string]any{
					"get": map[string]any{
						"summary":   "Recent analysis runs",
						"responses": jsonResponse("Run records, newest first"),
					},
				},
				"/analyses/{id}": map[string]any{
					"get": map[string]any{
						"summary":   "One analysis run by ID",
						"responses": jsonResponse("Run record"),
					},
				},
				"/summary": map[string]any{
					"get": map[string]any{
						"summary":   "Aggregate run outcomes over recent days",
						"responses": jsonResponse("Outcome totals"),
					},
				},
			},
		}
		openAPICached, _ = json.Marshal(doc)
	})
	return openAPICached
}

func analyzeRequestBody() map[string]any {
	return map[string]any{
		"required": true,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{
					"type":     "object",
					"required": []string{"github_url"},
					"properties": map[string]any{
						"github_url": map[string]any{
							"type":    "string",
							"example": "https://github.com/acme/widgets.git",
						},
					},
				},
			},
		},
	}
}

func jsonResponse(description string) map[string]any {
	return map[string]any{
		"200": map[string]any{"description": description},
	}
}

func openAPIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(openAPISchema())
}

const swaggerUIPage = `<!DOCTYPE html>
<html>
<head>
  <title>GitRospector API - Swagger UI</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({
  url: "/openapi.json",
  dom_id: "#swagger-ui",
  deepLinking: true,
  displayRequestDuration: true,
  docExpansion: "none",
  filter: true
});
</script>
</body>
</html>`

const redocPage = `<!DOCTYPE html>
<html>
<head>
  <title>GitRospector API - ReDoc</title>
</head>
<body>
<redoc spec-url="/openapi.json"></redoc>
<script src="https://cdn.jsdelivr.net/npm/redoc@2.0.0/bundles/redoc.standalone.js"></script>
</body>
</html>`

func swaggerUIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(swaggerUIPage))
}

func redocHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(redocPage))
}
