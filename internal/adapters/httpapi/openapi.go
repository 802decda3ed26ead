package httpapi

import (
	"net/http"

	"github.com/jgarza-dev/UT-Registration-Watcher/internal/httpjson"
)

// handleOpenAPI renvoie une spec OpenAPI minimale (placeholder) pour cadrer l'API.
// Elle sera enrichie au fil des jalons.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	jsonOK := func(schemaRef string) map[string]any {
		return map[string]any{
			"description": "OK",
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": schemaRef},
				},
			},
		}
	}

	jsonErr := map[string]any{
		"description": "Error",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/Error"},
			},
		},
	}

	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "URW API",
			"version": "v1",
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"Error": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error": map[string]any{"type": "string"},
					},
					"required": []any{"error"},
				},
				"Course": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":            map[string]any{"type": "string"},
						"semester":      map[string]any{"type": "string"},
						"code":          map[string]any{"type": "string"},
						"label":         map[string]any{"type": "string"},
						"url":           map[string]any{"type": "string"},
						"lastStatus":    map[string]any{"type": "string"},
						"nextCheckAt":   map[string]any{"type": "string", "format": "date-time"},
						"lastCheckedAt": map[string]any{"type": "string", "format": "date-time"},
						"createdAt":     map[string]any{"type": "string", "format": "date-time"},
						"updatedAt":     map[string]any{"type": "string", "format": "date-time"},
					},
				},
				"CheckResult": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"course":  map[string]any{"$ref": "#/components/schemas/Course"},
						"status":  map[string]any{"type": "string"},
						"alerted": map[string]any{"type": "boolean"},
					},
				},
				"Alert": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":         map[string]any{"type": "string"},
						"courseId":   map[string]any{"type": "string"},
						"label":      map[string]any{"type": "string"},
						"prevStatus": map[string]any{"type": "string"},
						"newStatus":  map[string]any{"type": "string"},
						"firedAt":    map[string]any{"type": "string", "format": "date-time"},
					},
				},
				"Settings": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"checkIntervalMinutes": map[string]any{"type": "integer"},
						"registrationUrl":      map[string]any{"type": "string"},
						"openRegistrationPage": map[string]any{"type": "boolean"},
						"playSound":            map[string]any{"type": "boolean"},
						"speakAlerts":          map[string]any{"type": "boolean"},
						"telegramBotToken":     map[string]any{"type": "string"},
						"telegramChatId":       map[string]any{"type": "integer"},
						"maxConcurrentChecks":  map[string]any{"type": "integer"},
					},
				},
				"WatcherStatus": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"state":     map[string]any{"type": "string", "enum": []any{"idle", "starting", "waiting-login", "running", "stopping"}},
						"startedAt": map[string]any{"type": "string", "format": "date-time"},
						"lastError": map[string]any{"type": "string"},
					},
				},
			},
		},
		"paths": map[string]any{
			"/api/v1/health": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{"200": map[string]any{"description": "OK"}},
				},
			},
			"/api/v1/version": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{"200": map[string]any{"description": "OK"}},
				},
			},
			"/api/v1/events": map[string]any{
				"get": map[string]any{
					"description": "Flux SSE: course.checked, course.check_failed, alert.fired, watcher.state.",
					"parameters": []any{
						map[string]any{
							"name":        "topics",
							"in":          "query",
							"description": "Liste de topics séparés par des virgules; vide = tous.",
							"schema":      map[string]any{"type": "string"},
						},
					},
					"responses": map[string]any{"200": map[string]any{"description": "text/event-stream"}},
				},
			},
			"/api/v1/courses": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{"200": jsonOK("#/components/schemas/Course")},
				},
				"post": map[string]any{
					"responses": map[string]any{
						"201": jsonOK("#/components/schemas/Course"),
						"400": jsonErr,
						"409": jsonErr,
					},
				},
			},
			"/api/v1/courses/{id}": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{"200": jsonOK("#/components/schemas/Course"), "404": jsonErr},
				},
				"put": map[string]any{
					"responses": map[string]any{"200": jsonOK("#/components/schemas/Course"), "404": jsonErr},
				},
				"delete": map[string]any{
					"responses": map[string]any{"204": map[string]any{"description": "No Content"}, "404": jsonErr},
				},
			},
			"/api/v1/courses/{id}/check": map[string]any{
				"post": map[string]any{
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/CheckResult"),
						"404": jsonErr,
						"409": jsonErr,
					},
				},
			},
			"/api/v1/courses/check-all": map[string]any{
				"post": map[string]any{
					"responses": map[string]any{"200": jsonOK("#/components/schemas/CheckResult")},
				},
			},
			"/api/v1/alerts": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{"200": jsonOK("#/components/schemas/Alert")},
				},
			},
			"/api/v1/settings": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{"200": jsonOK("#/components/schemas/Settings")},
				},
				"put": map[string]any{
					"responses": map[string]any{"200": jsonOK("#/components/schemas/Settings"), "400": jsonErr},
				},
			},
			"/api/v1/watcher": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{"200": jsonOK("#/components/schemas/WatcherStatus")},
				},
			},
			"/api/v1/watcher/start": map[string]any{
				"post": map[string]any{
					"responses": map[string]any{
						"202": jsonOK("#/components/schemas/WatcherStatus"),
						"400": jsonErr,
						"409": jsonErr,
					},
				},
			},
			"/api/v1/watcher/stop": map[string]any{
				"post": map[string]any{
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/WatcherStatus"),
						"409": jsonErr,
					},
				},
			},
		},
	}

	httpjson.Write(w, http.StatusOK, spec)
}
