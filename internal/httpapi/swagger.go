package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// SwaggerInfo describes the API for the swagger UI. It is registered under
// swag.Name so httpSwagger serves it as /swagger/doc.json.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "medspresso API",
	Description:      "Extract structured information from clinical text with a local Ollama daemon.",
	InfoInstanceName: swag.Name,
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// MountSwagger serves the swagger UI and document under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/models": {
            "get": {
                "produces": ["application/json"],
                "summary": "List configured models",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}
                }
            }
        },
        "/daemon/models": {
            "get": {
                "produces": ["application/json"],
                "summary": "List models installed in the daemon",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.DaemonModelsResponse"}},
                    "503": {"description": "Daemon unreachable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/extract": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/x-ndjson", "application/json"],
                "summary": "Run an extraction",
                "description": "Streams {\"chunk\":...} lines followed by a final result line. With stream=false a single result object is returned.",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.ExtractRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ExtractResult"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Unknown model or prompt type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported media type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Daemon error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Daemon unreachable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {"summary": "Liveness", "responses": {"200": {"description": "ok"}}}
        },
        "/readyz": {
            "get": {
                "summary": "Readiness (daemon reachable)",
                "responses": {"200": {"description": "ready"}, "503": {"description": "daemon unavailable"}}
            }
        }
    },
    "definitions": {
        "types.Model": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "deepseek-r1:1.5b"},
                "description": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "template": {"type": "string"}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {"models": {"type": "array", "items": {"$ref": "#/definitions/types.Model"}}}
        },
        "types.DaemonModelsResponse": {
            "type": "object",
            "properties": {"models": {"type": "array", "items": {"type": "string"}}}
        },
        "types.ExtractRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string", "example": "Patient started on metformin 500mg BID."},
                "model": {"type": "string", "example": "deepseek-r1:1.5b"},
                "prompt_type": {"type": "string", "example": "medications"},
                "system": {"type": "string"},
                "stream": {"type": "boolean", "example": true}
            }
        },
        "types.ExtractResult": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "model": {"type": "string"},
                "prompt_type": {"type": "string"},
                "result": {"type": "string"},
                "done": {"type": "boolean"},
                "error": {"type": "string"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "integer", "example": 404}
            }
        }
    }
}`
