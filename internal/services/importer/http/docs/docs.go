// Package docs holds the OpenAPI document of the importer status endpoints.
// Keep it in step with importer/http when a route changes
package docs

import (
	"github.com/swaggo/swag/v2"

	"redditimport/internal/core/version"
)

// InstanceName is the swag registry key of this document
const InstanceName = "redditimport"

const docTemplate = `{
    "openapi": "3.0.3",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "paths": {
        "/healthz": {
            "get": {
                "tags": ["status"],
                "summary": "Liveness with build version and start time",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/HealthResponse"}}}}}
            }
        },
        "/readyz": {
            "get": {
                "tags": ["status"],
                "summary": "Postgres ping with a 2s timeout",
                "responses": {
                    "200": {"description": "ok or skipped", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReadyResponse"}}}},
                    "503": {"description": "ping failed", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ReadyResponse"}}}}
                }
            }
        },
        "/status": {
            "get": {
                "tags": ["import"],
                "summary": "Live run: active files, recent files and totals",
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Status"}}}}}
            }
        },
        "/files": {
            "get": {
                "tags": ["ledger"],
                "summary": "Most recent file attempts",
                "parameters": [{"name": "limit", "in": "query", "schema": {"type": "integer", "minimum": 1, "maximum": 500, "default": 50}}],
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/FileReport"}}}}}}
            }
        },
        "/files/last": {
            "get": {
                "tags": ["ledger"],
                "summary": "Latest attempt for one archive path",
                "parameters": [{"name": "path", "in": "query", "required": true, "schema": {"type": "string"}}],
                "responses": {
                    "200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/FileReport"}}}},
                    "404": {"description": "path never attempted"}
                }
            }
        },
        "/tables/{table}": {
            "get": {
                "tags": ["ledger"],
                "summary": "Rows committed to a monthly table",
                "parameters": [{"name": "table", "in": "path", "required": true, "schema": {"type": "string", "pattern": "^(sub|com)_\\d{4}_\\d{2}$"}}],
                "responses": {"200": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/TableResponse"}}}}}
            }
        }
    },
    "components": {
        "schemas": {
            "HealthResponse": {
                "type": "object",
                "properties": {
                    "ok": {"type": "boolean"},
                    "service": {"type": "string"},
                    "version": {"type": "string"},
                    "started": {"type": "string", "format": "date-time"},
                    "now": {"type": "string", "format": "date-time"}
                }
            },
            "ReadyResponse": {
                "type": "object",
                "properties": {
                    "status": {"type": "string", "enum": ["ok", "fail", "skipped"]},
                    "error": {"type": "string"}
                }
            },
            "TableResponse": {
                "type": "object",
                "properties": {"table": {"type": "string"}, "rows": {"type": "integer", "format": "int64"}}
            },
            "FileReport": {
                "type": "object",
                "properties": {
                    "path": {"type": "string"},
                    "table": {"type": "string"},
                    "format": {"type": "string"},
                    "status": {"type": "string"},
                    "lines": {"type": "integer"},
                    "parsed": {"type": "integer"},
                    "malformed": {"type": "integer"},
                    "committed": {"type": "integer"},
                    "failed": {"type": "integer"},
                    "batches": {"type": "integer"},
                    "bytes": {"type": "integer", "format": "int64"},
                    "warning": {"type": "string"},
                    "error": {"type": "string"},
                    "started_at": {"type": "string", "format": "date-time"},
                    "elapsed": {"type": "integer", "format": "int64", "description": "nanoseconds"}
                }
            },
            "Status": {
                "type": "object",
                "properties": {
                    "run_id": {"type": "string"},
                    "running": {"type": "boolean"},
                    "root": {"type": "string"},
                    "active": {"type": "array", "items": {"$ref": "#/components/schemas/FileReport"}},
                    "recent": {"type": "array", "items": {"$ref": "#/components/schemas/FileReport"}},
                    "summary": {"type": "object"}
                }
            }
        }
    }
}`

// SwaggerInfo holds the exported document info so callers can adjust it
var SwaggerInfo = &swag.Spec{
	Version:          version.Info(InstanceName).Version,
	Title:            "redditimport status API",
	Description:      "Progress and ledger of the Reddit archive importer",
	InfoInstanceName: InstanceName,
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
