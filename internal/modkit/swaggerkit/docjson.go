package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/swaggo/swag/v2"
)

// SpecMutator adjusts the parsed document before it is served
type SpecMutator func(map[string]any)

var mutators []SpecMutator

// Register adds a document mutator; call it from init
func Register(m SpecMutator) {
	if m != nil {
		mutators = append(mutators, m)
	}
}

var readDoc = func(instance string) (string, error) { return swag.ReadDoc(instance) }

func serveDocJSON(instance string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := readDoc(instance)
		if err != nil {
			http.Error(w, "no document registered", http.StatusNotFound)
			return
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			http.Error(w, "document parse error", http.StatusInternalServerError)
			return
		}
		normalize(doc)
		for _, m := range mutators {
			m(doc)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(doc)
	}
}

// normalize pins the document to OAS 3.0.3, which the bundled UI renders,
// and documents the error envelope on every operation
func normalize(doc map[string]any) {
	if _, ok := doc["swagger"]; ok {
		delete(doc, "swagger")
		doc["openapi"] = "3.0.3"
	}
	if v, ok := doc["openapi"].(string); !ok || strings.HasPrefix(v, "3.1") {
		doc["openapi"] = "3.0.3"
	}
	if _, ok := doc["servers"]; !ok {
		doc["servers"] = []any{map[string]any{"url": "/"}}
	}

	schemas := child(child(doc, "components"), "schemas")
	if _, ok := schemas["Envelope"]; !ok {
		schemas["Envelope"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status_code": map[string]any{"type": "integer", "format": "int32"},
				"status":      map[string]any{"type": "string"},
				"code":        map[string]any{"type": "string"},
				"error":       map[string]any{"type": "string"},
				"request_id":  map[string]any{"type": "string"},
				"data":        map[string]any{},
			},
			"required": []any{"status_code", "status"},
		}
	}

	paths, _ := doc["paths"].(map[string]any)
	for _, p := range paths {
		item, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, o := range item {
			op, ok := o.(map[string]any)
			if !ok {
				continue
			}
			resp := child(op, "responses")
			if _, ok := resp["500"]; !ok {
				resp["500"] = errorResponse("Internal Server Error")
			}
			if params, _ := op["parameters"].([]any); len(params) > 0 {
				if _, ok := resp["400"]; !ok {
					resp["400"] = errorResponse("Bad Request")
				}
			}
		}
	}
}

func errorResponse(desc string) map[string]any {
	return map[string]any{
		"description": desc,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/Envelope"},
			},
		},
	}
}

// child returns m[key] as a map, creating it when missing
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}
