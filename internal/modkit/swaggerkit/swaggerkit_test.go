package swaggerkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/swaggo/swag/v2"

	phttp "redditimport/internal/platform/net/http"
	"redditimport/internal/platform/testkit"
)

const testInstance = "swaggerkit-test"

func init() {
	swag.Register(testInstance, &swag.Spec{
		Title:            "status",
		InfoInstanceName: testInstance,
		SwaggerTemplate: `{"openapi":"3.1.0","info":{"title":"{{.Title}}","version":"1"},"paths":{
			"/files":{"get":{"parameters":[{"name":"limit","in":"query"}],"responses":{"200":{"description":"OK"}}}},
			"/status":{"get":{"responses":{"200":{"description":"OK"}}}}}}`,
	})
}

func get(t *testing.T, o Options, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	Mount(r, o)
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestMount(t *testing.T) {
	t.Parallel()

	on := Options{Enabled: true, Instance: testInstance}
	cases := []struct {
		name string
		opts Options
		path string
		code int
	}{
		{"disabled", Options{Instance: testInstance}, "/docs/doc.json", http.StatusNotFound},
		{"redirect", on, "/docs", http.StatusPermanentRedirect},
		{"doc", on, "/docs/doc.json", http.StatusOK},
		{"ui", on, "/docs/index.html", http.StatusOK},
		{"custom base", Options{Enabled: true, Base: "api/docs/", Instance: testInstance}, "/api/docs/doc.json", http.StatusOK},
		{"unknown instance", Options{Enabled: true, Instance: "nope"}, "/docs/doc.json", http.StatusNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			if rec := get(t, c.opts, c.path); rec.Code != c.code {
				t.Fatalf("GET %s = %d, want %d (%s)", c.path, rec.Code, c.code, rec.Body.String())
			}
		})
	}
}

func TestDocJSONNormalized(t *testing.T) {
	t.Parallel()

	rec := get(t, Options{Enabled: true, Instance: testInstance}, "/docs/doc.json")
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content type %q", ct)
	}
	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths      map[string]map[string]struct{ Responses map[string]any } `json:"paths"`
		Components struct {
			Schemas map[string]any `json:"schemas"`
		} `json:"components"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.OpenAPI != "3.0.3" || doc.Info.Title != "status" {
		t.Fatalf("openapi=%q title=%q", doc.OpenAPI, doc.Info.Title)
	}
	if _, ok := doc.Components.Schemas["Envelope"]; !ok {
		t.Fatal("envelope schema missing")
	}
	files := doc.Paths["/files"]["get"].Responses
	if _, ok := files["500"]; !ok {
		t.Fatalf("/files responses = %v", files)
	}
	if _, ok := files["400"]; !ok {
		t.Fatalf("/files takes parameters and should document 400: %v", files)
	}
	if _, ok := doc.Paths["/status"]["get"].Responses["400"]; ok {
		t.Fatal("/status has no parameters and should not document 400")
	}
}

func TestDocJSONUnparsable(t *testing.T) {
	testkit.Seam(t, &readDoc, func(string) (string, error) { return "{", nil })

	if rec := get(t, Options{Enabled: true, Instance: testInstance}, "/docs/doc.json"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestDocJSONReadFailure(t *testing.T) {
	testkit.Seam(t, &readDoc, func(string) (string, error) { return "", errors.New("not registered") })

	if rec := get(t, Options{Enabled: true, Instance: testInstance}, "/docs/doc.json"); rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d", rec.Code)
	}
}
