// Package swaggerkit serves Swagger UI and a normalized OpenAPI document
// for documents registered with swag
package swaggerkit

import (
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"

	phttp "redditimport/internal/platform/net/http"
)

// Options selects what Mount serves
type Options struct {
	Enabled bool
	// Base is the mount path; empty means /docs
	Base string
	// Instance is the swag registry name of the document
	Instance string
}

// Mount serves the UI under Base and the document at Base/doc.json when enabled
func Mount(r phttp.Router, o Options) {
	if !o.Enabled {
		return
	}
	base := "/" + strings.Trim(o.Base, "/")
	if base == "/" {
		base = "/docs"
	}
	r.Get(base, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, base+"/", http.StatusPermanentRedirect)
	})
	r.Get(base+"/doc.json", serveDocJSON(o.Instance))
	r.Handle(base+"/*", httpSwagger.Handler(
		httpSwagger.InstanceName(o.Instance),
		httpSwagger.URL(base+"/doc.json"),
	))
}
