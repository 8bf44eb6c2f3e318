package modkit

import (
	"net/http"

	phttp "redditimport/internal/platform/net/http"
)

// Built is a plain struct with the fields modules care about
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(phttp.Router)
}

// Build applies Option funcs to an internal buildCfg and returns a plain struct
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		if o != nil {
			o(&c)
		}
	}
	if c.register == nil {
		c.register = func(phttp.Router) {}
	}
	mw := make([]func(http.Handler) http.Handler, len(c.mw))
	copy(mw, c.mw)
	return Built{
		Name:     c.name,
		Prefix:   c.prefix,
		Mw:       mw,
		Ports:    c.ports,
		Register: c.register,
	}
}

// Mount attaches every module's routes to r, each under its own group
func Mount(r phttp.Router, mods ...Module) {
	for _, m := range mods {
		if m == nil {
			continue
		}
		r.Group(func(g phttp.Router) { m.MountRoutes(g) })
	}
}
