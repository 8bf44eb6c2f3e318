package http

import "net/http"

// Handler is a plain handler func; modules register these against a Router
type Handler = func(http.ResponseWriter, *http.Request)

// Router is what modules mount their routes on. AdaptChi is the only implementation
type Router interface {
	Get(path string, h Handler)
	Head(path string, h Handler)
	Handle(path string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)

	// Group scopes middleware without a path prefix, Route scopes both
	Group(fn func(Router))
	Route(pattern string, fn func(Router))

	Mux() http.Handler
}
