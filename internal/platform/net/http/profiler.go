package http

import (
	stdhttp "net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// MountProfiler serves chi's pprof handlers under prefix when enabled,
// so a slow import can be profiled through the status server
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	prefix = "/" + strings.Trim(prefix, "/")
	pprof := stdhttp.StripPrefix(prefix, chimw.Profiler())
	r.Handle(prefix, pprof)
	r.Handle(prefix+"/*", pprof)
}
