// Package middleware holds the status server middleware
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"redditimport/internal/platform/logger"
)

// AccessLogOptions configures the zerolog access log
type AccessLogOptions struct {
	// Slow raises requests taking at least Slow to warn; 0 disables it
	Slow time.Duration
	// Quiet paths (health checks, dashboards polling /status) log at trace
	Quiet []string
	// Log defaults to logger.Named("http")
	Log *zerolog.Logger
}

// AccessLogZerolog logs one line per request with the chi route pattern,
// status, bytes, elapsed time and request id. Errors log at warn
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	quiet := make(map[string]bool, len(opt.Quiet))
	for _, p := range opt.Quiet {
		quiet[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			log := opt.Log
			if log == nil {
				log = logger.Named("http")
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := zerolog.DebugLevel
			switch {
			case status >= http.StatusInternalServerError, opt.Slow > 0 && elapsed >= opt.Slow:
				level = zerolog.WarnLevel
			case quiet[r.URL.Path]:
				level = zerolog.TraceLevel
			}

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			log.WithLevel(level).
				Str("method", r.Method).
				Str("route", route).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", elapsed).
				Str("request_id", chimw.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
