package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// CORSOptions is a narrow surface over go-chi/cors
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// CORS wraps go-chi/cors; the status API is read only so methods default to GET and HEAD
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: ifEmpty(o.AllowedMethods, []string{"GET", "HEAD", "OPTIONS"}),
		AllowedHeaders: ifEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         o.MaxAge,
	})
}

// Defaults is the chain in front of the status endpoints.
// CORS is added only when origins are configured
func Defaults(slow time.Duration, origins []string) []func(http.Handler) http.Handler {
	mw := []func(http.Handler) http.Handler{
		chimw.RequestID,
		AccessLogZerolog(AccessLogOptions{Slow: slow, Quiet: []string{"/healthz", "/readyz"}}),
		RecoverJSON,
		chimw.NoCache,
	}
	if len(origins) > 0 {
		mw = append(mw, CORS(CORSOptions{AllowedOrigins: origins, MaxAge: 300}))
	}
	return mw
}

func ifEmpty(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
