package http

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// WithRequestID sets the request id the way chi's RequestID middleware does
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}
