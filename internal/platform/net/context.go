// Package net provides request context helpers shared by the HTTP layers
package net

import (
	"context"
	"net/http"

	"swifthub/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestID returns the chi request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// WithRequestID stores id where both chi and the logger look for it
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, chimw.RequestIDKey, id)
	return logger.WithRequest(ctx, id)
}

// Annotate copies the chi request id into the logger context so logger.C
// picks it up. Mount it after chimw.RequestID
func Annotate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := RequestID(r.Context()); id != "" {
			r = r.WithContext(logger.WithRequest(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
