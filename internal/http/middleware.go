package http

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first one listed runs outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

type contextKey string

const (
	dryRunKey    contextKey = "dryRun"
	requestIDKey contextKey = "requestID"
)

const requestIDHeader = "X-Request-ID"

// paramsMiddleware handles the 'verbose' and 'dry_run' query parameters and tags
// every request with an ID.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		logger := log.With("requestID", requestID)
		logger.Info("incoming request", "method", r.Method, "url", r.URL.String())

		if r.URL.Query().Get("verbose") == "true" {
			originalLevel := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			// Applies process-wide until the handler returns.
			defer log.SetLevel(originalLevel)
		}

		isDryRun := r.URL.Query().Get("dry_run") == "true"
		ctx := context.WithValue(r.Context(), dryRunKey, isDryRun)
		ctx = context.WithValue(ctx, requestIDKey, requestID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.Debug("request finished", "path", r.URL.Path, "duration_ms", time.Since(start).Milliseconds())
	})
}

func isDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(dryRunKey).(bool)
	return ok && dryRun
}
