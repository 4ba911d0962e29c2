// Package webui serves the tweet form. It forwards submissions to the tweet
// service and only answers requests that came through Azure Front Door.
package webui

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// router holds the web front-end state.
type router struct {
	config   Config
	invoker  *invoker
	renderer *renderer
}

// NewRouter creates the HTTP handler of the web front-end.
func NewRouter(cfg Config) (http.Handler, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &router{
		config:   cfg,
		invoker:  &invoker{client: cfg.HTTPClient, url: cfg.InvokeURL},
		renderer: newRenderer(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", r.handleIndex)
	mux.HandleFunc("POST /{$}", r.handleIndex)

	return withFrontendMiddleware(mux, cfg.Logger), nil
}

// withFrontendMiddleware wraps the handler with frontend-specific middleware.
func withFrontendMiddleware(handler http.Handler, logger Logger) http.Handler {
	handler = frontendRecoveryMiddleware(handler, logger)
	handler = accessLogMiddleware(handler, logger)
	return handler
}

// accessLogMiddleware logs one line per request with a fresh request ID.
func accessLogMiddleware(next http.Handler, logger Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
		logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"request_id", id,
		)
	})
}

// frontendRecoveryMiddleware recovers from panics.
func frontendRecoveryMiddleware(next http.Handler, logger Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered", "error", fmt.Sprint(err), "path", r.URL.Path)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
