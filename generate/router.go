package generate

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in requests and responses.
const RequestIDHeader = "X-Request-ID"

// HealthPath answers GET with 200 OK for load balancer health checks.
const HealthPath = "/probe"

// router holds the API router state.
type router struct {
	svc    *Service
	logger Logger
	limit  int64
}

// NewRouter creates the HTTP handler of the tweet service.
func NewRouter(svc *Service) http.Handler {
	r := &router{
		svc:    svc,
		logger: svc.config.Logger,
		limit:  svc.config.MaxBodyBytes,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+HealthPath, r.handleHealth)
	mux.HandleFunc("POST /generate", r.handleGenerate)

	return withMiddleware(mux, r.logger)
}

// withMiddleware wraps the handler with common middleware.
func withMiddleware(handler http.Handler, logger Logger) http.Handler {
	handler = recoveryMiddleware(handler, logger)
	handler = accessLogMiddleware(handler, logger)
	handler = requestIDMiddleware(handler)
	return handler
}

// requestIDMiddleware reuses an incoming X-Request-ID or assigns a new one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// accessLogMiddleware logs one line per request.
func accessLogMiddleware(next http.Handler, logger Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", r.Header.Get(RequestIDHeader),
		)
	})
}

// recoveryMiddleware recovers from panics and returns 500.
func recoveryMiddleware(next http.Handler, logger Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered", "error", fmt.Sprint(err), "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
