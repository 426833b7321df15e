package server

import (
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/crewforge/crewforge/pkg/observability"
)

// responseWriter captures the status code and body size for logging and
// metrics.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int64
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += int64(size)
	return size, err
}

// logRequests writes one access log line per request.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"bytes", wrapped.size,
			"duration", time.Since(start).String())
	})
}

// instrument opens a span per request and records the HTTP metrics. The
// route label comes from chi's route context so every request for the same
// pattern lands in the same series.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		tracer := observability.GetTracer("crewforge.http")
		ctx, span := tracer.Start(r.Context(), observability.SpanHTTPRequest,
			trace.WithAttributes(
				attribute.String(observability.AttrHTTPMethod, r.Method),
				attribute.String("http.path", r.URL.Path),
			),
		)
		defer span.End()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r.WithContext(ctx))

		duration := time.Since(start)

		span.SetAttributes(
			attribute.Int(observability.AttrHTTPStatusCode, wrapped.statusCode),
			attribute.Int64("http.response_size", wrapped.size),
		)
		if wrapped.statusCode >= 500 {
			span.SetStatus(codes.Error, http.StatusText(wrapped.statusCode))
		} else {
			span.SetStatus(codes.Ok, http.StatusText(wrapped.statusCode))
		}

		if metrics := observability.GetGlobalMetrics(); metrics != nil {
			requestSize := r.ContentLength
			if requestSize < 0 {
				requestSize = 0
			}
			metrics.RecordHTTPRequest(ctx, r.Method, routePattern(r), wrapped.statusCode,
				duration, requestSize, wrapped.size)
		}
	})
}

// routePattern extracts the matched chi pattern, falling back to the raw
// path when the request did not go through the router.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}

// requireJSON rejects bodies that do not declare a JSON content type. A
// missing header is accepted for curl friendliness.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		if contentType != "" {
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || !strings.HasSuffix(mediaType, "json") {
				writeError(w, http.StatusUnsupportedMediaType, "request",
					"Content-Type must be application/json", nil)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
