package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	obsctx "github.com/fairyhunter13/ai-interview-agent/internal/observability"
)

const requestIDHeader = "X-Request-Id"

// Recoverer turns a handler panic into the 500 detail envelope.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				LoggerFrom(r).Error("panic recovered",
					slog.Any("recover", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path))
				writeJSON(w, http.StatusInternalServerError, detailEnvelope{Detail: failureDetail{
					Error:   "Internal server error",
					Message: fmt.Sprint(rec),
					Type:    "panic",
				}})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID reuses the caller's X-Request-Id or mints a ULID, echoes it
// back, and stores it with a correlated logger in the request context.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = ulid.Make().String()
				r.Header.Set(requestIDHeader, reqID)
			}
			w.Header().Set(requestIDHeader, reqID)

			lg := slog.Default().With(slog.String("request_id", reqID))
			if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
				lg = lg.With(
					slog.String("trace_id", sc.TraceID().String()),
					slog.String("span_id", sc.SpanID().String()))
			}
			ctx := obsctx.ContextWithLogger(r.Context(), lg)
			ctx = obsctx.ContextWithRequestID(ctx, reqID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TimeoutMiddleware bounds handler time; LLM fallbacks can chain several
// slow providers, so the router passes the configured write budget.
func TimeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":"request timed out"}`)
	}
}

// SecurityHeaders sets the headers for a JSON-only API.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'none'")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// LoggerFrom returns the request-scoped logger.
func LoggerFrom(r *http.Request) *slog.Logger {
	return obsctx.LoggerFromContext(r.Context())
}

// AccessLog writes one http_access line per request. Session and user ids
// from the route are included so interview turns can be followed in logs.
func AccessLog() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			}
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					route = p
				}
				for _, key := range []string{"session_id", "user_id"} {
					if v := rc.URLParam(key); v != "" {
						attrs = append(attrs, slog.String(key, v))
					}
				}
			}
			attrs = append(attrs, slog.String("route", route))

			level := slog.LevelInfo
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				level = slog.LevelError
			case ww.Status() >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			LoggerFrom(r).LogAttrs(r.Context(), level, "http_access", attrs...)
		})
	}
}
