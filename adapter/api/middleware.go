package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/lessonboard/pkg/observability"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// CorrelationHeader carries the correlation id across the gateway hop.
const CorrelationHeader = "X-Correlation-ID"

// correlation copies the inbound correlation id, or mints one, into the
// request context and echoes it on the response. The chi request id is
// exposed to the observability logger as well.
func correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.WithCorrelationID(r.Context(), r.Header.Get(CorrelationHeader))
		if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
			ctx = observability.WithRequestID(ctx, reqID)
		}
		w.Header().Set(CorrelationHeader, observability.CorrelationIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger writes one structured line per request. Wire it after
// chimiddleware.RequestID so the request id is available.
func requestLogger(logger *slog.Logger, metrics observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			if route == "" {
				route = r.URL.Path
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			tags := []observability.Tag{
				observability.T("route", route),
				observability.T("status", strconv.Itoa(status)),
			}
			metrics.Counter(observability.MetricHTTPRequests, 1, tags...)
			metrics.Timing(observability.MetricHTTPDuration, duration, tags...)

			logger.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", status,
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}
