package middleware

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/tdd/todo-app/internal/platform/logging"
)

const redactedHeader = "[REDACTED]"

// Logging stores a request-scoped logger, tagged with the request and
// correlation IDs, in the context (see logging.FromContext) and writes one
// "request completed" line per request. The line is logged at error for 5xx,
// warn for 4xx and info otherwise. At debug level the request headers are
// logged first, with logging.SensitiveHeaders redacted.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			reqLogger := logger.With(
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("correlation_id", CorrelationIDFromContext(ctx)),
			)
			ctx = logging.WithLogger(ctx, reqLogger)

			if reqLogger.Enabled(ctx, slog.LevelDebug) {
				reqLogger.DebugContext(ctx, "request received",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Group("headers", headerAttrs(r.Header)...),
				)
			}

			rec := record(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.Status()
			reqLogger.LogAttrs(ctx, levelForStatus(status), "request completed",
				slog.String("method", r.Method),
				slog.String("route", routePattern(r)),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int64("bytes", rec.bytes),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// headerAttrs renders h in key order. Multi-value headers are joined with a
// comma.
func headerAttrs(h http.Header) []any {
	attrs := make([]any, 0, len(h))
	for _, key := range slices.Sorted(maps.Keys(h)) {
		value := strings.Join(h[key], ",")
		if logging.SensitiveHeaders[strings.ToLower(key)] {
			value = redactedHeader
		}
		attrs = append(attrs, slog.String(key, value))
	}
	return attrs
}
