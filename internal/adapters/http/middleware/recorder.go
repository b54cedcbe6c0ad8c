// Package middleware holds the inbound HTTP middleware. The router installs
// it in this order:
//
//	Recovery → RequestID → CorrelationID → RateLimit → OpenTelemetry → Logging → Timeout → handler
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// unmatchedRoute labels requests chi could not route.
const unmatchedRoute = "unmatched"

// statusRecorder captures the status and size of a response. Recovery, OTel
// and Logging share one recorder per request: record returns the existing
// one instead of stacking wrappers.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func record(w http.ResponseWriter) *statusRecorder {
	if sr, ok := w.(*statusRecorder); ok {
		return sr
	}
	return &statusRecorder{ResponseWriter: w}
}

// WriteHeader forwards only the first status.
func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status != 0 {
		return
	}
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// Status is the status sent to the client. A handler that wrote nothing
// yields 200, as net/http does.
func (sr *statusRecorder) Status() int {
	if sr.status == 0 {
		return http.StatusOK
	}
	return sr.status
}

func (sr *statusRecorder) committed() bool {
	return sr.status != 0
}

// routePattern returns the chi pattern that matched r, e.g. "/tasks".
// Patterns keep metric and span names bounded where raw paths would not.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}
