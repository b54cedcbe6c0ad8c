package httpclient

import (
	"context"
	"net/http"
)

const (
	headerRequestID     = "X-Request-ID"
	headerCorrelationID = "X-Correlation-ID"
)

type (
	requestIDKey     struct{}
	correlationIDKey struct{}
)

// WithRequestID marks ctx so outbound calls carry X-Request-ID. The inbound
// RequestID middleware calls it for every request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// WithCorrelationID marks ctx so outbound calls carry X-Correlation-ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

func injectIDHeaders(ctx context.Context, h http.Header) {
	if id, _ := ctx.Value(requestIDKey{}).(string); id != "" {
		h.Set(headerRequestID, id)
	}
	if id, _ := ctx.Value(correlationIDKey{}).(string); id != "" {
		h.Set(headerCorrelationID, id)
	}
}
