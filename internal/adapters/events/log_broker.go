package events

import (
	"context"
	"log/slog"
)

// LogBroker writes events to the structured log instead of a message broker.
type LogBroker struct {
	logger *slog.Logger
}

// NewLogBroker creates a LogBroker that logs at INFO level.
func NewLogBroker(logger *slog.Logger) *LogBroker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogBroker{logger: logger}
}

// Name returns "log".
func (b *LogBroker) Name() string {
	return "log"
}

// Publish logs the payload under the routing key.
func (b *LogBroker) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.logger.InfoContext(ctx, "domain event",
		slog.String("routing_key", routingKey),
		slog.String("event", string(payload)),
	)
	return nil
}

// Close is a no-op.
func (b *LogBroker) Close() error {
	return nil
}
