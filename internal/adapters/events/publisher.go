package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/tdd/todo-app/internal/domain/task"
	"github.com/tdd/todo-app/internal/platform/telemetry"
	"github.com/tdd/todo-app/internal/ports"
)

var (
	_ ports.TaskEventPublisher = (*Publisher)(nil)
	_ ports.HealthChecker      = (*Publisher)(nil)
)

// Broker delivers an encoded event under a routing key.
type Broker interface {
	Name() string
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// Publisher implements [ports.TaskEventPublisher] on top of a [Broker].
type Publisher struct {
	broker  Broker
	metrics *telemetry.Metrics
	logger  *slog.Logger
	now     func() time.Time
	newID   func() uuid.UUID
}

// NewPublisher creates a Publisher. A nil metrics disables metric recording.
func NewPublisher(broker Broker, metrics *telemetry.Metrics, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{
		broker:  broker,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.New,
	}
}

// PublishTaskCreated encodes a task.created envelope for t and publishes it.
func (p *Publisher) PublishTaskCreated(ctx context.Context, t *task.Task) error {
	env := newTaskCreated(p.newID(), p.now(), t)

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", TypeTaskCreated, err)
	}

	err = p.broker.Publish(ctx, TypeTaskCreated, payload)
	p.record(ctx, err)
	if err != nil {
		return fmt.Errorf("publishing %s event via %s: %w", TypeTaskCreated, p.broker.Name(), err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("event_id", env.EventID),
		slog.String("event_type", env.EventType),
		slog.Int64("task_id", t.ID),
		slog.String("broker", p.broker.Name()),
	)
	return nil
}

// Name returns the broker name.
func (p *Publisher) Name() string {
	return p.broker.Name()
}

// HealthCheck delegates to the broker when it can report its own health.
func (p *Publisher) HealthCheck(ctx context.Context) error {
	if hc, ok := p.broker.(ports.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// Close closes the broker.
func (p *Publisher) Close() error {
	return p.broker.Close()
}

func (p *Publisher) record(ctx context.Context, err error) {
	if p.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	p.metrics.EventPublishTotal.Add(ctx, 1, metric.WithAttributes(
		telemetry.AttrEventType.String(TypeTaskCreated),
		telemetry.AttrResult.String(result),
	))
}
