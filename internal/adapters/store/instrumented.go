package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tdd/todo-app/internal/domain"
	"github.com/tdd/todo-app/internal/domain/task"
	"github.com/tdd/todo-app/internal/platform/config"
	"github.com/tdd/todo-app/internal/platform/telemetry"
	"github.com/tdd/todo-app/internal/ports"
)

var (
	_ ports.TaskStore     = (*Instrumented)(nil)
	_ ports.HealthChecker = (*Instrumented)(nil)
)

// Instrumented decorates a [ports.TaskStore] with a circuit breaker, an
// OpenTelemetry span and save metrics. Conflicts, validation failures and
// caller cancellations do not count as breaker failures.
type Instrumented struct {
	next    ports.TaskStore
	name    string
	breaker *gobreaker.CircuitBreaker[*task.Task]
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// NewInstrumented wraps next. name labels spans, metrics and health reports
// (e.g. "postgres"). A nil metrics disables metric recording.
func NewInstrumented(
	next ports.TaskStore,
	name string,
	cfg config.CircuitBreakerConfig,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
) *Instrumented {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cb := gobreaker.NewCircuitBreaker[*task.Task](gobreaker.Settings{
		Name:        name + "-store",
		MaxRequests: toUint32(cfg.HalfOpenLimit),
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= cfg.MaxFailures
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(breaker string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", breaker),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Instrumented{
		next:    next,
		name:    name,
		breaker: cb,
		metrics: metrics,
		logger:  logger,
	}
}

// Save forwards to the wrapped store through the circuit breaker. When the
// breaker rejects the call the error wraps [domain.ErrUnavailable].
func (s *Instrumented) Save(ctx context.Context, t *task.Task) (*task.Task, error) {
	start := time.Now()

	ctx, span := otel.GetTracerProvider().Tracer("store").Start(ctx, "TaskStore.Save",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", s.name)),
	)
	defer span.End()

	saved, err := s.breaker.Execute(func() (*task.Task, error) {
		return s.next.Save(ctx, t)
	})

	result := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "circuit_open"
		err = fmt.Errorf("%s store: %w: %w", s.name, domain.ErrUnavailable, err)
	case err != nil:
		result = "error"
	}

	s.recordMetrics(ctx, start, result)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("task.id", saved.ID))
	return saved, nil
}

// Name identifies the store in health reports.
func (s *Instrumented) Name() string {
	return s.name
}

// HealthCheck reports an open or half-open breaker, then delegates to the
// wrapped store's own check when it has one.
func (s *Instrumented) HealthCheck(ctx context.Context) error {
	switch state := s.breaker.State(); state {
	case gobreaker.StateClosed:
		// Fall through to the wrapped store.
	case gobreaker.StateHalfOpen:
		return fmt.Errorf("%s: degraded (circuit breaker half-open)", s.name)
	case gobreaker.StateOpen:
		return fmt.Errorf("%s: failing (circuit breaker open)", s.name)
	default:
		return fmt.Errorf("%s: unknown circuit breaker state %v", s.name, state)
	}

	if hc, ok := s.next.(ports.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// Unwrap returns the decorated store. Migrate looks through it so only a
// backend that owns a schema reports one.
func (s *Instrumented) Unwrap() ports.TaskStore {
	return s.next
}

// Close closes the wrapped store when it holds resources.
func (s *Instrumented) Close() error {
	if c, ok := s.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Instrumented) recordMetrics(ctx context.Context, start time.Time, result string) {
	if s.metrics == nil {
		return
	}

	attrs := metric.WithAttributes(
		telemetry.AttrStore.String(s.name),
		telemetry.AttrResult.String(result),
	)
	s.metrics.StoreSaveDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	s.metrics.StoreSaveTotal.Add(ctx, 1, attrs)
}

// isBreakerSuccess treats outcomes that say nothing about the backend's
// health as successes.
func isBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, context.Canceled)
}

// toUint32 clamps v into the uint32 range. Negative values become zero.
func toUint32(v int) uint32 {
	if v <= 0 {
		return 0
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
