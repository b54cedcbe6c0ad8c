package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/tdd/todo-app/internal/adapters/store"
	"github.com/tdd/todo-app/internal/domain"
	"github.com/tdd/todo-app/internal/domain/task"
	"github.com/tdd/todo-app/internal/platform/config"
	"github.com/tdd/todo-app/internal/platform/telemetry"
	"github.com/tdd/todo-app/mocks"
)

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		MaxFailures:   2,
		Timeout:       time.Minute,
		HalfOpenLimit: 1,
	}
}

func TestInstrumented_SaveSuccess(t *testing.T) {
	t.Parallel()

	next := mocks.NewMockTaskStore(t)
	saved := &task.Task{ID: 1, Title: "t", Description: "d"}
	next.EXPECT().Save(mock.Anything, mock.Anything).Return(saved, nil).Once()

	s := store.NewInstrumented(next, "sqlite", breakerConfig(), nil, nil)

	got, err := s.Save(context.Background(), &task.Task{Title: "t", Description: "d"})
	require.NoError(t, err)
	assert.Same(t, saved, got)
	assert.Equal(t, "sqlite", s.Name())
}

func TestInstrumented_BreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	next := mocks.NewMockTaskStore(t)
	backendErr := errors.New("disk I/O error")
	next.EXPECT().Save(mock.Anything, mock.Anything).Return(nil, backendErr).Times(2)

	s := store.NewInstrumented(next, "sqlite", breakerConfig(), nil, nil)
	ctx := context.Background()
	in := &task.Task{Title: "t", Description: "d"}

	for range 2 {
		_, err := s.Save(ctx, in)
		require.ErrorIs(t, err, backendErr)
	}

	// Third call is rejected without reaching the backend.
	_, err := s.Save(ctx, in)
	require.ErrorIs(t, err, domain.ErrUnavailable)

	hcErr := s.HealthCheck(ctx)
	require.Error(t, hcErr)
	assert.Contains(t, hcErr.Error(), "circuit breaker open")
}

func TestInstrumented_ConflictDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	next := mocks.NewMockTaskStore(t)
	conflict := errors.Join(domain.ErrConflict, errors.New("unique violation"))
	next.EXPECT().Save(mock.Anything, mock.Anything).Return(nil, conflict).Times(3)

	s := store.NewInstrumented(next, "postgres", breakerConfig(), nil, nil)
	ctx := context.Background()

	for range 3 {
		_, err := s.Save(ctx, &task.Task{Title: "t", Description: "d"})
		require.ErrorIs(t, err, domain.ErrConflict)
		assert.NotErrorIs(t, err, domain.ErrUnavailable)
	}
	assert.NoError(t, s.HealthCheck(ctx))
}

func TestInstrumented_RecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := telemetry.NewMetrics(mp, "test")
	require.NoError(t, err)

	next := mocks.NewMockTaskStore(t)
	next.EXPECT().Save(mock.Anything, mock.Anything).Return(&task.Task{ID: 1}, nil).Once()
	next.EXPECT().Save(mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

	s := store.NewInstrumented(next, "redis", breakerConfig(), metrics, nil)
	ctx := context.Background()
	_, _ = s.Save(ctx, &task.Task{Title: "t", Description: "d"})
	_, _ = s.Save(ctx, &task.Task{Title: "t", Description: "d"})

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	results := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "task.store.save.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				storeName, _ := dp.Attributes.Value(telemetry.AttrStore)
				assert.Equal(t, "redis", storeName.AsString())
				result, _ := dp.Attributes.Value(telemetry.AttrResult)
				results[result.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"success": 1, "error": 1}, results)
}

// closingStore is a task store with a schema and resources.
type closingStore struct {
	*mocks.MockTaskStore
	migrated bool
	closed   bool
	healthy  error
}

func (s *closingStore) Migrate(context.Context) error     { s.migrated = true; return nil }
func (s *closingStore) Close() error                      { s.closed = true; return nil }
func (s *closingStore) Name() string                      { return "fake" }
func (s *closingStore) HealthCheck(context.Context) error { return s.healthy }

func TestInstrumented_ForwardsLifecycle(t *testing.T) {
	t.Parallel()

	unhealthy := errors.New("ping failed")
	next := &closingStore{MockTaskStore: mocks.NewMockTaskStore(t), healthy: unhealthy}
	s := store.NewInstrumented(next, "fake", breakerConfig(), nil, nil)
	ctx := context.Background()

	applied, err := store.Migrate(ctx, s)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, next.migrated)
	assert.Same(t, next, s.Unwrap())

	assert.ErrorIs(t, s.HealthCheck(ctx), unhealthy)

	require.NoError(t, s.Close())
	assert.True(t, next.closed)
}

func TestInstrumented_LifecycleWithoutSupport(t *testing.T) {
	t.Parallel()

	s := store.NewInstrumented(mocks.NewMockTaskStore(t), "bare", breakerConfig(), nil, nil)
	ctx := context.Background()

	applied, err := store.Migrate(ctx, s)
	require.NoError(t, err)
	assert.False(t, applied, "wrapped store has no schema")
	assert.NoError(t, s.HealthCheck(ctx))
	assert.NoError(t, s.Close())
}
