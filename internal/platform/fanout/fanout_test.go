package fanout_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdd/todo-app/internal/platform/fanout"
)

func TestRun_NoItems(t *testing.T) {
	t.Parallel()

	results := fanout.Run(t.Context(), 4, []string{}, func(context.Context, string) (int, error) {
		t.Error("fn called without items")
		return 0, nil
	})

	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRun_ResultsFollowInputOrder(t *testing.T) {
	t.Parallel()

	errDown := errors.New("broker down")
	// The slowest item comes first so completion order differs from input order.
	delays := map[string]time.Duration{"postgres": 30 * time.Millisecond, "rabbitmq": 5 * time.Millisecond, "redis": 15 * time.Millisecond}
	names := []string{"postgres", "rabbitmq", "redis"}

	results := fanout.Run(t.Context(), len(names), names, func(_ context.Context, name string) (string, error) {
		time.Sleep(delays[name])
		if name == "rabbitmq" {
			return "", errDown
		}
		return name + " ok", nil
	})

	require.Len(t, results, 3)
	assert.Equal(t, fanout.Result[string]{Value: "postgres ok"}, results[0])
	assert.ErrorIs(t, results[1].Err, errDown)
	assert.Empty(t, results[1].Value)
	assert.Equal(t, fanout.Result[string]{Value: "redis ok"}, results[2])
}

func TestRun_NeverExceedsWorkerLimit(t *testing.T) {
	t.Parallel()

	const workers = 3

	var running, peak atomic.Int32
	results := fanout.Run(t.Context(), workers, make([]struct{}, 12), func(context.Context, struct{}) (bool, error) {
		n := running.Add(1)
		defer running.Add(-1)

		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return true, nil
	})

	require.Len(t, results, 12)
	for _, r := range results {
		assert.True(t, r.Value)
	}
	assert.LessOrEqual(t, peak.Load(), int32(workers))
	assert.Positive(t, peak.Load())
}

func TestRun_CanceledBeforeStart(t *testing.T) {
	t.Parallel()

	t.Run("waiting items are skipped", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		var calls atomic.Int32
		results := fanout.Run(ctx, 1, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
			calls.Add(1)
			time.Sleep(50 * time.Millisecond)
			return n, nil
		})

		var skipped int32
		for _, r := range results {
			if errors.Is(r.Err, context.Canceled) {
				skipped++
			}
		}
		assert.GreaterOrEqual(t, calls.Load(), int32(1), "the item holding the free slot runs")
		assert.Positive(t, skipped)
		assert.Equal(t, int32(3), calls.Load()+skipped)
	})

	t.Run("free slots still run fn", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		results := fanout.Run(ctx, 5, []int{1, 2, 3}, func(ctx context.Context, _ int) (int, error) {
			return 0, ctx.Err()
		})

		for i, r := range results {
			assert.ErrorIs(t, r.Err, context.Canceled, "item %d", i)
		}
	})
}

func TestRun_NonPositiveWorkersMeansOne(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{0, -2} {
		results := fanout.Run(t.Context(), workers, []int{1, 2}, func(_ context.Context, n int) (int, error) {
			return n * 10, nil
		})
		assert.Equal(t, []fanout.Result[int]{{Value: 10}, {Value: 20}}, results, "workers=%d", workers)
	}
}
