// Package health runs the readiness checks: every registered dependency is
// asked concurrently, each under its own deadline.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/tdd/todo-app/internal/platform/fanout"
	"github.com/tdd/todo-app/internal/ports"
)

var _ ports.HealthRegistry = (*Registry)(nil)

// DefaultCheckTimeout bounds a single check.
const DefaultCheckTimeout = 2 * time.Second

// Option adjusts a Registry.
type Option func(*Registry)

// WithCheckTimeout replaces DefaultCheckTimeout. A non-positive d leaves
// checks bounded only by the caller's context.
func WithCheckTimeout(d time.Duration) Option {
	return func(r *Registry) { r.timeout = d }
}

// Registry is safe for concurrent Register and CheckAll.
type Registry struct {
	mu       sync.RWMutex
	checkers []ports.HealthChecker
	timeout  time.Duration
}

func New(opts ...Option) *Registry {
	r := &Registry{timeout: DefaultCheckTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Register(c ports.HealthChecker) {
	r.mu.Lock()
	r.checkers = append(r.checkers, c)
	r.mu.Unlock()
}

// CheckAll runs every check at once and waits for all of them. Checkers
// sharing a name collapse to the one registered last.
func (r *Registry) CheckAll(ctx context.Context) ports.HealthReport {
	r.mu.RLock()
	checkers := append([]ports.HealthChecker(nil), r.checkers...)
	r.mu.RUnlock()

	outcomes := fanout.Run(ctx, len(checkers), checkers, func(ctx context.Context, c ports.HealthChecker) (struct{}, error) {
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		return struct{}{}, c.HealthCheck(ctx)
	})

	report := make(ports.HealthReport, len(checkers))
	for i, c := range checkers {
		report[c.Name()] = outcomes[i].Err
	}
	return report
}
