package ports

import "context"

// HealthChecker is a dependency the readiness probe asks about, such as the
// task store or the event broker.
type HealthChecker interface {
	// Name labels the check in readiness output ("postgres", "rabbitmq").
	Name() string

	// HealthCheck returns nil when the dependency is usable. It must give up
	// once ctx is done.
	HealthCheck(ctx context.Context) error
}

// HealthReport holds one result per checker name. A nil error means healthy.
type HealthReport map[string]error

// Healthy reports whether every check passed. An empty report is healthy.
func (r HealthReport) Healthy() bool {
	for _, err := range r {
		if err != nil {
			return false
		}
	}
	return true
}

// HealthRegistry collects checkers at startup and runs them on each
// readiness probe.
type HealthRegistry interface {
	Register(checker HealthChecker)
	CheckAll(ctx context.Context) HealthReport
}
