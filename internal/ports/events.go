package ports

import (
	"context"

	"github.com/tdd/todo-app/internal/domain/task"
)

// TaskEventPublisher announces task lifecycle events to interested
// consumers. Implemented by the events adapters (none, log, rabbitmq).
type TaskEventPublisher interface {
	// PublishTaskCreated emits a task.created event for a persisted task.
	PublishTaskCreated(ctx context.Context, t *task.Task) error

	// Close releases any broker connection held by the publisher.
	Close() error
}
