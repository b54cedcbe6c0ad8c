package ports

import (
	"context"

	"github.com/tdd/todo-app/internal/domain/task"
)

// TaskStore persists tasks. Implemented by the store adapters (memory,
// sqlite, postgres, redis, remote); called by the application layer.
//
// Implementations assign the task ID, must be safe for concurrent use, and
// own the classification of their failures (domain.ErrConflict,
// domain.ErrUnavailable, or an opaque error).
type TaskStore interface {
	// Save persists the task in a single atomic operation and returns the
	// persisted representation with its assigned ID. Any ID already set on
	// the input is ignored.
	Save(ctx context.Context, t *task.Task) (*task.Task, error)
}
