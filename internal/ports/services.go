package ports

import (
	"context"

	"github.com/tdd/todo-app/internal/domain/task"
)

// TaskService defines the service port for task creation.
// Implemented by the application layer; called by inbound adapters (handlers).
type TaskService interface {
	// CreateTask validates the candidate and persists it through the
	// TaskStore exactly once, returning whatever the store returned.
	// Returns a *domain.ValidationError (domain.ErrValidation) without
	// touching the store when a required field is empty. Store failures
	// are returned unchanged.
	CreateTask(ctx context.Context, candidate *task.Task) (*task.Task, error)
}
