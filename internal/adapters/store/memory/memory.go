// Package memory provides an in-process task store. It keeps tasks in a
// mutex-guarded map and is intended for local development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/tdd/todo-app/internal/domain/task"
	"github.com/tdd/todo-app/internal/ports"
)

var _ ports.TaskStore = (*Store)(nil)

// Store is a [ports.TaskStore] backed by a map. IDs start at 1 and increase
// monotonically; they are never reused.
type Store struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]task.Task
}

// New returns an empty Store.
func New() *Store {
	return &Store{tasks: make(map[int64]task.Task)}
}

// Save assigns the next ID and stores a copy of t. The caller's value is
// not modified.
func (s *Store) Save(ctx context.Context, t *task.Task) (*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	saved := task.Task{
		ID:          s.nextID,
		Title:       t.Title,
		Description: t.Description,
	}
	s.tasks[saved.ID] = saved

	return &saved, nil
}

// Len returns the number of stored tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
