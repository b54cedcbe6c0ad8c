// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"log/slog"

	"github.com/tdd/todo-app/internal/domain/task"
	"github.com/tdd/todo-app/internal/ports"
)

// Compile-time check that TaskService implements ports.TaskService.
var _ ports.TaskService = (*TaskService)(nil)

// TaskService implements ports.TaskService. It sequences validation and a
// single persistence call, and announces created tasks. Errors from the
// validator and the store are returned exactly as received.
type TaskService struct {
	store     ports.TaskStore
	publisher ports.TaskEventPublisher
	logger    *slog.Logger
}

// NewTaskService creates a TaskService backed by the given store. The
// publisher may be nil, in which case no events are emitted. A nil logger
// discards all output.
func NewTaskService(store ports.TaskStore, publisher ports.TaskEventPublisher, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TaskService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateTask validates the candidate and hands it to the store exactly once.
// Whatever the store returns is returned verbatim. Creation is not
// deduplicated: identical candidates produce distinct tasks.
func (s *TaskService) CreateTask(ctx context.Context, candidate *task.Task) (*task.Task, error) {
	s.logger.DebugContext(ctx, "creating task")

	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	created, err := s.store.Save(ctx, candidate)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save task",
			slog.String("operation", "CreateTask"),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.announce(ctx, created)
	return created, nil
}

// announce publishes a task.created event. The task is already persisted,
// so a publish failure is logged and does not fail the request.
func (s *TaskService) announce(ctx context.Context, created *task.Task) {
	if s.publisher == nil || created == nil {
		return
	}
	if err := s.publisher.PublishTaskCreated(ctx, created); err != nil {
		s.logger.WarnContext(ctx, "failed to publish task created event",
			slog.String("operation", "CreateTask"),
			slog.Int64("task_id", created.ID),
			slog.Any("error", err),
		)
	}
}
