package task

import domaintask "github.com/tdd/todo-app/internal/domain/task"

// ToCreateTaskRequest converts a domain task into the downstream create
// payload. The ID is never sent; the downstream assigns it.
func ToCreateTaskRequest(t *domaintask.Task) CreateTaskRequestDTO {
	return CreateTaskRequestDTO{
		Title:       t.Title,
		Description: t.Description,
	}
}

// ToDomainTask converts a downstream task into a domain task. Fields the
// domain does not model (created_at) are dropped.
func ToDomainTask(dto *TaskDTO) domaintask.Task {
	return domaintask.Task{
		ID:          dto.ID,
		Title:       dto.Title,
		Description: dto.Description,
	}
}
