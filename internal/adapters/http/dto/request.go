package dto

import "github.com/tdd/todo-app/internal/domain/task"

// CreateTaskRequest represents the JSON body for creating a task. An id
// sent by the client has no field to land in and is dropped.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ToTask converts the request into a task candidate with no ID. JSON null
// and missing fields arrive here as empty strings.
func (r *CreateTaskRequest) ToTask() *task.Task {
	return &task.Task{
		Title:       r.Title,
		Description: r.Description,
	}
}
