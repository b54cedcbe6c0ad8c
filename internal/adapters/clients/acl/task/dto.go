// Package task implements the Anti-Corruption Layer translators for the
// downstream task API's task resources.
package task

// TaskDTO matches the downstream Task schema.
type TaskDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// CreateTaskRequestDTO matches the downstream CreateTaskRequest schema.
type CreateTaskRequestDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
