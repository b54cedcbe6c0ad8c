// Package task holds the Task entity and its validation rules.
package task

import (
	"github.com/tdd/todo-app/internal/domain"
)

// Validation messages returned to callers verbatim.
const (
	MsgTitleRequired       = "Title cannot be null or empty"
	MsgDescriptionRequired = "Description cannot be null or empty"
)

// Task is a unit of work created through the API. ID is zero until a
// TaskStore persists the task and assigns one.
type Task struct {
	ID          int64
	Title       string
	Description string
}

// Validate checks the required fields. Title is checked before description
// and only the first failure is reported. Values are not trimmed, so a
// whitespace-only title is accepted.
func (t *Task) Validate() error {
	if t.Title == "" {
		return &domain.ValidationError{Field: "title", Message: MsgTitleRequired}
	}
	if t.Description == "" {
		return &domain.ValidationError{Field: "description", Message: MsgDescriptionRequired}
	}
	return nil
}
