package handlers

import (
	"net/http"

	"github.com/tdd/todo-app/internal/adapters/http/dto"
	"github.com/tdd/todo-app/internal/ports"
)

// TaskHandler handles HTTP requests for task creation.
type TaskHandler struct {
	service ports.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given service port.
func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// CreateTask handles POST /tasks. Field validation belongs to the service;
// the handler only rejects bodies that are not JSON.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTaskRequest
	if !readJSON(w, r, &req) {
		return
	}

	created, err := h.service.CreateTask(r.Context(), req.ToTask())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.ToTaskResponse(created))
}
