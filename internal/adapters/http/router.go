// Package http is the inbound HTTP adapter: the route table and the
// listener lifecycle. Handlers, DTOs and middleware live in subpackages.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tdd/todo-app/internal/adapters/http/dto"
	"github.com/tdd/todo-app/internal/adapters/http/handlers"
)

// NewRouter registers
//
//	GET  /health/live
//	GET  /health/ready
//	POST /tasks
//
// behind middlewares, outermost first. Unknown paths and methods get
// Problem Details bodies like every other error.
func NewRouter(
	tasks *handlers.TaskHandler,
	health *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewares...)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		dto.WriteStatusResponse(w, req, http.StatusNotFound, "no route for "+req.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		dto.WriteStatusResponse(w, req, http.StatusMethodNotAllowed, req.Method+" is not supported on "+req.URL.Path)
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", health.Liveness)
		r.Get("/ready", health.Readiness)
	})
	r.Post("/tasks", tasks.CreateTask)

	return r
}
