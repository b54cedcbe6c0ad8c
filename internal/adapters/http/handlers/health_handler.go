package handlers

import (
	"log/slog"
	"net/http"

	"github.com/tdd/todo-app/internal/adapters/http/dto"
	"github.com/tdd/todo-app/internal/platform/logging"
	"github.com/tdd/todo-app/internal/ports"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	registry ports.HealthRegistry
}

func NewHealthHandler(registry ports.HealthRegistry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Liveness answers GET /health/live. The process is up if it can answer.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.HealthResponse{Status: dto.HealthOK})
}

// Readiness answers GET /health/ready with 200 when every registered check
// passes and 503 otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	report := h.registry.CheckAll(r.Context())

	if !report.Healthy() {
		resp := dto.ToReadinessResponse(report)
		logging.FromContext(r.Context()).WarnContext(r.Context(), "readiness check failed",
			slog.Any("checks", resp.Checks),
		)
		writeJSON(w, r, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ToReadinessResponse(report))
}
