package dto

import "github.com/tdd/todo-app/internal/ports"

// Health probe states and per-check values.
const (
	HealthOK       = "ok"
	HealthReady    = "ready"
	HealthNotReady = "not_ready"
)

// HealthResponse is the body of both probes. Checks is absent on liveness.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ToReadinessResponse renders a report, replacing each failure with its
// message.
func ToReadinessResponse(report ports.HealthReport) HealthResponse {
	resp := HealthResponse{Status: HealthReady, Checks: make(map[string]string, len(report))}
	for name, err := range report {
		if err != nil {
			resp.Status = HealthNotReady
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = HealthOK
	}
	return resp
}
