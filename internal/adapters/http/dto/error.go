package dto

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tdd/todo-app/internal/domain"
	"github.com/tdd/todo-app/internal/platform/logging"
)

const (
	contentTypeProblem = "application/problem+json"
	problemTypeDefault = "about:blank"

	// detailInternal stands in for the message of any unclassified error.
	detailInternal = "an unexpected error occurred"
)

// ErrorResponse is an RFC 9457 Problem Details body.
type ErrorResponse struct {
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Status   int           `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Instance string        `json:"instance,omitempty"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail points at one offending input, e.g. "body.title".
type ErrorDetail struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// statusBySentinel is checked in order; the first sentinel err wraps wins.
var statusBySentinel = []struct {
	sentinel error
	status   int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrUnavailable, http.StatusServiceUnavailable},
}

// NewErrorResponse classifies err by its domain sentinel. Unclassified errors
// become a 500 whose detail hides the original message. A
// *domain.ValidationError adds one entry to Errors.
func NewErrorResponse(r *http.Request, err error) ErrorResponse {
	status := statusOf(err)

	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = detailInternal
	}
	resp := problem(r, status, detail)

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Errors = []ErrorDetail{{Location: fieldLocation(verr.Field), Message: verr.Message}}
	}
	return resp
}

// WriteErrorResponse writes the Problem Details body for err.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	write(w, r, NewErrorResponse(r, err))
}

// WriteStatusResponse writes a Problem Details body for a status produced by
// the transport itself, such as 404 or 429.
func WriteStatusResponse(w http.ResponseWriter, r *http.Request, status int, detail string) {
	write(w, r, problem(r, status, detail))
}

func problem(r *http.Request, status int, detail string) ErrorResponse {
	return ErrorResponse{
		Type:     problemTypeDefault,
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: r.RequestURI,
	}
}

func write(w http.ResponseWriter, r *http.Request, resp ErrorResponse) {
	w.Header().Set("Content-Type", contentTypeProblem)
	w.WriteHeader(resp.Status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		ctx := r.Context()
		logging.FromContext(ctx).ErrorContext(ctx, "encoding problem response",
			slog.Int("status", resp.Status),
			slog.Any("error", err),
		)
	}
}

func statusOf(err error) int {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.sentinel) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// fieldLocation maps a field name to its location in the request body. The
// empty field names the body itself.
func fieldLocation(field string) string {
	if field == "" {
		return "body"
	}
	return "body." + field
}
