package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tdd/todo-app/internal/adapters/http/dto"
	"github.com/tdd/todo-app/internal/domain"
	"github.com/tdd/todo-app/internal/platform/logging"
)

// maxBodyBytes caps a request body at 1 MiB.
const maxBodyBytes = 1 << 20

const msgInvalidJSON = "invalid JSON"

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctx := r.Context()
		logging.FromContext(ctx).ErrorContext(ctx, "encoding response",
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}
}

// readJSON decodes the body into dst. A malformed or oversized body is
// answered with a 400 Problem Details response and readJSON returns false.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{Message: msgInvalidJSON})
		return false
	}
	return true
}
