// Package domain holds the error vocabulary shared by every layer. Adapters
// translate their own failures into these sentinels so the HTTP edge can map
// them to a status without knowing which backend failed.
package domain

import "errors"

var (
	// ErrValidation marks input the service refuses to accept.
	ErrValidation = errors.New("validation error")
	// ErrConflict marks a write that collides with existing state.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable marks a backend that could not be reached or refused
	// the call for transient reasons.
	ErrUnavailable = errors.New("unavailable")
)

// ValidationError names the first offending field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

// Error is the bare message; callers see it as-is in problem responses.
func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }
