package acl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdd/todo-app/internal/domain"
)

func response(status int, contentType, body string) *http.Response {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{StatusCode: status, Header: h, Body: io.NopCloser(strings.NewReader(body))}
}

func TestErrorFromResponse_Sentinels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   error
	}{
		{status: http.StatusBadRequest, want: domain.ErrValidation},
		{status: http.StatusUnprocessableEntity, want: domain.ErrValidation},
		{status: http.StatusConflict, want: domain.ErrConflict},
		{status: http.StatusTooManyRequests, want: domain.ErrUnavailable},
		{status: http.StatusInternalServerError, want: domain.ErrUnavailable},
		{status: http.StatusBadGateway, want: domain.ErrUnavailable},
		{status: http.StatusServiceUnavailable, want: domain.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			t.Parallel()

			err := errorFromResponse(response(tt.status, "", ""))
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), http.StatusText(tt.status))
		})
	}
}

func TestErrorFromResponse_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	err := errorFromResponse(response(http.StatusTeapot, "", ""))

	assert.NotErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrUnavailable)
	assert.Contains(t, err.Error(), "418")
}

func TestErrorFromResponse_ProblemDetail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{
			name:        "detail used",
			contentType: "application/problem+json",
			body:        `{"type":"about:blank","status":409,"detail":"task 7 already exists"}`,
			want:        "task 7 already exists: conflict",
		},
		{
			name:        "media type parameters accepted",
			contentType: "application/problem+json; charset=utf-8",
			body:        `{"detail":"duplicate title"}`,
			want:        "duplicate title: conflict",
		},
		{
			name:        "plain json ignored",
			contentType: "application/json",
			body:        `{"detail":"ignored"}`,
			want:        "Conflict: conflict",
		},
		{
			name:        "malformed body ignored",
			contentType: "application/problem+json",
			body:        `{"detail":`,
			want:        "Conflict: conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := errorFromResponse(response(http.StatusConflict, tt.contentType, tt.body))
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestErrorFromResponse_FieldErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		location  string
		wantField string
	}{
		{name: "body prefix stripped", location: "body.description", wantField: "description"},
		{name: "whole body", location: "body", wantField: ""},
		{name: "bare field", location: "title", wantField: "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			body := fmt.Sprintf(`{"detail":"validation failed","errors":[
				{"location":%q,"message":"Description cannot be null or empty"},
				{"location":"body.other","message":"ignored"}]}`, tt.location)
			err := errorFromResponse(response(http.StatusBadRequest, "application/problem+json", body))

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.EqualError(t, err, "Description cannot be null or empty")
		})
	}
}

func TestErrorFromResponse_NilBody(t *testing.T) {
	t.Parallel()

	resp := &http.Response{
		StatusCode: http.StatusConflict,
		Header:     http.Header{"Content-Type": []string{"application/problem+json"}},
	}
	assert.ErrorIs(t, errorFromResponse(resp), domain.ErrConflict)
}

func TestErrorFromTransport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{name: "canceled", err: context.Canceled},
		{name: "deadline", err: fmt.Errorf("dial: %w", context.DeadlineExceeded)},
		{name: "breaker open", err: gobreaker.ErrOpenState, unavailable: true},
		{name: "refused", err: errors.New("connect: connection refused"), unavailable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := errorFromTransport(http.MethodPost, "/tasks", tt.err)
			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.unavailable, errors.Is(err, domain.ErrUnavailable))
			assert.True(t, strings.HasPrefix(err.Error(), "POST /tasks: "), err.Error())
		})
	}
}
