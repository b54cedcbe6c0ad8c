package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tdd/todo-app/internal/adapters/clients/acl/task"
	domaintask "github.com/tdd/todo-app/internal/domain/task"
	"github.com/tdd/todo-app/internal/platform/httpclient"
	"github.com/tdd/todo-app/internal/ports"
)

var (
	_ ports.TaskStore     = (*TaskClient)(nil)
	_ ports.HealthChecker = (*TaskClient)(nil)
)

const (
	tasksPath    = "/tasks"
	livenessPath = "/health/live"
)

// TaskClient is a [ports.TaskStore] that persists tasks by calling another
// task API. Save is a POST, which the client never retries, so a task is
// created at most once per call.
type TaskClient struct {
	client *httpclient.Client
	logger *slog.Logger
}

// NewTaskClient wraps client, whose BaseURL is the downstream API root
// (e.g. "http://task-api:8080").
func NewTaskClient(client *httpclient.Client, logger *slog.Logger) *TaskClient {
	return &TaskClient{client: client, logger: logger}
}

// Save creates t downstream and returns the task as the downstream stored it.
func (c *TaskClient) Save(ctx context.Context, t *domaintask.Task) (*domaintask.Task, error) {
	var out task.TaskDTO
	if err := c.call(ctx, http.MethodPost, tasksPath, http.StatusCreated, task.ToCreateTaskRequest(t), &out); err != nil {
		return nil, err
	}

	saved := task.ToDomainTask(&out)
	return &saved, nil
}

// Name returns the downstream service name.
func (c *TaskClient) Name() string {
	return c.client.Name()
}

// HealthCheck fails fast while the circuit breaker is open or half-open.
// Otherwise it asks the downstream liveness endpoint.
func (c *TaskClient) HealthCheck(ctx context.Context) error {
	if err := c.client.HealthCheck(ctx); err != nil {
		return err
	}
	return c.call(ctx, http.MethodGet, livenessPath, http.StatusOK, nil, nil)
}

// Close releases nothing; the transport owns idle connections.
func (c *TaskClient) Close() error {
	return nil
}

// call sends in as JSON (when non-nil) and decodes a want-status response
// into out (when non-nil). Any other outcome becomes a domain error.
func (c *TaskClient) call(ctx context.Context, method, path string, want int, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.client.BaseURL()+path, body)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if resp != nil {
		defer c.drain(ctx, resp)
	}

	switch {
	case resp != nil && resp.StatusCode != want:
		// Also reached when retries ran out on a 5xx: the status says more
		// than the retry error.
		c.logger.WarnContext(ctx, "downstream rejected request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return errorFromResponse(resp)
	case err != nil:
		c.logger.WarnContext(ctx, "downstream request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return errorFromTransport(method, path, err)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *TaskClient) drain(ctx context.Context, resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProblemSize))
	if err := resp.Body.Close(); err != nil {
		c.logger.DebugContext(ctx, "closing downstream response", slog.Any("error", err))
	}
}
