package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/tdd/todo-app/internal/platform/config"
	"github.com/tdd/todo-app/internal/platform/logging"
)

// retryPolicy is exponential backoff with ±25% jitter. A Retry-After header
// on 429 or 503 replaces the computed delay, capped at maxInterval.
type retryPolicy struct {
	attempts   int
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	return retryPolicy{
		attempts:   max(cfg.MaxAttempts, 1),
		initial:    cfg.InitialInterval,
		max:        cfg.MaxInterval,
		multiplier: cfg.Multiplier,
		jitter:     0.25,
	}
}

// attemptsFor returns how many times a request may be sent. Non-idempotent
// methods (POST, PATCH) are sent once: a replayed create could duplicate it.
func (p retryPolicy) attemptsFor(method string) int {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace,
		http.MethodPut, http.MethodDelete:
		return p.attempts
	default:
		return 1
	}
}

// delay returns the wait before retry n (1 for the first retry). resp is the
// response that triggered the retry, nil after a transport error.
func (p retryPolicy) delay(n int, resp *http.Response) time.Duration {
	if d, ok := retryAfter(resp); ok {
		return min(d, p.max)
	}

	d := float64(p.initial) * math.Pow(p.multiplier, float64(n-1))
	d = min(d, float64(p.max))
	d += d * p.jitter * (2*rand.Float64() - 1)

	return time.Duration(max(d, 0))
}

// retryAfter reads the delay-seconds form of Retry-After. The HTTP-date form
// is ignored.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return 0, false
	}
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// retryableErr reports whether a transport error is worth another attempt.
// Everything is, except the caller's own cancellation or deadline.
func retryableErr(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// send performs req with retries. The body is buffered so every attempt
// replays it. On a retryable status with no attempts left, the last response
// comes back with its body unread alongside an error.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	attempts := c.retry.attemptsFor(req.Method)

	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		b, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		body = b
	}

	var (
		resp *http.Response
		err  error
	)
	for n := range attempts {
		if n > 0 {
			if werr := c.wait(ctx, req, n, attempts, resp, err); werr != nil {
				return nil, werr
			}
		}
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
			req.ContentLength = int64(len(body))
		}

		resp, err = c.http.Do(req)
		if err != nil {
			if !retryableErr(err) {
				return nil, err
			}
			continue
		}
		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		err = fmt.Errorf("%s responded %d", c.service, resp.StatusCode)
		if n < attempts-1 {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
	}

	return resp, err
}

// wait logs the upcoming retry and sleeps for the policy delay. prev and
// prevErr describe the attempt that just failed.
func (c *Client) wait(ctx context.Context, req *http.Request, n, attempts int, prev *http.Response, prevErr error) error {
	d := c.retry.delay(n, prev)

	logging.FromContext(ctx).WarnContext(ctx, "retrying downstream request",
		slog.String("peer_service", c.service),
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("attempt", n+1),
		slog.Int("max_attempts", attempts),
		slog.Duration("backoff", d),
		slog.Any("error", prevErr),
	)

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
