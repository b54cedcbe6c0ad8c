package httpclient_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/tdd/todo-app/internal/platform/config"
	"github.com/tdd/todo-app/internal/platform/httpclient"
	"github.com/tdd/todo-app/internal/platform/telemetry"
)

func clientConfig(baseURL string) *config.ClientConfig {
	return &config.ClientConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 5 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       time.Minute,
			HalfOpenLimit: 1,
		},
	}
}

// countingServer answers each request with statuses[n], repeating the last
// status once the list runs out, and counts requests.
func countingServer(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(hits.Add(1)) - 1
		w.WriteHeader(statuses[min(n, len(statuses)-1)])
		_, _ = io.WriteString(w, "attempt body")
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newClient(cfg *config.ClientConfig) *httpclient.Client {
	return httpclient.New(cfg, "task-api", nil, slog.New(slog.DiscardHandler))
}

func send(t *testing.T, c *httpclient.Client, ctx context.Context, method, url, body string) (*http.Response, error) {
	t.Helper()

	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	require.NoError(t, err)

	resp, err := c.Do(req)
	if resp != nil {
		t.Cleanup(func() { _ = resp.Body.Close() })
	}
	return resp, err
}

func TestDo_ReturnsResponse(t *testing.T) {
	t.Parallel()

	srv, hits := countingServer(t, http.StatusCreated)
	c := newClient(clientConfig(srv.URL))

	resp, err := send(t, c, t.Context(), http.MethodPost, srv.URL+"/tasks", `{"title":"a"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "attempt body", string(body))
	assert.Equal(t, int32(1), hits.Load())
}

func TestDo_RetriesIdempotentMethods(t *testing.T) {
	t.Parallel()

	for _, status := range []int{
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
	} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			t.Parallel()

			srv, hits := countingServer(t, status, http.StatusOK)
			resp, err := send(t, newClient(clientConfig(srv.URL)), t.Context(), http.MethodGet, srv.URL+"/health/live", "")

			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, int32(2), hits.Load())
		})
	}
}

func TestDo_ClientErrorsNotRetried(t *testing.T) {
	t.Parallel()

	srv, hits := countingServer(t, http.StatusConflict)
	resp, err := send(t, newClient(clientConfig(srv.URL)), t.Context(), http.MethodGet, srv.URL+"/tasks", "")

	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDo_ExhaustedRetriesReturnLastResponse(t *testing.T) {
	t.Parallel()

	srv, hits := countingServer(t, http.StatusServiceUnavailable)
	resp, err := send(t, newClient(clientConfig(srv.URL)), t.Context(), http.MethodGet, srv.URL+"/tasks", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "task-api responded 503")
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)
	assert.Equal(t, "attempt body", string(body), "last body stays readable")
	assert.Equal(t, int32(3), hits.Load())
}

func TestDo_PostSentOnce(t *testing.T) {
	t.Parallel()

	srv, hits := countingServer(t, http.StatusInternalServerError, http.StatusCreated)
	resp, err := send(t, newClient(clientConfig(srv.URL)), t.Context(), http.MethodPost, srv.URL+"/tasks", `{"title":"a"}`)

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDo_BodyReplayedOnRetry(t *testing.T) {
	t.Parallel()

	var bodies []string
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	resp, err := send(t, newClient(clientConfig(srv.URL)), t.Context(), http.MethodPut, srv.URL+"/tasks/1", `{"title":"again"}`)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{`{"title":"again"}`, `{"title":"again"}`}, bodies)
}

func TestDo_RetryAfterCappedAtMaxInterval(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	start := time.Now()
	resp, err := send(t, newClient(clientConfig(srv.URL)), t.Context(), http.MethodGet, srv.URL+"/tasks", "")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDo_PropagatesIDs(t *testing.T) {
	t.Parallel()

	got := make(chan http.Header, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Clone()
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)
	c := newClient(clientConfig(srv.URL))

	ctx := httpclient.WithCorrelationID(httpclient.WithRequestID(t.Context(), "req-9"), "corr-9")
	_, err := send(t, c, ctx, http.MethodPost, srv.URL+"/tasks", "{}")
	require.NoError(t, err)

	h := <-got
	assert.Equal(t, "req-9", h.Get("X-Request-ID"))
	assert.Equal(t, "corr-9", h.Get("X-Correlation-ID"))

	_, err = send(t, c, t.Context(), http.MethodPost, srv.URL+"/tasks", "{}")
	require.NoError(t, err)

	h = <-got
	assert.Empty(t, h.Get("X-Request-ID"))
	assert.Empty(t, h.Get("X-Correlation-ID"))
}

func TestDo_RateLimiterWaitFails(t *testing.T) {
	t.Parallel()

	srv, hits := countingServer(t, http.StatusOK)
	cfg := clientConfig(srv.URL)
	cfg.RateLimit.RequestsPerSecond = 0.001
	cfg.RateLimit.BurstSize = 1
	c := newClient(cfg)

	_, err := send(t, c, t.Context(), http.MethodGet, srv.URL+"/tasks", "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = send(t, c, ctx, http.MethodGet, srv.URL+"/tasks", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
	assert.Equal(t, int32(1), hits.Load())
}

func TestDo_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	srv, hits := countingServer(t, http.StatusInternalServerError)
	c := newClient(clientConfig(srv.URL))

	for range 3 {
		_, err := send(t, c, t.Context(), http.MethodPost, srv.URL+"/tasks", "{}")
		require.Error(t, err)
	}

	resp, err := send(t, c, t.Context(), http.MethodPost, srv.URL+"/tasks", "{}")
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Nil(t, resp)
	assert.Equal(t, int32(3), hits.Load(), "open breaker must not reach the server")

	hcErr := c.HealthCheck(t.Context())
	require.Error(t, hcErr)
	assert.Contains(t, hcErr.Error(), "open")
}

func TestDo_BreakerHalfOpensThenRecovers(t *testing.T) {
	t.Parallel()

	srv, _ := countingServer(t, http.StatusInternalServerError, http.StatusCreated)
	cfg := clientConfig(srv.URL)
	cfg.CircuitBreaker.MaxFailures = 1
	cfg.CircuitBreaker.Timeout = 30 * time.Millisecond
	c := newClient(cfg)

	_, err := send(t, c, t.Context(), http.MethodPost, srv.URL+"/tasks", "{}")
	require.Error(t, err)
	require.ErrorContains(t, c.HealthCheck(t.Context()), "failing")

	require.Eventually(t, func() bool {
		err := c.HealthCheck(t.Context())
		return err != nil && strings.Contains(err.Error(), "half-open")
	}, time.Second, 5*time.Millisecond)

	resp, err := send(t, c, t.Context(), http.MethodPost, srv.URL+"/tasks", "{}")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NoError(t, c.HealthCheck(t.Context()))
}

func TestDo_CallerCancellationKeepsBreakerClosed(t *testing.T) {
	t.Parallel()

	srv, _ := countingServer(t, http.StatusOK)
	cfg := clientConfig(srv.URL)
	cfg.CircuitBreaker.MaxFailures = 1
	c := newClient(cfg)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := send(t, c, ctx, http.MethodGet, srv.URL+"/tasks", "")
	require.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, c.HealthCheck(t.Context()))
}

func TestDo_RecordsClientMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(t.Context()) })
	metrics, err := telemetry.NewMetrics(mp, "test")
	require.NoError(t, err)

	srv, _ := countingServer(t, http.StatusCreated)
	c := httpclient.New(clientConfig(srv.URL), "task-api", metrics, slog.New(slog.DiscardHandler))
	_, err = send(t, c, t.Context(), http.MethodPost, srv.URL+"/tasks", "{}")
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))

	var found bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http.client.request.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			require.Len(t, sum.DataPoints, 1)

			attrs := sum.DataPoints[0].Attributes
			peer, _ := attrs.Value(telemetry.AttrPeerService)
			result, _ := attrs.Value(telemetry.AttrResult)
			status, _ := attrs.Value(telemetry.AttrHTTPStatus)
			assert.Equal(t, "task-api", peer.AsString())
			assert.Equal(t, "success", result.AsString())
			assert.Equal(t, int64(http.StatusCreated), status.AsInt64())
			found = true
		}
	}
	assert.True(t, found, "http.client.request.total not recorded")
}

func TestClient_Accessors(t *testing.T) {
	t.Parallel()

	c := newClient(clientConfig("http://task-api:8080"))
	assert.Equal(t, "task-api", c.Name())
	assert.Equal(t, "http://task-api:8080", c.BaseURL())
	assert.NoError(t, c.HealthCheck(t.Context()))
}
