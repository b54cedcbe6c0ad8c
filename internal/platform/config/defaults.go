package config

const (
	defaultServerPort = 8080

	defaultRetryMaxAttempts = 3
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1

	defaultPostgresMaxConns = 10
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":             "0.0.0.0",
		"server.port":             defaultServerPort,
		"server.read_timeout":     "5s",
		"server.write_timeout":    "10s",
		"server.idle_timeout":     "120s",
		"server.request_timeout":  "30s",
		"server.shutdown_timeout": "15s",

		"log.level":  "info",
		"log.format": "json",

		"rate_limit.requests_per_second": 0,
		"rate_limit.burst_size":          0,

		"store.driver":                          StoreDriverMemory,
		"store.auto_migrate":                    true,
		"store.sqlite.path":                     "data/tasks.db",
		"store.postgres.url":                    "",
		"store.postgres.max_conns":              defaultPostgresMaxConns,
		"store.redis.url":                       "",
		"store.redis.key_prefix":                "todo",
		"store.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"store.circuit_breaker.timeout":         "30s",
		"store.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,

		"store.remote.base_url":                        "http://localhost:8081",
		"store.remote.timeout":                         "30s",
		"store.remote.retry.max_attempts":              defaultRetryMaxAttempts,
		"store.remote.retry.initial_interval":          "100ms",
		"store.remote.retry.max_interval":              "10s",
		"store.remote.retry.multiplier":                defaultRetryMultiplier,
		"store.remote.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"store.remote.circuit_breaker.timeout":         "30s",
		"store.remote.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"store.remote.rate_limit.requests_per_second":  0,
		"store.remote.rate_limit.burst_size":           0,

		"events.driver":            EventsDriverLog,
		"events.rabbitmq.url":      "",
		"events.rabbitmq.exchange": "todo.events",

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "todo-app",
	}
}
