package config

import (
	"errors"
	"fmt"

	"github.com/tdd/todo-app/internal/platform/logging"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.RateLimit.validate("rate_limit"),
		c.Store.validate(),
		c.Events.validate(),
		c.Telemetry.validate(),
	)
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	if s.RequestTimeout < 0 {
		errs = append(errs, errors.New("server.request_timeout must not be negative"))
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must not be negative"))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	if _, err := logging.ParseLevel(l.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	switch l.Format {
	case "json", "text":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (r *RateLimitConfig) validate(prefix string) error {
	var errs []error

	if r.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("%s.requests_per_second must not be negative, got %f", prefix, r.RequestsPerSecond))
	}
	if r.RequestsPerSecond > 0 && r.BurstSize < 1 {
		errs = append(errs, fmt.Errorf("%s.burst_size must be >= 1 when limiting is enabled, got %d", prefix, r.BurstSize))
	}

	return errors.Join(errs...)
}

func (s *StoreConfig) validate() error {
	var errs []error

	switch s.Driver {
	case StoreDriverMemory:
		// No settings required.
	case StoreDriverSQLite:
		if s.SQLite.Path == "" {
			errs = append(errs, errors.New("store.sqlite.path must not be empty when driver is sqlite"))
		}
	case StoreDriverPostgres:
		if s.Postgres.URL == "" {
			errs = append(errs, errors.New("store.postgres.url must not be empty when driver is postgres"))
		}
		if s.Postgres.MaxConns < 0 {
			errs = append(errs, fmt.Errorf("store.postgres.max_conns must not be negative, got %d", s.Postgres.MaxConns))
		}
	case StoreDriverRedis:
		if s.Redis.URL == "" {
			errs = append(errs, errors.New("store.redis.url must not be empty when driver is redis"))
		}
		if s.Redis.KeyPrefix == "" {
			errs = append(errs, errors.New("store.redis.key_prefix must not be empty when driver is redis"))
		}
	case StoreDriverRemote:
		errs = append(errs, s.Remote.validate("store.remote"))
	default:
		errs = append(errs, fmt.Errorf("store.driver must be one of: memory, sqlite, postgres, redis, remote; got %q", s.Driver))
	}

	if s.Driver != StoreDriverMemory && s.Driver != StoreDriverRemote {
		errs = append(errs, s.CircuitBreaker.validate("store.circuit_breaker"))
	}

	return errors.Join(errs...)
}

func (cl *ClientConfig) validate(prefix string) error {
	var errs []error

	if cl.BaseURL == "" {
		errs = append(errs, fmt.Errorf("%s.base_url must not be empty", prefix))
	}
	if cl.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s.timeout must be positive", prefix))
	}
	if cl.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("%s.retry.max_attempts must be >= 1, got %d", prefix, cl.Retry.MaxAttempts))
	}
	if cl.Retry.Multiplier <= 0 {
		errs = append(errs, fmt.Errorf("%s.retry.multiplier must be positive, got %f", prefix, cl.Retry.Multiplier))
	}
	errs = append(errs,
		cl.CircuitBreaker.validate(prefix+".circuit_breaker"),
		cl.RateLimit.validate(prefix+".rate_limit"),
	)

	return errors.Join(errs...)
}

func (cb *CircuitBreakerConfig) validate(prefix string) error {
	var errs []error

	if cb.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("%s.max_failures must be >= 1, got %d", prefix, cb.MaxFailures))
	}
	if cb.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s.timeout must be positive", prefix))
	}

	return errors.Join(errs...)
}

func (e *EventsConfig) validate() error {
	switch e.Driver {
	case EventsDriverNone, EventsDriverLog:
		return nil
	case EventsDriverRabbitMQ:
		var errs []error
		if e.RabbitMQ.URL == "" {
			errs = append(errs, errors.New("events.rabbitmq.url must not be empty when driver is rabbitmq"))
		}
		if e.RabbitMQ.Exchange == "" {
			errs = append(errs, errors.New("events.rabbitmq.exchange must not be empty when driver is rabbitmq"))
		}
		return errors.Join(errs...)
	default:
		return fmt.Errorf("events.driver must be one of: none, log, rabbitmq; got %q", e.Driver)
	}
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}

	return errors.Join(errs...)
}
