// Package store selects and assembles the configured [ports.TaskStore].
// Backends with a connection are wrapped in [Instrumented] so every save
// passes through a circuit breaker, a span and the save metrics.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tdd/todo-app/internal/adapters/clients/acl"
	"github.com/tdd/todo-app/internal/adapters/store/memory"
	"github.com/tdd/todo-app/internal/adapters/store/postgres"
	"github.com/tdd/todo-app/internal/adapters/store/redis"
	"github.com/tdd/todo-app/internal/adapters/store/sqlite"
	"github.com/tdd/todo-app/internal/platform/config"
	"github.com/tdd/todo-app/internal/platform/httpclient"
	"github.com/tdd/todo-app/internal/platform/telemetry"
	"github.com/tdd/todo-app/internal/ports"
)

// ErrUnknownDriver is returned for a store.driver value Open does not know.
var ErrUnknownDriver = errors.New("unknown store driver")

// Migrator is implemented by stores that own a schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Store is a task store that holds resources until closed.
type Store interface {
	ports.TaskStore
	io.Closer
}

// Open builds the store selected by cfg.Driver. When cfg.AutoMigrate is set
// the schema is applied before Open returns; on failure the store is closed.
func Open(ctx context.Context, cfg *config.StoreConfig, metrics *telemetry.Metrics, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s, err := open(ctx, cfg, metrics, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if _, err := Migrate(ctx, s); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	logger.Info("task store ready", slog.String("driver", cfg.Driver))
	return s, nil
}

func open(ctx context.Context, cfg *config.StoreConfig, metrics *telemetry.Metrics, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case config.StoreDriverMemory:
		return memory.New(), nil

	case config.StoreDriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return NewInstrumented(s, s.Name(), cfg.CircuitBreaker, metrics, logger), nil

	case config.StoreDriverPostgres:
		s, err := postgres.Open(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, err
		}
		return NewInstrumented(s, s.Name(), cfg.CircuitBreaker, metrics, logger), nil

	case config.StoreDriverRedis:
		s, err := redis.Open(ctx, cfg.Redis.URL, cfg.Redis.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return NewInstrumented(s, s.Name(), cfg.CircuitBreaker, metrics, logger), nil

	case config.StoreDriverRemote:
		client := httpclient.New(&cfg.Remote, "task-api", metrics, logger)
		return acl.NewTaskClient(client, logger), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Migrate applies the schema of s when it has one. Decorators exposing
// Unwrap are looked through first. The boolean reports whether the backend
// supported migrations at all.
func Migrate(ctx context.Context, s ports.TaskStore) (bool, error) {
	for {
		w, ok := s.(interface{ Unwrap() ports.TaskStore })
		if !ok {
			break
		}
		s = w.Unwrap()
	}

	m, ok := s.(Migrator)
	if !ok {
		return false, nil
	}
	if err := m.Migrate(ctx); err != nil {
		return true, fmt.Errorf("migrating task store: %w", err)
	}
	return true, nil
}
