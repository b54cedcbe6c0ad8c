package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/samber/do/v2"

	"github.com/tdd/todo-app/internal/adapters/events"
	adapthttp "github.com/tdd/todo-app/internal/adapters/http"
	"github.com/tdd/todo-app/internal/adapters/store"
	"github.com/tdd/todo-app/internal/platform/logging"
	"github.com/tdd/todo-app/internal/platform/telemetry"
	"github.com/tdd/todo-app/internal/ports"
)

const otelShutdownTimeout = 5 * time.Second

// runServe serves HTTP until ctx is canceled by a signal or the server fails.
func runServe(ctx context.Context, flags *rootFlags) error {
	// Bootstrap: config, logger, telemetry.
	cfg, err := flags.load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr,
		logging.WithAttrs(slog.String("service", cfg.Telemetry.ServiceName)),
	)
	slog.SetDefault(logger)

	otel, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer flushTelemetry(otel, logger)

	// Outbound adapters hold connections, so they are opened up front and
	// closed on every exit path.
	taskStore, err := store.Open(ctx, &cfg.Store, otel.Metrics, logger)
	if err != nil {
		return fmt.Errorf("opening task store: %w", err)
	}
	defer closeResource(logger, "task store", taskStore)

	publisher, err := events.Open(&cfg.Events, otel.Metrics, logger)
	if err != nil {
		return fmt.Errorf("opening event publisher: %w", err)
	}
	defer closeResource(logger, "event publisher", publisher)

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.Metrics)
	do.ProvideValue[ports.TaskStore](injector, taskStore)
	do.ProvideValue[ports.TaskEventPublisher](injector, publisher)

	registerDependencies(injector, cfg, logger)

	// Resolve the server (eagerly wires the full graph).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	for _, component := range []any{taskStore, publisher} {
		if hc, ok := component.(ports.HealthChecker); ok {
			registry.Register(hc)
		}
	}

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func closeResource(logger *slog.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error(name+" close error", slog.Any("error", err))
	}
}

func flushTelemetry(otel *telemetry.Providers, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer cancel()

	if err := otel.Shutdown(ctx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}
}
