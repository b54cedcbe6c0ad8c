package main

import (
	"log/slog"
	nethttp "net/http"

	"github.com/samber/do/v2"

	adapthttp "github.com/tdd/todo-app/internal/adapters/http"
	"github.com/tdd/todo-app/internal/adapters/http/handlers"
	"github.com/tdd/todo-app/internal/adapters/http/middleware"
	"github.com/tdd/todo-app/internal/app"
	"github.com/tdd/todo-app/internal/platform/config"
	"github.com/tdd/todo-app/internal/platform/health"
	"github.com/tdd/todo-app/internal/platform/telemetry"
	"github.com/tdd/todo-app/internal/ports"
)

// registerDependencies provides everything between the outbound adapters
// and the HTTP server. The task store and event publisher must already be
// in the container.
func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(i do.Injector) (ports.TaskService, error) {
		store := do.MustInvoke[ports.TaskStore](i)
		publisher := do.MustInvoke[ports.TaskEventPublisher](i)
		return app.NewTaskService(store, publisher, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.TaskHandler, error) {
		svc := do.MustInvoke[ports.TaskService](i)
		return handlers.NewTaskHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		taskH := do.MustInvoke[*handlers.TaskHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(taskH, healthH,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.RateLimit(cfg.RateLimit, logger),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.RequestTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
