package events

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tdd/todo-app/internal/platform/config"
	"github.com/tdd/todo-app/internal/platform/telemetry"
	"github.com/tdd/todo-app/internal/ports"
)

// ErrUnknownDriver is returned for an events.driver value Open does not know.
var ErrUnknownDriver = errors.New("unknown events driver")

// Open builds the publisher selected by cfg.Driver.
func Open(cfg *config.EventsConfig, metrics *telemetry.Metrics, logger *slog.Logger) (ports.TaskEventPublisher, error) {
	switch cfg.Driver {
	case config.EventsDriverNone:
		return Nop{}, nil
	case config.EventsDriverLog:
		return NewPublisher(NewLogBroker(logger), metrics, logger), nil
	case config.EventsDriverRabbitMQ:
		broker, err := DialRabbitMQ(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			return nil, err
		}
		return NewPublisher(broker, metrics, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
