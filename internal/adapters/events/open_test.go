package events_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/tdd/todo-app/internal/adapters/events"
	"github.com/tdd/todo-app/internal/platform/config"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)

	none, err := events.Open(&config.EventsConfig{Driver: config.EventsDriverNone}, nil, logger)
	if err != nil {
		t.Fatalf("Open(none) error = %v", err)
	}
	if _, ok := none.(events.Nop); !ok {
		t.Errorf("Open(none) = %T, want events.Nop", none)
	}

	logPub, err := events.Open(&config.EventsConfig{Driver: config.EventsDriverLog}, nil, logger)
	if err != nil {
		t.Fatalf("Open(log) error = %v", err)
	}
	if p, ok := logPub.(*events.Publisher); !ok || p.Name() != "log" {
		t.Errorf("Open(log) = %T, want *events.Publisher over the log broker", logPub)
	}

	_, err = events.Open(&config.EventsConfig{Driver: "kafka"}, nil, logger)
	if !errors.Is(err, events.ErrUnknownDriver) {
		t.Errorf("Open(kafka) error = %v, want ErrUnknownDriver", err)
	}
}
