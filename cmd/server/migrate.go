package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tdd/todo-app/internal/adapters/store"
	"github.com/tdd/todo-app/internal/platform/logging"
)

// runMigrate opens the configured store without auto-migration, applies its
// schema and closes it again.
func runMigrate(ctx context.Context, flags *rootFlags, out io.Writer) error {
	cfg, err := flags.load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	storeCfg := cfg.Store
	storeCfg.AutoMigrate = false

	s, err := store.Open(ctx, &storeCfg, nil, logger)
	if err != nil {
		return fmt.Errorf("opening task store: %w", err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			logger.Error("closing task store", slog.Any("error", cerr))
		}
	}()

	applied, err := store.Migrate(ctx, s)
	if err != nil {
		return err
	}

	if applied {
		_, _ = fmt.Fprintf(out, "schema applied to %s store\n", cfg.Store.Driver)
	} else {
		_, _ = fmt.Fprintf(out, "%s store has no schema, nothing to do\n", cfg.Store.Driver)
	}
	return nil
}
