// Package main is the entry point for the service. It exposes a cobra CLI
// whose serve command wires all dependencies using samber/do v2, starts the
// HTTP server, and handles graceful shutdown on SIGINT/SIGTERM. The migrate
// command applies the task store schema and exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tdd/todo-app/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// rootFlags are shared by every subcommand.
type rootFlags struct {
	profile   string
	configDir string
	dotEnv    string
}

func (f *rootFlags) load() (*config.Config, error) {
	if f.profile == "" {
		return nil, errors.New("profile is required: pass --profile or set APP_PROFILE (e.g. local, dev, prod)")
	}
	cfg, err := config.Load(f.profile,
		config.WithConfigDir(f.configDir),
		config.WithDotEnv(f.dotEnv),
	)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "todo-app",
		Short:         "Task creation service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.profile, "profile", "p", os.Getenv("APP_PROFILE"), "config profile to load (env APP_PROFILE)")
	pf.StringVar(&flags.configDir, "config-dir", "configs", "directory holding base.yaml and profile files")
	pf.StringVar(&flags.dotEnv, "env-file", ".env", "optional dotenv file loaded before APP_* variables")

	root.AddCommand(newServeCmd(flags), newMigrateCmd(flags))
	return root
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
}

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the task store schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), flags, cmd.OutOrStdout())
		},
	}
}
