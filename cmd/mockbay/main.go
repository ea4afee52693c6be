// mockbay CLI - starts the mock endpoint server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mockbay/mockbay/pkg/config"
	"github.com/mockbay/mockbay/pkg/logging"
	"github.com/mockbay/mockbay/pkg/server"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		inMemory   bool
	)

	root := &cobra.Command{
		Use:   "mockbay",
		Short: "Project-scoped HTTP mock endpoint server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, inMemory)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().BoolVar(&inMemory, "in-memory", false, "use in-memory storage instead of SQLite")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock and admin listeners (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, inMemory)
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mockbay %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		},
	}

	root.AddCommand(serve, version)
	return root
}

func runServe(configPath string, inMemory bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if inMemory {
		cfg.InMemory = true
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
	})

	srv, err := server.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("mockbay starting", "version", Version)
	return srv.Run(ctx)
}
