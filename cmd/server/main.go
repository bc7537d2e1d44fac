// Package main implements the entry point for the taskflow API server,
// which lets registered users manage their own tasks over a JSON API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/redact"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskflow-api: %v\n", err)
		os.Exit(1)
	}
}

// run loads configuration, sets up logging and serves until SIGINT or
// SIGTERM. Only configuration that cannot be parsed and a port that cannot
// be bound are fatal; a missing database or signing secret is reported and
// the server starts anyway.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("environment", cfg.Server.Environment),
		slog.String("database_url", redact.DatabaseURL(cfg.Database.URL)))
	reportProblems(log, cfg.Problems())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApplication(cfg, log, postgres.Open(cfg.Database))
	return app.Run(ctx)
}

// reportProblems logs every startup problem at error level with the
// remediation hint, so an operator cannot miss it.
func reportProblems(log *slog.Logger, problems []config.Problem) {
	for _, p := range problems {
		log.Error("configuration problem",
			slog.String("setting", p.Key),
			slog.String("impact", p.Impact),
			slog.String("hint", p.Hint))
	}
}
