// Package main implements storecheck, an operator tool that makes one
// connection attempt with the server's configuration, explains a failure,
// and can apply pending schema migrations.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/phrazzld/taskflow-api/internal/store"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "storecheck: %v\n", err)
		os.Exit(1)
	}
}

// run parses args, loads configuration and performs the check until done
// or interrupted.
func run(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("storecheck", flag.ContinueOnError)
	migrate := flags.Bool("migrate", false, "Apply pending migrations after connecting")
	if err := flags.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	return check(ctx, cfg, postgres.Open(cfg.Database), *migrate, out, log)
}

// check makes a single connection attempt and writes a human-readable
// report to out. With migrate set, pending migrations are applied on the
// established connection.
func check(
	ctx context.Context,
	cfg *config.Config,
	open postgres.OpenFunc,
	migrate bool,
	out io.Writer,
	log *slog.Logger,
) error {
	for _, p := range cfg.Problems() {
		fmt.Fprintf(out, "problem: %s: %s\n  hint: %s\n", p.Key, p.Impact, p.Hint)
	}

	fmt.Fprintf(out, "database: %s\n", redact.DatabaseURL(cfg.Database.URL))

	var opts []postgres.ConnectorOption
	opts = append(opts, postgres.WithLogger(log))
	if migrate {
		opts = append(opts, postgres.WithHook(postgres.MigrationHook(log)))
	}

	state := store.NewConnectionState()
	connector := postgres.NewConnector(state, open, opts...)
	defer func() {
		if err := connector.Close(); err != nil {
			log.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	if connector.Establish(ctx, 1, 0) != store.StateConnected {
		status := state.Status()
		class := postgres.ClassifyFailure(status.LastError)
		fmt.Fprintf(out, "status: %s (%s)\n  hint: %s\n", status.State, class, class.Hint())
		return fmt.Errorf("database unreachable: %s", redact.Error(status.LastError))
	}

	fmt.Fprintf(out, "status: %s\n", store.StateConnected)
	if migrate {
		fmt.Fprintln(out, "migrations: applied")
	}
	return nil
}
