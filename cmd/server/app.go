package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Connection lifecycle
	state     *store.ConnectionState
	connector *postgres.Connector

	// Stores resolve their handle from state on every call
	userStore store.UserStore
	taskStore store.TaskStore

	// Services
	tokens      auth.TokenService
	hasher      auth.PasswordHasher
	authorizer  *auth.Authorizer
	userService service.UserService
	taskService service.TaskService

	background sync.WaitGroup
}

// newApplication builds the application around an unconnected store. The
// connection is established later by Run, so construction never blocks
// and never fails.
func newApplication(
	cfg *config.Config,
	log *slog.Logger,
	open postgres.OpenFunc,
	opts ...postgres.ConnectorOption,
) *application {
	app := &application{
		config: cfg,
		logger: log,
		state:  store.NewConnectionState(),
	}

	connectorOpts := append([]postgres.ConnectorOption{
		// Both tag their own component
		postgres.WithLogger(log),
		postgres.WithHook(postgres.MigrationHook(log)),
	}, opts...)
	app.connector = postgres.NewConnector(app.state, open, connectorOpts...)

	tokens, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		// Already reported by config.Problems; login and protected routes fail until fixed
		log.Error("token service disabled", slog.String("reason", err.Error()))
		tokens = auth.DisabledTokenService{Cause: err}
	} else {
		log.Info("token service initialized",
			slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))
	}
	app.tokens = tokens
	app.hasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	app.userStore = postgres.NewPostgresUserStore(app.state)
	app.taskStore = postgres.NewPostgresTaskStore(app.state)
	app.wireServices()

	return app
}

// wireServices builds the services on top of the current stores.
func (app *application) wireServices() {
	app.authorizer = auth.NewAuthorizer(app.tokens, app.userStore)
	app.userService = service.NewUserService(app.userStore, app.hasher, app.logger)
	app.taskService = service.NewTaskService(app.taskStore, app.logger)
}

// connectStore establishes the database connection and then watches it
// until ctx is done. It is meant to run in the background: requests are
// served, or refused with 503, while it works.
func (app *application) connectStore(ctx context.Context) {
	db := app.config.Database
	state := app.connector.Establish(ctx, db.MaxAttempts, db.RetryDelay)
	app.logger.Info("store connection settled", slog.String("state", string(state)))

	app.connector.Monitor(ctx, db.MonitorInterval)
}

// Run starts the store connection and the HTTP server and blocks until ctx
// is canceled or the server fails.
func (app *application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.background.Add(1)
	go func() {
		defer app.background.Done()
		app.connectStore(ctx)
	}()

	err := app.startHTTPServer(ctx, app.setupRouter())
	cancel()
	app.cleanup()
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup waits for background work and releases the database handle.
func (app *application) cleanup() {
	app.background.Wait()

	if err := app.connector.Close(); err != nil {
		app.logger.Error("error closing database connection", slog.String("error", err.Error()))
	}

	app.logger.Info("application shutdown completed")
}
