package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// ErrNoDatabaseURL is returned by Open when no connection string is configured.
var ErrNoDatabaseURL = errors.New("database url is not configured")

// FailureClass groups connection failures by what the operator should check.
type FailureClass string

// Failure classes.
const (
	FailureRefused        FailureClass = "refused"
	FailureAuthentication FailureClass = "authentication"
	FailureTimeout        FailureClass = "timeout"
	FailureUnknown        FailureClass = "unknown"
)

// Hint is a one-line suggestion for the operator.
func (c FailureClass) Hint() string {
	switch c {
	case FailureRefused:
		return "connection refused: make sure the database server is running and reachable at the configured host and port"
	case FailureAuthentication:
		return "authentication failed: check the user name and password in the database url"
	case FailureTimeout:
		return "connection timed out: check network access, firewall rules and server load"
	default:
		return "check the database url and the database server logs"
	}
}

// ClassifyFailure maps a connection error to a FailureClass.
func ClassifyFailure(err error) FailureClass {
	if err == nil {
		return FailureUnknown
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		(pgErr.Code == invalidPasswordCode || pgErr.Code == invalidAuthorizationCode) {
		return FailureAuthentication
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return FailureRefused
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	// pgconn does not always keep the syscall error in the chain
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return FailureRefused
	case strings.Contains(msg, "password authentication failed"),
		strings.Contains(msg, "authentication failed"):
		return FailureAuthentication
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return FailureTimeout
	}
	return FailureUnknown
}

// OpenFunc returns a verified database handle or an error.
type OpenFunc func(ctx context.Context) (*sql.DB, error)

// Hook runs against a freshly established connection, before the state
// is marked connected. A failing hook fails the attempt.
type Hook func(ctx context.Context, db *sql.DB) error

// Open returns an OpenFunc that dials the configured database with the
// pgx driver and pings it within cfg.ConnectTimeout.
func Open(cfg config.DatabaseConfig) OpenFunc {
	return func(ctx context.Context) (*sql.DB, error) {
		if cfg.URL == "" {
			return nil, ErrNoDatabaseURL
		}

		db, err := sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return db, nil
	}
}

// Connector drives the connection state machine: bounded connection
// attempts at startup, then a monitor that notices drops and recoveries.
type Connector struct {
	state  *store.ConnectionState
	open   OpenFunc
	hooks  []Hook
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
	ping   func(ctx context.Context, db *sql.DB) error
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithHook adds a hook run on every successful connection.
func WithHook(h Hook) ConnectorOption {
	return func(c *Connector) { c.hooks = append(c.hooks, h) }
}

// WithLogger sets the connector's logger.
func WithLogger(l *slog.Logger) ConnectorOption {
	return func(c *Connector) { c.logger = l }
}

// WithSleep replaces the delay between attempts. The function must
// return early with ctx.Err() when ctx is done.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ConnectorOption {
	return func(c *Connector) { c.sleep = sleep }
}

// WithPing replaces the liveness probe used by Monitor.
func WithPing(ping func(ctx context.Context, db *sql.DB) error) ConnectorOption {
	return func(c *Connector) { c.ping = ping }
}

// NewConnector creates a connector that records its progress in state.
func NewConnector(state *store.ConnectionState, open OpenFunc, opts ...ConnectorOption) *Connector {
	c := &Connector{
		state:  state,
		open:   open,
		logger: slog.Default(),
		sleep:  sleepContext,
		ping: func(ctx context.Context, db *sql.DB) error {
			return db.PingContext(ctx)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "database")
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Establish makes up to maxAttempts connection attempts, waiting delay
// between them. It returns StateConnected on success. When every attempt
// fails, or ctx ends first, the state becomes degraded and the service
// is expected to keep running without a store.
func (c *Connector) Establish(ctx context.Context, maxAttempts int, delay time.Duration) store.ConnState {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		c.state.MarkConnecting(attempt)
		c.logger.Info("connecting to database",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts))

		db, err := c.attempt(ctx)
		if err == nil {
			c.state.MarkConnected(db)
			c.logger.Info("database connected", slog.Int("attempt", attempt))
			return store.StateConnected
		}

		lastErr = err
		c.state.MarkFailed(err)
		class := ClassifyFailure(err)
		c.logger.Warn("database connection attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("remaining", maxAttempts-attempt),
			slog.String("failure", string(class)),
			slog.String("hint", class.Hint()),
			slog.String("error", redact.Error(err)))

		if attempt == maxAttempts {
			break
		}
		if err := c.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	c.state.MarkDegraded(lastErr)
	c.logger.Error("database unavailable, continuing without a store",
		slog.String("state", string(store.StateDegraded)),
		slog.Int("attempts", c.state.Status().Attempts))
	return store.StateDegraded
}

func (c *Connector) attempt(ctx context.Context) (*sql.DB, error) {
	db, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	for _, hook := range c.hooks {
		if err := hook(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Monitor probes the connection every interval until ctx is done. A
// failed probe while connected marks the state disconnected; a successful
// probe while disconnected marks it connected again. Degraded and failed
// states are left alone.
func (c *Connector) Monitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Probe(ctx)
		}
	}
}

// Probe runs one liveness check and applies the resulting transition.
func (c *Connector) Probe(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	state := c.state.State()
	if state != store.StateConnected && state != store.StateDisconnected {
		return
	}
	db := c.state.Handle()
	if db == nil {
		return
	}

	err := c.ping(ctx, db)
	switch {
	case err != nil && state == store.StateConnected:
		if c.state.MarkDisconnected(err) {
			c.logger.Warn("database connection lost",
				slog.String("failure", string(ClassifyFailure(err))),
				slog.String("error", redact.Error(err)))
		}
	case err == nil && state == store.StateDisconnected:
		if c.state.MarkReconnected() {
			c.logger.Info("database connection restored")
		}
	}
}

// Close releases the handle, if any.
func (c *Connector) Close() error {
	if db := c.state.Detach(); db != nil {
		return db.Close()
	}
	return nil
}
