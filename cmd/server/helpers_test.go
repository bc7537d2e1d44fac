package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/mocks"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

var errUnreachable = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            0,
			LogLevel:        "debug",
			Environment:     config.EnvTest,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: config.DatabaseConfig{
			MaxAttempts:    3,
			RetryDelay:     time.Second,
			ConnectTimeout: time.Second,
		},
		Auth: config.AuthConfig{
			JWTSecret:            strings.Repeat("k", config.MinJWTSecretLength),
			TokenLifetimeMinutes: 60,
			BcryptCost:           4,
		},
	}
}

// unreachableOpen fails every attempt and counts them.
type unreachableOpen struct {
	mu    sync.Mutex
	calls int
}

func (u *unreachableOpen) open(context.Context) (*sql.DB, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	return nil, errUnreachable
}

func (u *unreachableOpen) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

// sleepRecorder replaces the retry delay so no real time passes.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

// newInMemoryApp builds the application with in-memory stores so the full
// HTTP surface can run without a database.
func newInMemoryApp(t *testing.T, cfg *config.Config) *application {
	t.Helper()

	log, _ := logger.NewTestLogger(t)
	opener := &unreachableOpen{}
	app := newApplication(cfg, log, opener.open, postgres.WithSleep((&sleepRecorder{}).sleep))
	app.userStore = mocks.NewMockUserStore()
	app.taskStore = mocks.NewMockTaskStore()
	app.wireServices()
	return app
}

type client struct {
	t       *testing.T
	handler http.Handler
}

func (c client) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}
