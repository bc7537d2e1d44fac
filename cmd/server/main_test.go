package main

import (
	"testing"

	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportProblems(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Database.URL = ""
	cfg.Auth.JWTSecret = "short"

	log, buf := logger.NewTestLogger(t)
	reportProblems(log, cfg.Problems())

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	settings := make([]any, 0, len(entries))
	for _, e := range entries {
		assert.Equal(t, "ERROR", e["level"])
		assert.Equal(t, "configuration problem", e["msg"])
		assert.NotEmpty(t, e["hint"])
		settings = append(settings, e["setting"])
	}
	assert.ElementsMatch(t, []any{"database.url", "auth.jwt_secret"}, settings)
}

func TestReportProblemsQuietWhenConfigured(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Database.URL = "postgres://app:pw@localhost:5432/taskflow"

	log, buf := logger.NewTestLogger(t)
	reportProblems(log, cfg.Problems())

	assert.Empty(t, buf.String())
}
