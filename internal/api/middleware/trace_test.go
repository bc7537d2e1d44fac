package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger(t)

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	NewTraceMiddleware(log)(next).ServeHTTP(rr, req)

	require.Len(t, traceID, 32)
	assert.Equal(t, traceID, rr.Header().Get(TraceIDHeader))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, traceID, e["trace_id"], "every entry carries the trace ID")
	}
	assert.Equal(t, "inside handler", entries[1]["msg"])
	assert.Equal(t, "request completed", entries[2]["msg"])
	assert.EqualValues(t, http.StatusTeapot, entries[2]["status"])
}

func TestErrorDetails(t *testing.T) {
	t.Parallel()

	for _, enabled := range []bool{true, false} {
		var got bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = shared.ErrorDetailsEnabled(r.Context())
		})
		ErrorDetails(enabled)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, enabled, got)
	}
}
