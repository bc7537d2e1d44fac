package api

import (
	"net/http"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// StateReporter reports the store's connection state.
type StateReporter interface {
	State() store.ConnState
}

// HealthHandler answers liveness checks. It succeeds whatever the store
// state is, so a degraded process still reports that it is running.
type HealthHandler struct {
	state StateReporter
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(state StateReporter) *HealthHandler {
	return &HealthHandler{state: state}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	state := store.StateUnconnected
	if h.state != nil {
		state = h.state.State()
	}
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Message: "Server is running",
		Store:   string(state),
	})
}

// NotFound answers unknown routes with a JSON body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusNotFound, shared.MsgRouteNotFound)
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusMethodNotAllowed, shared.MsgMethodNotAllowed)
}
