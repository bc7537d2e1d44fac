package api

import (
	"net/http"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
)

// UserHandler serves the authenticated user's own account.
type UserHandler struct{}

// NewUserHandler creates a UserHandler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile handles GET /user/profile. The user was already resolved by the
// authentication middleware, so no store access is needed.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, auth.ErrMissingToken, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProfileResponse{User: newUserResponse(user)})
}
