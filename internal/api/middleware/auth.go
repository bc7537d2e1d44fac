package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Authorizer resolves an Authorization header to a user.
type Authorizer interface {
	Authorize(ctx context.Context, header string) (*domain.User, error)
}

// AuthMiddleware provides bearer token authentication for routes.
type AuthMiddleware struct {
	authorizer Authorizer
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(authorizer Authorizer) *AuthMiddleware {
	return &AuthMiddleware{authorizer: authorizer}
}

// Authenticate resolves the bearer token to a user and adds that user to the
// request context. Requests that fail authorization never reach next.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.authorizer.Authorize(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			var authErr *auth.AuthError
			switch {
			case errors.As(err, &authErr) && authErr.Reason == auth.ReasonMissingToken:
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, shared.MsgNoToken, err)
			case errors.As(err, &authErr):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, shared.MsgTokenNotValid, err)
			case errors.Is(err, store.ErrStoreUnavailable):
				shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, shared.MsgStoreUnavailable, err)
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, shared.MsgInternalError, err)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithUser(r.Context(), user)))
	})
}
