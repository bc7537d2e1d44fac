package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/mocks"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authorizerFunc func(ctx context.Context, header string) (*domain.User, error)

func (f authorizerFunc) Authorize(ctx context.Context, header string) (*domain.User, error) {
	return f(ctx, header)
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	ann := &domain.User{ID: uuid.New(), Name: "Ann", Email: "ann@x.com", HashedPassword: "hashed:secret1"}

	users := mocks.NewMockUserStore()
	users.Add(ann)
	authorizer := auth.NewAuthorizer(mocks.NewMockTokenService(), users)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedMsg    string
		expectUser     bool
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer " + mocks.TokenFor(ann.ID),
			expectedStatus: http.StatusOK,
			expectUser:     true,
		},
		{
			name:           "lower-case scheme",
			authHeader:     "bearer " + mocks.TokenFor(ann.ID),
			expectedStatus: http.StatusOK,
			expectUser:     true,
		},
		{
			name:           "missing auth header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    shared.MsgNoToken,
		},
		{
			name:           "scheme without token",
			authHeader:     "Bearer ",
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    shared.MsgNoToken,
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer garbage",
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    shared.MsgTokenNotValid,
		},
		{
			name:           "unknown subject",
			authHeader:     "Bearer " + mocks.TokenFor(uuid.New()),
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    shared.MsgTokenNotValid,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var captured *domain.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured, _ = shared.UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			NewAuthMiddleware(authorizer).Authenticate(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectUser {
				require.NotNil(t, captured)
				assert.Equal(t, ann.ID, captured.ID)
				return
			}

			assert.Nil(t, captured, "next handler must not run")
			var body shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedMsg, body.Message)
		})
	}
}

func TestAuthMiddleware_ExpiredTokenLooksInvalid(t *testing.T) {
	t.Parallel()

	tokens := mocks.NewMockTokenService()
	tokens.ValidateTokenFn = func(context.Context, string) (*auth.Claims, error) {
		return nil, auth.ErrExpiredToken
	}
	mw := NewAuthMiddleware(auth.NewAuthorizer(tokens, mocks.NewMockUserStore()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer old")
	rr := httptest.NewRecorder()
	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), shared.MsgTokenNotValid)
	assert.NotContains(t, rr.Body.String(), "expired", "causes are not distinguishable by clients")
}

func TestAuthMiddleware_StoreFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "store unavailable",
			err:            fmt.Errorf("failed to resolve token subject: %w", store.ErrStoreUnavailable),
			expectedStatus: http.StatusServiceUnavailable,
			expectedMsg:    shared.MsgStoreUnavailable,
		},
		{
			name:           "unexpected failure",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    shared.MsgInternalError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mw := NewAuthMiddleware(authorizerFunc(func(context.Context, string) (*domain.User, error) {
				return nil, tt.err
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer anything")
			rr := httptest.NewRecorder()
			mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			var body shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedMsg, body.Message)
			assert.Empty(t, body.Error, "details are off unless enabled")
		})
	}
}
