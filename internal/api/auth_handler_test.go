package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "success",
			body:           RegisterRequest{Name: "Ann", Email: "Ann@X.com", Password: "secret1"},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "User registered successfully",
		},
		{
			name:           "missing name",
			body:           map[string]string{"email": "ann@x.com", "password": "secret1"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    shared.MsgMissingFields,
		},
		{
			name:           "invalid email",
			body:           RegisterRequest{Name: "Ann", Email: "ann", Password: "secret1"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Email has invalid format",
		},
		{
			name:           "short password",
			body:           RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "123"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Password must be at least 6 characters long",
		},
		{
			name:           "malformed body",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    shared.MsgInvalidBody,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ta := newTestAPI(t)

			rr := ta.do(t, http.MethodPost, "/auth/register", "", tt.body)
			require.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())

			if tt.expectedStatus != http.StatusCreated {
				assert.Equal(t, tt.expectedMsg, errorMessage(t, rr))
				assert.Zero(t, ta.users.Count())
				return
			}

			resp := decode[AuthResponse](t, rr)
			assert.Equal(t, tt.expectedMsg, resp.Message)
			assert.Equal(t, "ann@x.com", resp.User.Email)
			assert.Equal(t, "Ann", resp.User.Name)
			assert.Equal(t, 1, ta.users.Count())
			assert.NotEmpty(t, resp.Token)
			_, err := time.Parse(time.RFC3339, resp.ExpiresAt)
			assert.NoError(t, err)
			assert.NotContains(t, rr.Body.String(), "secret1")
			assert.NotContains(t, rr.Body.String(), "hashed:")
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	ta := newTestAPI(t)

	first := ta.do(t, http.MethodPost, "/auth/register", "",
		RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, first.Code)

	second := ta.do(t, http.MethodPost, "/auth/register", "",
		RegisterRequest{Name: "Other Ann", Email: "ANN@x.com", Password: "secret2"})
	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.Equal(t, shared.MsgUserExists, errorMessage(t, second))
	assert.Equal(t, 1, ta.users.Count(), "a second identity must never be created")
}

func TestRegisterWithoutTokenIssuance(t *testing.T) {
	t.Parallel()
	ta := newTestAPI(t)
	ta.tokens.GenerateTokenFn = func(context.Context, uuid.UUID) (string, time.Time, error) {
		return "", time.Time{}, auth.ErrSigningKeyMissing
	}

	rr := ta.do(t, http.MethodPost, "/auth/register", "",
		RegisterRequest{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := decode[AuthResponse](t, rr)
	assert.Empty(t, resp.Token)
	assert.Empty(t, resp.ExpiresAt)
	assert.Equal(t, 1, ta.users.Count())
}

func TestLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "success",
			body:           LoginRequest{Email: "ann@x.com", Password: "secret1"},
			expectedStatus: http.StatusOK,
			expectedMsg:    "Login successful",
		},
		{
			name:           "email is case-insensitive",
			body:           LoginRequest{Email: " ANN@x.com", Password: "secret1"},
			expectedStatus: http.StatusOK,
			expectedMsg:    "Login successful",
		},
		{
			name:           "wrong password",
			body:           LoginRequest{Email: "ann@x.com", Password: "secret2"},
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    shared.MsgInvalidCredentials,
		},
		{
			name:           "unknown email",
			body:           LoginRequest{Email: "bob@x.com", Password: "secret1"},
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    shared.MsgInvalidCredentials,
		},
		{
			name:           "missing password",
			body:           map[string]string{"email": "ann@x.com"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    shared.MsgMissingFields,
		},
		{
			name:           "empty body",
			body:           nil,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    shared.MsgInvalidBody,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ta := newTestAPI(t)
			ann, _ := ta.addUser(t, "Ann", "ann@x.com")

			rr := ta.do(t, http.MethodPost, "/auth/login", "", tt.body)
			require.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())

			if tt.expectedStatus != http.StatusOK {
				assert.Equal(t, tt.expectedMsg, errorMessage(t, rr))
				return
			}

			resp := decode[AuthResponse](t, rr)
			assert.Equal(t, tt.expectedMsg, resp.Message)
			assert.Equal(t, ann.ID, resp.User.ID)

			claims, err := ta.tokens.ValidateToken(context.Background(), resp.Token)
			require.NoError(t, err)
			assert.Equal(t, ann.ID, claims.UserID)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()

	t.Run("store unavailable", func(t *testing.T) {
		t.Parallel()
		ta := newTestAPI(t)
		ta.users.Err = store.ErrStoreUnavailable

		rr := ta.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "ann@x.com", Password: "secret1"})
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, shared.MsgStoreUnavailable, errorMessage(t, rr))
	})

	t.Run("token issuance disabled", func(t *testing.T) {
		t.Parallel()
		ta := newTestAPI(t)
		ta.addUser(t, "Ann", "ann@x.com")
		ta.tokens.GenerateTokenFn = auth.DisabledTokenService{}.GenerateToken

		rr := ta.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "ann@x.com", Password: "secret1"})
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "Failed to generate authentication token", errorMessage(t, rr))
	})
}
