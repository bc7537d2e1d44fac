package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/mocks"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                "",
		"Bearer":          "",
		"Bearer ":         "",
		"Bearer abc.def":  "abc.def",
		"bearer abc.def":  "abc.def",
		"  BEARER  xyz  ": "xyz",
		"abc.def":         "abc.def",
	}
	for header, want := range tests {
		assert.Equal(t, want, auth.BearerToken(header), "header %q", header)
	}
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Now()}
	tokens := newService(t, clock)
	ann := &domain.User{ID: uuid.New(), Name: "Ann", Email: "ann@x.com", HashedPassword: "h"}
	ghost := uuid.New()

	annToken, _, err := tokens.GenerateToken(context.Background(), ann.ID)
	require.NoError(t, err)
	ghostToken, _, err := tokens.GenerateToken(context.Background(), ghost)
	require.NoError(t, err)

	users := &mocks.TestifyMockUserStore{}
	users.On("GetByID", mock.Anything, ann.ID).Return(ann, nil)
	users.On("GetByID", mock.Anything, ghost).Return(nil, store.ErrUserNotFound)

	authorizer := auth.NewAuthorizer(tokens, users)

	tests := []struct {
		name       string
		header     string
		wantReason auth.Reason
		wantErr    error
	}{
		{name: "missing header", header: "", wantReason: auth.ReasonMissingToken, wantErr: auth.ErrMissingToken},
		{name: "scheme only", header: "Bearer ", wantReason: auth.ReasonMissingToken, wantErr: auth.ErrMissingToken},
		{name: "garbage", header: "Bearer nope", wantReason: auth.ReasonInvalidToken, wantErr: auth.ErrInvalidToken},
		{name: "unknown subject", header: "Bearer " + ghostToken, wantReason: auth.ReasonUnknownSubject, wantErr: auth.ErrUnknownSubject},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			user, err := authorizer.Authorize(context.Background(), tt.header)
			assert.Nil(t, user)

			var authErr *auth.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantReason, authErr.Reason)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("valid token", func(t *testing.T) {
		user, err := authorizer.Authorize(context.Background(), "Bearer "+annToken)
		require.NoError(t, err)
		assert.Equal(t, ann.ID, user.ID)
	})

	t.Run("expired token", func(t *testing.T) {
		expiredClock := &fakeClock{now: clock.now.Add(-2 * time.Hour)}
		old, _, err := newService(t, expiredClock).GenerateToken(context.Background(), ann.ID)
		require.NoError(t, err)

		_, err = authorizer.Authorize(context.Background(), "Bearer "+old)
		var authErr *auth.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, auth.ReasonExpiredToken, authErr.Reason)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
		assert.NotErrorIs(t, err, auth.ErrInvalidToken)
	})

	users.AssertNotCalled(t, "GetByID", mock.Anything, uuid.Nil)
}

func TestAuthorizeStoreOutageIsNotAnAuthFailure(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	users := mocks.NewMockUserStore()
	users.Err = store.ErrStoreUnavailable

	authorizer := auth.NewAuthorizer(mocks.NewMockTokenService(), users)
	_, err := authorizer.Authorize(context.Background(), "Bearer "+mocks.TokenFor(userID))

	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
	var authErr *auth.AuthError
	assert.False(t, errors.As(err, &authErr))
}

func TestAuthErrorMatchesOnlyItsReason(t *testing.T) {
	t.Parallel()

	err := &auth.AuthError{Reason: auth.ReasonUnknownSubject, Err: store.ErrUserNotFound}
	assert.ErrorIs(t, err, auth.ErrUnknownSubject)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.NotErrorIs(t, err, auth.ErrMissingToken)
	assert.Contains(t, err.Error(), "unknown_subject")
}
