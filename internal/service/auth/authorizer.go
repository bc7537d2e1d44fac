package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Reason says why a request failed authorization.
type Reason string

// Authorization failure reasons.
const (
	ReasonMissingToken   Reason = "missing_token"
	ReasonInvalidToken   Reason = "invalid_token"
	ReasonExpiredToken   Reason = "expired_token"
	ReasonUnknownSubject Reason = "unknown_subject"
)

var reasonSentinels = map[Reason]error{
	ReasonMissingToken:   ErrMissingToken,
	ReasonInvalidToken:   ErrInvalidToken,
	ReasonExpiredToken:   ErrExpiredToken,
	ReasonUnknownSubject: ErrUnknownSubject,
}

// AuthError is an authorization failure. It matches the sentinel for its
// reason with errors.Is.
type AuthError struct {
	Reason Reason
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authorization failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authorization failed (%s)", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches the reason's sentinel even when Err is something else.
func (e *AuthError) Is(target error) bool {
	return reasonSentinels[e.Reason] == target
}

func newAuthError(reason Reason, err error) *AuthError {
	if err == nil {
		err = reasonSentinels[reason]
	}
	return &AuthError{Reason: reason, Err: err}
}

// Authorizer turns an Authorization header into the user it names.
type Authorizer struct {
	tokens TokenService
	users  store.UserStore
}

// NewAuthorizer creates an Authorizer.
func NewAuthorizer(tokens TokenService, users store.UserStore) *Authorizer {
	return &Authorizer{tokens: tokens, users: users}
}

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively. A value without the scheme
// is taken to be the bare token.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if strings.EqualFold(header, "bearer") {
		return ""
	}
	return header
}

// Authorize validates the bearer token in header and resolves its
// subject. Failures are *AuthError. A store failure while resolving the
// subject is returned unchanged, since it says nothing about the token.
func (a *Authorizer) Authorize(ctx context.Context, header string) (*domain.User, error) {
	log := logger.FromContext(ctx)

	token := BearerToken(header)
	if token == "" {
		log.Debug("authorization failed", "reason", ReasonMissingToken)
		return nil, newAuthError(ReasonMissingToken, nil)
	}

	claims, err := a.tokens.ValidateToken(ctx, token)
	if err != nil {
		reason := ReasonInvalidToken
		if errors.Is(err, ErrExpiredToken) {
			reason = ReasonExpiredToken
		}
		log.Debug("authorization failed", "reason", reason)
		return nil, newAuthError(reason, err)
	}

	user, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("authorization failed",
				"reason", ReasonUnknownSubject,
				"user_id", claims.UserID)
			return nil, newAuthError(ReasonUnknownSubject, err)
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}

	return user, nil
}
