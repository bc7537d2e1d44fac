package mocks

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
)

const mockTokenPrefix = "mock-token:"

// MockTokenService implements auth.TokenService for testing. By default
// it issues "mock-token:<user id>" and accepts exactly those tokens.
type MockTokenService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, time.Time, error)
	ValidateTokenFn func(ctx context.Context, token string) (*auth.Claims, error)

	// Lifetime of issued tokens; defaults to one hour.
	Lifetime time.Duration
}

var _ auth.TokenService = (*MockTokenService)(nil)

// NewMockTokenService creates a token service with working defaults.
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{Lifetime: time.Hour}
}

// TokenFor returns the token the default implementation issues for userID.
func TokenFor(userID uuid.UUID) string {
	return mockTokenPrefix + userID.String()
}

// GenerateToken implements auth.TokenService.
func (m *MockTokenService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return TokenFor(userID), time.Now().Add(m.Lifetime).UTC(), nil
}

// ValidateToken implements auth.TokenService.
func (m *MockTokenService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, token)
	}
	raw, ok := strings.CutPrefix(token, mockTokenPrefix)
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	now := time.Now().UTC()
	return &auth.Claims{UserID: id, IssuedAt: now, ExpiresAt: now.Add(m.Lifetime)}, nil
}
