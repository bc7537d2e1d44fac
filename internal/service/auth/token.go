package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	// GenerateToken creates a signed token for userID and reports when it expires.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, time.Time, error)

	// ValidateToken verifies signature and expiry and returns the claims.
	// Errors are ErrInvalidToken or ErrExpiredToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the verified content of a token.
type Claims struct {
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
