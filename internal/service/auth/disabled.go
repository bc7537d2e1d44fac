package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DisabledTokenService stands in when no usable signing key is
// configured. It issues nothing and accepts nothing, so the service can
// still start and report its configuration problem.
type DisabledTokenService struct {
	// Cause is why tokens are disabled. Defaults to ErrSigningKeyMissing.
	Cause error
}

var _ TokenService = DisabledTokenService{}

func (d DisabledTokenService) cause() error {
	if d.Cause == nil {
		return ErrSigningKeyMissing
	}
	return d.Cause
}

// GenerateToken always fails.
func (d DisabledTokenService) GenerateToken(context.Context, uuid.UUID) (string, time.Time, error) {
	return "", time.Time{}, fmt.Errorf("token issuance disabled: %w", d.cause())
}

// ValidateToken rejects every token as invalid.
func (d DisabledTokenService) ValidateToken(context.Context, string) (*Claims, error) {
	return nil, ErrInvalidToken
}
