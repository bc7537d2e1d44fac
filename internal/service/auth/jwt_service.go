package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// MinSigningKeyLength is the shortest accepted HS256 secret, in bytes.
const MinSigningKeyLength = config.MinJWTSecretLength

// hmacJWTService implements TokenService with HS256 signatures.
type hmacJWTService struct {
	signingKey    []byte
	tokenLifetime time.Duration
	timeFunc      func() time.Time
}

// jwtCustomClaims is the token payload. The subject carries the user id.
type jwtCustomClaims struct {
	jwt.RegisteredClaims
}

var _ TokenService = (*hmacJWTService)(nil)

// JWTOption configures the JWT service.
type JWTOption func(*hmacJWTService)

// WithTimeFunc replaces the clock used for issuing and validating.
func WithTimeFunc(fn func() time.Time) JWTOption {
	return func(s *hmacJWTService) { s.timeFunc = fn }
}

// NewJWTService creates an HS256 token service. It refuses to start
// without a secret of at least MinSigningKeyLength bytes.
func NewJWTService(cfg config.AuthConfig, opts ...JWTOption) (TokenService, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrSigningKeyMissing
	}
	if len(cfg.JWTSecret) < MinSigningKeyLength {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d",
			ErrSigningKeyTooShort, MinSigningKeyLength, len(cfg.JWTSecret))
	}
	if cfg.TokenLifetimeMinutes <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %d minutes", cfg.TokenLifetimeMinutes)
	}

	s := &hmacJWTService{
		signingKey:    []byte(cfg.JWTSecret),
		tokenLifetime: cfg.TokenLifetime(),
		timeFunc:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GenerateToken implements TokenService.
func (s *hmacJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	now := s.timeFunc()
	expiresAt := jwt.NewNumericDate(now.Add(s.tokenLifetime))

	claims := jwtCustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: expiresAt,
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign token",
			"error", err,
			"user_id", userID)
		return "", time.Time{}, fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}

	return signed, expiresAt.Time, nil
}

// ValidateToken implements TokenService. Expiry is exact: a token is
// rejected from the second its exp claim names.
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		// Lenient base64url ignores the spare bits of the last character,
		// which would let an altered signature through.
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.timeFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("token validation failed: expired")
			return nil, ErrExpiredToken
		}
		log.Debug("token validation failed",
			"error", err,
			"error_type", fmt.Sprintf("%T", err))
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		log.Debug("token validation failed: subject is not a user id")
		return nil, ErrInvalidToken
	}

	out := &Claims{
		UserID:    userID,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
