package auth

import "errors"

// Token and credential errors
var (
	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidToken indicates the token is malformed, uses another
	// algorithm, or its signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrUnknownSubject indicates a well-formed token names a user that
	// does not exist
	ErrUnknownSubject = errors.New("token subject does not exist")

	// ErrSigningKeyMissing indicates no signing secret is configured
	ErrSigningKeyMissing = errors.New("token signing key is not configured")

	// ErrSigningKeyTooShort indicates the signing secret is below MinSigningKeyLength
	ErrSigningKeyTooShort = errors.New("token signing key is too short")

	// ErrInvalidCredentials indicates a login with an unknown email or a wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
)
