package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Password length limits. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// User validation errors
var (
	ErrEmptyUserID      = NewValidationError("id", "cannot be empty", nil)
	ErrEmptyName        = NewValidationError("name", "cannot be empty", nil)
	ErrEmptyEmail       = NewValidationError("email", "cannot be empty", nil)
	ErrInvalidEmail     = NewValidationError("email", "has invalid format", nil)
	ErrEmptyPassword    = NewValidationError("password", "cannot be empty", nil)
	ErrPasswordTooShort = NewValidationError("password", "must be at least 6 characters long", nil)
	ErrPasswordTooLong  = NewValidationError("password", "must be at most 72 characters long", nil)
)

var validate = validator.New()

// User represents a registered user of the task tracker.
// It contains essential user information and authentication details.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, only present during registration
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser creates a new User with the given name, email and plaintext password.
// The email is normalized to lower case. The caller is responsible for hashing
// the password before the user is stored.
func NewUser(name, email, password string) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NormalizeEmail trims and lower-cases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Name == "" {
		return ErrEmptyName
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if err := validate.Var(u.Email, "email"); err != nil {
		return ErrInvalidEmail
	}

	// A stored user has only the hash; a new one carries the plaintext
	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			return ErrPasswordTooShort
		}
		if len(u.Password) > MaxPasswordLength {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// ClearPassword drops the plaintext password once it has been hashed.
func (u *User) ClearPassword() {
	u.Password = ""
}
