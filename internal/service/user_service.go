package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// UserService registers and authenticates users.
type UserService interface {
	// Register creates a user with a hashed password.
	// Returns store.ErrEmailExists when the email is taken.
	Register(ctx context.Context, name, email, password string) (*domain.User, error)

	// Authenticate checks an email and password pair.
	// Returns auth.ErrInvalidCredentials for an unknown email or wrong password.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type userServiceImpl struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger

	// decoy is compared against when the email is unknown, so both
	// failure paths cost one hash comparison.
	decoyOnce sync.Once
	decoy     string
}

// NewUserService creates a UserService.
func NewUserService(users store.UserStore, hasher auth.PasswordHasher, log *slog.Logger) UserService {
	if log == nil {
		log = slog.Default()
	}
	return &userServiceImpl{
		users:  users,
		hasher: hasher,
		logger: log.With("component", "user_service"),
	}
}

func (s *userServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// Register implements UserService.
func (s *userServiceImpl) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(name, email, password)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		s.log(ctx).Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.ClearPassword()

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.log(ctx).Debug("registration with existing email")
		} else {
			s.log(ctx).Error("failed to create user", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log(ctx).Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate implements UserService.
func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			_ = s.hasher.Compare(s.decoyHash(), password)
			s.log(ctx).Debug("login for unknown email")
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.log(ctx).Debug("login with wrong password", slog.String("user_id", user.ID.String()))
			return nil, auth.ErrInvalidCredentials
		}
		s.log(ctx).Error("failed to compare password hash",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	return user, nil
}

func (s *userServiceImpl) decoyHash() string {
	s.decoyOnce.Do(func() {
		s.decoy, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.decoy
}

// GetUser implements UserService.
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}
