package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	conn *store.ConnectionState
}

// NewPostgresUserStore creates a user store that resolves its database
// handle from conn on every call.
func NewPostgresUserStore(conn *store.ConnectionState) *PostgresUserStore {
	return &PostgresUserStore{conn: conn}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

const userColumns = `id, name, email, hashed_password, created_at`

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: password must be hashed before storing", store.ErrInvalidEntity)
	}

	db, err := s.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, hashed_password, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Name, domain.NormalizeEmail(user.Email), user.HashedPassword, user.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already registered", slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		return s.fail(ctx, "create", err)
	}

	log.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, "get_by_id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, "get_by_email",
		`SELECT `+userColumns+` FROM users WHERE email = $1`, domain.NormalizeEmail(email))
}

func (s *PostgresUserStore) getOne(ctx context.Context, op, query string, arg any) (*domain.User, error) {
	db, err := s.conn.DB()
	if err != nil {
		return nil, err
	}

	var user domain.User
	err = db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}
	return &user, nil
}

func (s *PostgresUserStore) fail(ctx context.Context, op string, err error) error {
	mapped := MapError(err)
	if store.IsUnavailableError(mapped) && s.conn.MarkDisconnected(err) {
		logger.FromContext(ctx).Warn("database connection lost",
			slog.String("operation", "user."+op),
			slog.String("error", redact.Error(err)))
	}
	return store.NewStoreError("user", op, "query failed", mapped)
}
