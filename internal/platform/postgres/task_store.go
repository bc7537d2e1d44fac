package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// PostgresTaskStore implements store.TaskStore. Every statement carries
// the owner predicate, so rows belonging to other users are never read
// or written.
type PostgresTaskStore struct {
	conn *store.ConnectionState
}

// NewPostgresTaskStore creates a task store that resolves its database
// handle from conn on every call.
func NewPostgresTaskStore(conn *store.ConnectionState) *PostgresTaskStore {
	return &PostgresTaskStore{conn: conn}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

const taskColumns = `id, user_id, title, description, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status string
	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&status,
		&task.CreatedAt,
	); err != nil {
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	return &task, nil
}

// selectOwnedTask reads one task through q, which is the pool or an open
// transaction. lock adds FOR UPDATE.
func selectOwnedTask(ctx context.Context, q store.DBTX, ownerID, id uuid.UUID, lock bool) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	task, err := scanTask(q.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTaskNotFound
	}
	return task, err
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	db, err := s.conn.DB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		task.ID, task.UserID, task.Title, task.Description, string(task.Status), task.CreatedAt,
	)
	if err != nil {
		return s.fail(ctx, "create", err)
	}

	logger.FromContext(ctx).Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	db, err := s.conn.DB()
	if err != nil {
		return nil, err
	}

	task, err := selectOwnedTask(ctx, db, ownerID, id, false)
	if errors.Is(err, store.ErrTaskNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, s.fail(ctx, "get", err)
	}
	return task, nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
) ([]*domain.Task, error) {
	db, err := s.conn.DB()
	if err != nil {
		return nil, err
	}

	query, args := buildListQuery(ownerID, filter)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, s.fail(ctx, "list", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(ctx, "list", err)
	}
	return tasks, nil
}

// buildListQuery renders the listing statement. The search term is bound
// as a parameter with LIKE wildcards escaped, so it matches literally.
func buildListQuery(ownerID uuid.UUID, filter domain.TaskFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)
	args := []any{ownerID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		fmt.Fprintf(&b, ` AND status = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		fmt.Fprintf(&b, ` AND (title ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\')`, n, n)
	}

	b.WriteString(` ORDER BY created_at DESC, id DESC`)
	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Update implements store.TaskStore.Update. The row is locked for the
// duration of mutate so concurrent patches to one task serialize.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	mutate store.TaskMutator,
) (*domain.Task, error) {
	db, err := s.conn.DB()
	if err != nil {
		return nil, err
	}

	var updated *domain.Task
	err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		task, err := selectOwnedTask(ctx, tx, ownerID, id, true)
		if err != nil {
			return err
		}

		if err := mutate(task); err != nil {
			return err
		}
		if err := task.Validate(); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE tasks SET title = $3, description = $4, status = $5
			WHERE id = $1 AND user_id = $2`,
			id, ownerID, task.Title, task.Description, string(task.Status),
		)
		if err != nil {
			return err
		}
		if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) || errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, s.fail(ctx, "update", err)
	}
	return updated, nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	db, err := s.conn.DB()
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return s.fail(ctx, "delete", err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

func (s *PostgresTaskStore) fail(ctx context.Context, op string, err error) error {
	mapped := MapError(err)
	if store.IsUnavailableError(mapped) && s.conn.MarkDisconnected(err) {
		logger.FromContext(ctx).Warn("database connection lost",
			slog.String("operation", "task."+op),
			slog.String("error", redact.Error(err)))
	}
	return store.NewStoreError("task", op, "query failed", mapped)
}
