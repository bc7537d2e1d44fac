package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// TaskMutator changes a task in place during Update. Returning an error
// aborts the update and leaves the stored task untouched.
type TaskMutator func(task *domain.Task) error

// TaskStore defines the interface for task persistence. Every method is
// scoped to ownerID; a task owned by anyone else behaves as if it did not
// exist and yields ErrTaskNotFound.
type TaskStore interface {
	// Create saves a new task. task.UserID is the owner.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves one of ownerID's tasks.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// List returns ownerID's tasks matching filter, newest first.
	List(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error)

	// Update loads the task, applies mutate, and saves the result
	// atomically. It returns the task as stored.
	Update(ctx context.Context, ownerID, id uuid.UUID, mutate TaskMutator) (*domain.Task, error)

	// Delete removes one of ownerID's tasks.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
