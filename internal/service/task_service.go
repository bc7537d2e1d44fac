package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// CreateTaskInput carries the client-supplied fields of a new task. The
// owner is never part of it; it always comes from the authenticated caller.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
}

// TaskService exposes task operations scoped to a single owner. A task
// owned by someone else is reported as store.ErrTaskNotFound, the same
// as one that does not exist.
type TaskService interface {
	CreateTask(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*domain.Task, error)
	ListTasks(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error)
	GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error
}

type taskServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a TaskService backed by tasks.
func NewTaskService(tasks store.TaskStore, log *slog.Logger) TaskService {
	if log == nil {
		log = slog.Default()
	}
	return &taskServiceImpl{
		tasks:  tasks,
		logger: log.With("component", "task_service"),
	}
}

func (s *taskServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// CreateTask validates and stores a new task owned by ownerID.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	input CreateTaskInput,
) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, input.Title, input.Description, domain.TaskStatus(input.Status))
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logFailure(ctx, "create", ownerID, task.ID, err)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log(ctx).Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", ownerID.String()))
	return task, nil
}

// ListTasks returns ownerID's tasks matching filter, newest first.
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
) ([]*domain.Task, error) {
	tasks, err := s.tasks.List(ctx, ownerID, filter)
	if err != nil {
		s.logFailure(ctx, "list", ownerID, uuid.Nil, err)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns one of ownerID's tasks.
func (s *taskServiceImpl) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, ownerID, taskID)
	if err != nil {
		s.logFailure(ctx, "get", ownerID, taskID, err)
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// UpdateTask applies patch to one of ownerID's tasks.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	task, err := s.tasks.Update(ctx, ownerID, taskID, func(t *domain.Task) error {
		return t.Apply(patch)
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		s.logFailure(ctx, "update", ownerID, taskID, err)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.log(ctx).Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", ownerID.String()))
	return task, nil
}

// DeleteTask removes one of ownerID's tasks.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if err := s.tasks.Delete(ctx, ownerID, taskID); err != nil {
		s.logFailure(ctx, "delete", ownerID, taskID, err)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.log(ctx).Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", ownerID.String()))
	return nil
}

// logFailure logs at a level matching how surprising err is. Missing
// tasks are routine; an unavailable store is already reported by the
// connection monitor.
func (s *taskServiceImpl) logFailure(ctx context.Context, op string, ownerID, taskID uuid.UUID, err error) {
	attrs := []any{
		slog.String("operation", op),
		slog.String("user_id", ownerID.String()),
		slog.String("error", err.Error()),
	}
	if taskID != uuid.Nil {
		attrs = append(attrs, slog.String("task_id", taskID.String()))
	}

	switch {
	case store.IsNotFoundError(err):
		s.log(ctx).Debug("task not found for owner", attrs...)
	case store.IsUnavailableError(err):
		s.log(ctx).Warn("task store unavailable", attrs...)
	default:
		s.log(ctx).Error("task operation failed", attrs...)
	}
}
