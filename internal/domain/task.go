package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the completion state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task validation errors
var (
	ErrEmptyTaskID     = NewValidationError("id", "cannot be empty", nil)
	ErrEmptyTaskUserID = NewValidationError("user_id", "cannot be empty", nil)
	ErrTitleRequired   = NewValidationError("title", "is required", nil)
	ErrInvalidStatus   = NewValidationError("status", "must be pending or completed", nil)
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// ParseTaskStatus returns the status named by s and whether it is valid.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	status := TaskStatus(s)
	return status, status.Valid()
}

// Task is a unit of work owned by exactly one user.
// The owner is fixed at creation.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewTask creates a task owned by userID. A missing or unknown status
// defaults to pending.
func NewTask(userID uuid.UUID, title, description string, status TaskStatus) (*Task, error) {
	if !status.Valid() {
		status = TaskStatusPending
	}

	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// TaskPatch is a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
}

// Apply copies the present fields of p onto t. A status outside the known
// set is ignored rather than rejected; existing clients rely on that.
// A present but blank title is rejected and leaves t unchanged.
func (t *Task) Apply(p TaskPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}

	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Status != nil {
		if status, ok := ParseTaskStatus(*p.Status); ok {
			t.Status = status
		}
	}
	return nil
}

// TaskFilter narrows a task listing. Zero values mean "no filter".
// Ownership is not part of the filter; it is always applied separately.
type TaskFilter struct {
	Status TaskStatus
	Search string
}

// NewTaskFilter builds a filter from raw query values. An unknown status
// is dropped, matching how the listing has always treated it. Any
// non-empty search term filters, whitespace included.
func NewTaskFilter(status, search string) TaskFilter {
	f := TaskFilter{Search: search}
	if s, ok := ParseTaskStatus(status); ok {
		f.Status = s
	}
	return f
}

// Matches reports whether t satisfies the filter. Search is a
// case-insensitive substring match over title or description.
func (f TaskFilter) Matches(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}
