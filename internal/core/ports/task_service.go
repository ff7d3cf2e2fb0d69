package ports

import (
	"context"

	"github.com/taskhub/task-system/internal/core/domain"
)

// CreateTaskInput carries a task creation request. The owner is always the
// calling principal.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string // empty defaults to "To Do"
}

// UpdateTaskInput carries a partial task update. Nil fields are left
// untouched. Ownership cannot be changed.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
}

// TaskPage is one page of task list results.
type TaskPage struct {
	Tasks []*TaskWithOwner
	Total int64
	Page  int
	Limit int
}

// TaskStats aggregates task counts by status.
type TaskStats struct {
	ByStatus map[domain.TaskStatus]int64
	Total    int64
}

// TaskService implements task CRUD under the ownership guard: a task is
// visible and mutable only to its owner and to admins.
type TaskService interface {
	List(ctx context.Context, p domain.Principal, filter ListTasksFilter) (*TaskPage, error)
	Get(ctx context.Context, p domain.Principal, id string) (*TaskWithOwner, error)
	Create(ctx context.Context, p domain.Principal, in CreateTaskInput) (*TaskWithOwner, error)
	Update(ctx context.Context, p domain.Principal, id string, in UpdateTaskInput) (*TaskWithOwner, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
	Stats(ctx context.Context, p domain.Principal) (*TaskStats, error)
}
