package ports

import (
	"context"

	"github.com/taskhub/task-system/internal/core/domain"
)

// ListTasksFilter carries all query parameters for listing tasks.
// OwnerID is enforced by the service layer: empty means unscoped (admin),
// non-empty pins the query to that owner's tasks.
type ListTasksFilter struct {
	OwnerID string // empty = no filter (admin); non-empty = scoped to owner
	Status  string // optional: filter by task status
	Search  string // optional: case-insensitive match on title or description
	Page    int    // 1-based
	Limit   int    // max rows per page (capped by the service)
}

// TaskWithOwner pairs a task with its owner projection for list and
// detail responses.
type TaskWithOwner struct {
	Task  *domain.Task
	Owner *domain.TaskOwner
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	// Update persists title/description/status changes. OwnerID is never
	// written after creation.
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	// DeleteByOwner removes all tasks owned by the given user.
	DeleteByOwner(ctx context.Context, ownerID string) error
	// List returns a page of tasks matching filter and the total count.
	List(ctx context.Context, filter ListTasksFilter) ([]*TaskWithOwner, int64, error)
	Count(ctx context.Context, ownerID string) (int64, error)
	// CountByStatus returns per-status counts, scoped to ownerID when
	// non-empty.
	CountByStatus(ctx context.Context, ownerID string) (map[domain.TaskStatus]int64, error)
	Recent(ctx context.Context, limit int) ([]*TaskWithOwner, error)
}
