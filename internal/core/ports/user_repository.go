package ports

import (
	"context"

	"github.com/taskhub/task-system/internal/core/domain"
)

// ListUsersFilter carries the query parameters for listing users.
type ListUsersFilter struct {
	Search string // optional: partial match on name or email
	Page   int    // 1-based
	Limit  int    // max rows per page (capped by the service)
}

// UserRepository defines persistence operations for user accounts. Email
// lookups always receive a normalized address.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// List returns a page of users matching filter and the total count.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	// UpdateRole sets the user's role in a single atomic write.
	UpdateRole(ctx context.Context, id, role string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	Recent(ctx context.Context, limit int) ([]*domain.User, error)
}
