package ports

import (
	"context"

	"github.com/taskhub/task-system/internal/core/domain"
)

// UserPage is one page of user list results.
type UserPage struct {
	Users []*domain.User
	Total int64
	Page  int
	Limit int
}

// DashboardStats is the admin dashboard aggregate.
type DashboardStats struct {
	TotalUsers     int64
	TotalAdmins    int64
	TotalTasks     int64
	TasksByStatus  map[domain.TaskStatus]int64
	RecentTasks    []*TaskWithOwner
	RecentUsers    []*domain.User
	RecentActivity []*domain.Activity
}

// AdminService implements the admin-only account and oversight operations.
// Routes invoking it are gated to admins; the service additionally enforces
// the primary-admin and self-deletion protections.
type AdminService interface {
	ListUsers(ctx context.Context, filter ListUsersFilter) (*UserPage, error)
	// Promote grants the admin role. Fails with ErrAlreadyAdmin when the
	// target already has it.
	Promote(ctx context.Context, p domain.Principal, userID string) (*domain.User, error)
	// Demote revokes the admin role. The primary admin can never be
	// demoted; demoting a plain user fails with ErrAlreadyUser.
	Demote(ctx context.Context, p domain.Principal, userID string) (*domain.User, error)
	// DeleteUser removes an account and its tasks. The primary admin and
	// the calling principal's own account are both protected.
	DeleteUser(ctx context.Context, p domain.Principal, userID string) error
	ListAllTasks(ctx context.Context, filter ListTasksFilter) (*TaskPage, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}
