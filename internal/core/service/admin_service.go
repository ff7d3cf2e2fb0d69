package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-system/internal/core/domain"
	"github.com/taskhub/task-system/internal/core/ports"
)

const dashboardRecentLimit = 5

// AdminService implements the admin-only account and oversight operations.
// Route-level RBAC guarantees the caller is an admin; this service enforces
// the two protections that go beyond role: the primary admin is untouchable
// and no admin may delete its own account.
type AdminService struct {
	users    ports.UserRepository
	tasks    ports.TaskRepository
	activity ports.ActivityRepository
	recorder ports.ActivityRecorder
	policy   domain.Policy
	log      zerolog.Logger
}

func NewAdminService(users ports.UserRepository, tasks ports.TaskRepository, activity ports.ActivityRepository, recorder ports.ActivityRecorder, policy domain.Policy, log zerolog.Logger) *AdminService {
	return &AdminService{users: users, tasks: tasks, activity: activity, recorder: recorder, policy: policy, log: log}
}

// ListUsers returns a page of accounts without password hashes.
func (s *AdminService) ListUsers(ctx context.Context, filter ports.ListUsersFilter) (*ports.UserPage, error) {
	clampPaging(&filter.Page, &filter.Limit)

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	public := make([]*domain.User, len(users))
	for i, u := range users {
		public[i] = u.Public()
	}
	return &ports.UserPage{Users: public, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Promote grants the admin role to a plain user.
func (s *AdminService) Promote(ctx context.Context, p domain.Principal, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleAdmin {
		return nil, domain.ErrAlreadyAdmin
	}

	updated, err := s.users.UpdateRole(ctx, userID, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.record(p, domain.ActivityUserPromoted, userID, updated.Email)
	s.log.Info().Str("user_id", userID).Str("actor_id", p.ID).Msg("user promoted to admin")
	return updated.Public(), nil
}

// Demote revokes the admin role. The primary admin is permanently
// protected, including from itself.
func (s *AdminService) Demote(ctx context.Context, p domain.Principal, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.policy.IsPrimaryAdmin(user) {
		return nil, domain.ErrForbidden
	}
	if user.Role == domain.RoleUser {
		return nil, domain.ErrAlreadyUser
	}

	updated, err := s.users.UpdateRole(ctx, userID, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	s.record(p, domain.ActivityUserDemoted, userID, updated.Email)
	s.log.Info().Str("user_id", userID).Str("actor_id", p.ID).Msg("admin demoted to user")
	return updated.Public(), nil
}

// DeleteUser removes an account and all tasks it owns. Both protections
// reject independently: the primary admin can never be deleted, and no
// caller may delete its own account through this path.
func (s *AdminService) DeleteUser(ctx context.Context, p domain.Principal, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if s.policy.IsPrimaryAdmin(user) {
		return domain.ErrForbidden
	}
	if s.policy.IsSelf(p, userID) {
		return domain.ErrForbidden
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	// orphaned tasks would be invisible to everyone but admins, remove them
	if err := s.tasks.DeleteByOwner(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to delete tasks of removed user")
	}

	s.record(p, domain.ActivityUserDeleted, userID, user.Email)
	s.log.Info().Str("user_id", userID).Str("actor_id", p.ID).Msg("user deleted")
	return nil
}

// ListAllTasks returns tasks across all owners, with optional owner,
// status, and search filters.
func (s *AdminService) ListAllTasks(ctx context.Context, filter ports.ListTasksFilter) (*ports.TaskPage, error) {
	clampPaging(&filter.Page, &filter.Limit)

	if filter.Status != "" && !domain.TaskStatus(filter.Status).IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	tasks, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.TaskPage{Tasks: tasks, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// DashboardStats aggregates the counts and recency feeds shown on the
// admin dashboard.
func (s *AdminService) DashboardStats(ctx context.Context) (*ports.DashboardStats, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalAdmins, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	totalTasks, err := s.tasks.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	byStatus, err := s.tasks.CountByStatus(ctx, "")
	if err != nil {
		return nil, err
	}

	recentTasks, err := s.tasks.Recent(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}
	recentUsers, err := s.users.Recent(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}
	publicUsers := make([]*domain.User, len(recentUsers))
	for i, u := range recentUsers {
		publicUsers[i] = u.Public()
	}

	stats := &ports.DashboardStats{
		TotalUsers:    totalUsers,
		TotalAdmins:   totalAdmins,
		TotalTasks:    totalTasks,
		TasksByStatus: byStatus,
		RecentTasks:   recentTasks,
		RecentUsers:   publicUsers,
	}

	if s.activity != nil {
		recentActivity, err := s.activity.Recent(ctx, dashboardRecentLimit)
		if err != nil {
			s.log.Warn().Err(err).Msg("recent activity lookup failed")
		} else {
			stats.RecentActivity = recentActivity
		}
	}

	return stats, nil
}

func (s *AdminService) record(p domain.Principal, action, resourceID, detail string) {
	if s.recorder == nil {
		return
	}
	s.recorder.Enqueue(ports.ActivityInput{
		ActorID:    p.ID,
		Action:     action,
		ResourceID: resourceID,
		Detail:     detail,
		Timestamp:  time.Now().UTC(),
	})
}
