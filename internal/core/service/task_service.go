package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-system/internal/core/domain"
	"github.com/taskhub/task-system/internal/core/ports"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// TaskService implements task CRUD under the ownership guard. Every
// operation on a specific task checks owner-or-admin before touching the
// repository; list and stats queries are scoped to the principal unless it
// is an admin.
type TaskService struct {
	tasks    ports.TaskRepository
	users    ports.UserRepository
	policy   domain.Policy
	activity ports.ActivityRecorder
	log      zerolog.Logger
}

func NewTaskService(tasks ports.TaskRepository, users ports.UserRepository, policy domain.Policy, activity ports.ActivityRecorder, log zerolog.Logger) *TaskService {
	return &TaskService{tasks: tasks, users: users, policy: policy, activity: activity, log: log}
}

// List returns a page of tasks. Non-admin principals only ever see their
// own tasks regardless of the requested filter.
func (s *TaskService) List(ctx context.Context, p domain.Principal, filter ports.ListTasksFilter) (*ports.TaskPage, error) {
	if !s.policy.IsAdmin(p) {
		filter.OwnerID = p.ID
	}
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

// Get returns a single task, rejecting principals that neither own it nor
// hold the admin role.
func (s *TaskService) Get(ctx context.Context, p domain.Principal, id string) (*ports.TaskWithOwner, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanAccessTask(p, task) {
		return nil, domain.ErrForbidden
	}
	return s.withOwner(ctx, task)
}

// Create stores a new task owned by the principal.
func (s *TaskService) Create(ctx context.Context, p domain.Principal, in ports.CreateTaskInput) (*ports.TaskWithOwner, error) {
	status := domain.TaskStatus(in.Status)
	if in.Status == "" {
		status = domain.StatusToDo
	}
	if !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	task := &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		OwnerID:     p.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create task")
		return nil, err
	}

	s.record(p, domain.ActivityTaskCreated, created.ID, created.Title)
	s.log.Info().Str("task_id", created.ID).Str("owner_id", p.ID).Msg("task created")
	return s.withOwner(ctx, created)
}

// Update applies a partial update. The guard runs before anything is
// written and the owner reference is never touched.
func (s *TaskService) Update(ctx context.Context, p domain.Principal, id string, in ports.UpdateTaskInput) (*ports.TaskWithOwner, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanAccessTask(p, task) {
		return nil, domain.ErrForbidden
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		status := domain.TaskStatus(*in.Status)
		if !status.IsValid() {
			return nil, domain.ErrInvalidStatus
		}
		task.Status = status
	}
	task.UpdatedAt = time.Now().UTC()

	updated, err := s.tasks.Update(ctx, task)
	if err != nil {
		return nil, err
	}

	s.record(p, domain.ActivityTaskUpdated, updated.ID, string(updated.Status))
	return s.withOwner(ctx, updated)
}

// Delete removes a task after the ownership guard passes.
func (s *TaskService) Delete(ctx context.Context, p domain.Principal, id string) error {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.policy.CanAccessTask(p, task) {
		return domain.ErrForbidden
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	s.record(p, domain.ActivityTaskDeleted, id, task.Title)
	s.log.Info().Str("task_id", id).Str("actor_id", p.ID).Msg("task deleted")
	return nil
}

// Stats returns per-status task counts scoped like List.
func (s *TaskService) Stats(ctx context.Context, p domain.Principal) (*ports.TaskStats, error) {
	ownerID := p.ID
	if s.policy.IsAdmin(p) {
		ownerID = ""
	}

	byStatus, err := s.tasks.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	total, err := s.tasks.Count(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &ports.TaskStats{ByStatus: byStatus, Total: total}, nil
}

func (s *TaskService) withOwner(ctx context.Context, task *domain.Task) (*ports.TaskWithOwner, error) {
	result := &ports.TaskWithOwner{Task: task}
	owner, err := s.users.FindByID(ctx, task.OwnerID)
	if err != nil {
		// owner lookup is presentation-only, the task itself is authoritative
		s.log.Warn().Err(err).Str("owner_id", task.OwnerID).Msg("task owner lookup failed")
		return result, nil
	}
	result.Owner = &domain.TaskOwner{ID: owner.ID, Name: owner.Name, Email: owner.Email}
	return result, nil
}

func (s *TaskService) record(p domain.Principal, action, resourceID, detail string) {
	if s.activity == nil {
		return
	}
	s.activity.Enqueue(ports.ActivityInput{
		ActorID:    p.ID,
		Action:     action,
		ResourceID: resourceID,
		Detail:     detail,
		Timestamp:  time.Now().UTC(),
	})
}

func clampPaging(page, limit *int) {
	if *page < 1 {
		*page = 1
	}
	if *limit <= 0 {
		*limit = defaultPageLimit
	}
	if *limit > maxPageLimit {
		*limit = maxPageLimit
	}
}
