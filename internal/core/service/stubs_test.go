package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskhub/task-system/internal/core/domain"
	"github.com/taskhub/task-system/internal/core/ports"
)

// In-memory repository stubs shared by the service tests. Insertion order
// stands in for created_at ordering: Recent returns newest first.

type memUserRepo struct {
	seq   int
	order []string
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("u%d", r.seq)
	r.users[created.ID] = cloneUser(created)
	r.order = append(r.order, created.ID)
	return cloneUser(created), nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *memUserRepo) List(_ context.Context, filter ports.ListUsersFilter) ([]*domain.User, int64, error) {
	var matched []*domain.User
	for i := len(r.order) - 1; i >= 0; i-- {
		u, ok := r.users[r.order[i]]
		if !ok {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(u.Name), needle) && !strings.Contains(u.Email, needle) {
				continue
			}
		}
		matched = append(matched, cloneUser(u))
	}
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *memUserRepo) UpdateRole(_ context.Context, id, role string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	return cloneUser(u), nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *memUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *memUserRepo) Recent(_ context.Context, limit int) ([]*domain.User, error) {
	var out []*domain.User
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		if u, ok := r.users[r.order[i]]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

type memTaskRepo struct {
	seq   int
	order []string
	tasks map[string]*domain.Task
	users *memUserRepo
}

func newMemTaskRepo(users *memUserRepo) *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]*domain.Task), users: users}
}

func cloneTask(t *domain.Task) *domain.Task {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

func (r *memTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.seq++
	created := cloneTask(task)
	created.ID = fmt.Sprintf("t%d", r.seq)
	r.tasks[created.ID] = cloneTask(created)
	r.order = append(r.order, created.ID)
	return cloneTask(created), nil
}

func (r *memTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *memTaskRepo) Update(_ context.Context, task *domain.Task) (*domain.Task, error) {
	stored, ok := r.tasks[task.ID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	// mirrors the production repository: owner_id is not in the update set
	stored.Title = task.Title
	stored.Description = task.Description
	stored.Status = task.Status
	stored.UpdatedAt = task.UpdatedAt
	return cloneTask(stored), nil
}

func (r *memTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) DeleteByOwner(_ context.Context, ownerID string) error {
	for id, t := range r.tasks {
		if t.OwnerID == ownerID {
			delete(r.tasks, id)
		}
	}
	return nil
}

func (r *memTaskRepo) List(ctx context.Context, filter ports.ListTasksFilter) ([]*ports.TaskWithOwner, int64, error) {
	var matched []*ports.TaskWithOwner
	for i := len(r.order) - 1; i >= 0; i-- {
		t, ok := r.tasks[r.order[i]]
		if !ok {
			continue
		}
		if filter.OwnerID != "" && t.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(t.Title), needle) && !strings.Contains(strings.ToLower(t.Description), needle) {
				continue
			}
		}
		matched = append(matched, r.withOwner(ctx, cloneTask(t)))
	}
	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.Limit), total, nil
}

func (r *memTaskRepo) Count(_ context.Context, ownerID string) (int64, error) {
	var n int64
	for _, t := range r.tasks {
		if ownerID == "" || t.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *memTaskRepo) CountByStatus(_ context.Context, ownerID string) (map[domain.TaskStatus]int64, error) {
	counts := make(map[domain.TaskStatus]int64)
	for _, t := range r.tasks {
		if ownerID == "" || t.OwnerID == ownerID {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func (r *memTaskRepo) Recent(ctx context.Context, limit int) ([]*ports.TaskWithOwner, error) {
	var out []*ports.TaskWithOwner
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		if t, ok := r.tasks[r.order[i]]; ok {
			out = append(out, r.withOwner(ctx, cloneTask(t)))
		}
	}
	return out, nil
}

func (r *memTaskRepo) withOwner(ctx context.Context, t *domain.Task) *ports.TaskWithOwner {
	result := &ports.TaskWithOwner{Task: t}
	if r.users != nil {
		if u, err := r.users.FindByID(ctx, t.OwnerID); err == nil {
			result.Owner = &domain.TaskOwner{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}
	return result
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type memActivityRepo struct {
	inserted []*domain.Activity
}

func (r *memActivityRepo) Insert(_ context.Context, a *domain.Activity) error {
	clone := *a
	r.inserted = append(r.inserted, &clone)
	return nil
}

func (r *memActivityRepo) Recent(_ context.Context, limit int) ([]*domain.Activity, error) {
	var out []*domain.Activity
	for i := len(r.inserted) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.inserted[i])
	}
	return out, nil
}

// stubRecorder captures enqueued activity events synchronously.
type stubRecorder struct {
	events []ports.ActivityInput
}

func (s *stubRecorder) Enqueue(event ports.ActivityInput) {
	s.events = append(s.events, event)
}

// stubLimiter is a LoginLimiter with scripted behavior.
type stubLimiter struct {
	blocked  bool
	failures int
	resets   int
}

func (s *stubLimiter) TooManyAttempts(context.Context, string) (bool, error) {
	return s.blocked, nil
}

func (s *stubLimiter) RecordFailure(context.Context, string) error {
	s.failures++
	return nil
}

func (s *stubLimiter) Reset(context.Context, string) error {
	s.resets++
	return nil
}
