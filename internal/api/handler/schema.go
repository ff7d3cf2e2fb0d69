package handler

import (
	"time"

	"github.com/taskhub/task-system/internal/core/domain"
	"github.com/taskhub/task-system/internal/core/ports"
)

// --- Shared response types ---

type paginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func newPagination(page, limit int, total int64) paginationResponse {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return paginationResponse{Page: page, Limit: limit, Total: total, Pages: pages}
}

type ownerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type taskResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      string         `json:"status"`
	OwnerID     string         `json:"owner_user_id"`
	Owner       *ownerResponse `json:"owner,omitempty"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

func toTaskResponse(t *ports.TaskWithOwner) taskResponse {
	resp := taskResponse{
		ID:          t.Task.ID,
		Title:       t.Task.Title,
		Description: t.Task.Description,
		Status:      string(t.Task.Status),
		OwnerID:     t.Task.OwnerID,
		CreatedAt:   formatTime(t.Task.CreatedAt),
		UpdatedAt:   formatTime(t.Task.UpdatedAt),
	}
	if t.Owner != nil {
		resp.Owner = &ownerResponse{ID: t.Owner.ID, Name: t.Owner.Name, Email: t.Owner.Email}
	}
	return resp
}

func toTaskResponses(tasks []*ports.TaskWithOwner) []taskResponse {
	out := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskResponse(t)
	}
	return out
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: formatTime(u.CreatedAt),
		UpdatedAt: formatTime(u.UpdatedAt),
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func statusCounts(m map[domain.TaskStatus]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for _, s := range []domain.TaskStatus{domain.StatusToDo, domain.StatusInProgress, domain.StatusDone} {
		out[string(s)] = m[s]
	}
	return out
}
