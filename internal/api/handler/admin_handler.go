package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-system/internal/api/metrics"
	"github.com/taskhub/task-system/internal/core/domain"
	"github.com/taskhub/task-system/internal/core/ports"
)

// AdminHandler handles the admin-only user management and oversight
// endpoints. Routes are gated by the RBAC middleware; the service enforces
// the primary-admin and self-deletion protections on top.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type userListResponse struct {
	Users      []userResponse     `json:"users"`
	Pagination paginationResponse `json:"pagination"`
}

type activityResponse struct {
	ActorID    string `json:"actor_id"`
	Action     string `json:"action"`
	ResourceID string `json:"resource_id"`
	Detail     string `json:"detail,omitempty"`
	Timestamp  string `json:"timestamp"`
}

type dashboardResponse struct {
	Stats struct {
		TotalUsers  int64            `json:"total_users"`
		TotalAdmins int64            `json:"total_admins"`
		TotalTasks  int64            `json:"total_tasks"`
		TaskStats   map[string]int64 `json:"task_stats"`
	} `json:"stats"`
	RecentTasks    []taskResponse     `json:"recent_tasks"`
	RecentUsers    []userResponse     `json:"recent_users"`
	RecentActivity []activityResponse `json:"recent_activity"`
}

// ListUsers handles GET /api/admin/users.
//
// @Summary      List user accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number (1-based)"
// @Param        limit   query     int     false  "Rows per page (max 100)"
// @Param        search  query     string  false  "Search in name and email"
// @Success      200     {object}  userListResponse
// @Failure      401     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListUsers(c.Request().Context(), ports.ListUsersFilter{
		Search: c.QueryParam("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userListResponse{
		Users:      toUserResponses(result.Users),
		Pagination: newPagination(result.Page, result.Limit, result.Total),
	})
}

// Promote handles PUT /api/admin/users/:id/promote.
//
// @Summary      Promote a user to admin
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/admin/users/{id}/promote [put]
func (h *AdminHandler) Promote(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	user, err := h.service.Promote(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Demote handles PUT /api/admin/users/:id/demote. The primary admin can
// never be demoted.
//
// @Summary      Demote an admin to user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/admin/users/{id}/demote [put]
func (h *AdminHandler) Demote(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	user, err := h.service.Demote(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			metrics.AuthzDenialsTotal.WithLabelValues("user").Inc()
		}
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteUser handles DELETE /api/admin/users/:id. Rejected for the primary
// admin and for the caller's own account.
//
// @Summary      Delete a user account
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "User id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteUser(c.Request().Context(), p, c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			metrics.AuthzDenialsTotal.WithLabelValues("user").Inc()
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTasks handles GET /api/admin/tasks, listing tasks across all owners.
//
// @Summary      List all tasks
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page     query     int     false  "Page number (1-based)"
// @Param        limit    query     int     false  "Rows per page (max 100)"
// @Param        status   query     string  false  "Filter by status"
// @Param        user_id  query     string  false  "Filter by owner"
// @Param        search   query     string  false  "Search in title and description"
// @Success      200      {object}  taskListResponse
// @Failure      401      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Router       /api/admin/tasks [get]
func (h *AdminHandler) ListTasks(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListAllTasks(c.Request().Context(), ports.ListTasksFilter{
		OwnerID: c.QueryParam("user_id"),
		Status:  c.QueryParam("status"),
		Search:  c.QueryParam("search"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, taskListResponse{
		Tasks:      toTaskResponses(result.Tasks),
		Pagination: newPagination(result.Page, result.Limit, result.Total),
	})
}

// Dashboard handles GET /api/admin/dashboard/stats.
//
// @Summary      Admin dashboard aggregates
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/admin/dashboard/stats [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	stats, err := h.service.DashboardStats(c.Request().Context())
	if err != nil {
		return err
	}

	var resp dashboardResponse
	resp.Stats.TotalUsers = stats.TotalUsers
	resp.Stats.TotalAdmins = stats.TotalAdmins
	resp.Stats.TotalTasks = stats.TotalTasks
	resp.Stats.TaskStats = statusCounts(stats.TasksByStatus)
	resp.RecentTasks = toTaskResponses(stats.RecentTasks)
	resp.RecentUsers = toUserResponses(stats.RecentUsers)
	resp.RecentActivity = make([]activityResponse, len(stats.RecentActivity))
	for i, a := range stats.RecentActivity {
		resp.RecentActivity[i] = activityResponse{
			ActorID:    a.ActorID,
			Action:     a.Action,
			ResourceID: a.ResourceID,
			Detail:     a.Detail,
			Timestamp:  a.Timestamp.UTC().Format(time.RFC3339),
		}
	}
	return c.JSON(http.StatusOK, resp)
}
