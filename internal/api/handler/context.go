package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-system/internal/api/middleware"
	"github.com/taskhub/task-system/internal/core/domain"
)

// principalFrom extracts the principal injected by the Auth middleware.
// Its presence proves the middleware ran; a principal without an id is a
// structurally valid but unusable token, rejected with 401.
func principalFrom(c echo.Context) (domain.Principal, error) {
	p, ok := c.Get(middleware.PrincipalKey).(domain.Principal)
	if !ok || p.ID == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}

// rawTokenFrom returns the bearer token stored by the Auth middleware,
// for handlers that re-verify the session against storage.
func rawTokenFrom(c echo.Context) (string, error) {
	t, ok := c.Get(middleware.TokenKey).(string)
	if !ok || t == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return t, nil
}
