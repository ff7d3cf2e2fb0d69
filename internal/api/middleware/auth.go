package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-system/internal/core/domain"
	"github.com/taskhub/task-system/internal/core/token"
)

const (
	// PrincipalKey is the echo context key holding the authenticated
	// domain.Principal.
	PrincipalKey = "principal"
	// TokenKey is the echo context key holding the raw bearer token, for
	// handlers that re-verify against storage.
	TokenKey = "token"
)

// Auth validates the bearer token and injects the principal into context.
// The principal is rebuilt from the signed claims on every request; no
// storage lookup happens here, so a role change only takes effect once a
// new token is issued.
func Auth(codec token.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := codec.Decode(parts[1])
			if err != nil {
				// malformed, tampered, and expired tokens all map to 401
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(PrincipalKey, domain.Principal{ID: claims.UserID(), Role: claims.Role})
			c.Set(TokenKey, parts[1])

			return next(c)
		}
	}
}
