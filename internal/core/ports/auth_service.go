package ports

import (
	"context"

	"github.com/taskhub/task-system/internal/core/domain"
)

// AuthService orchestrates registration, login, and session verification.
type AuthService interface {
	// Register creates an account with role forced to "user". The email
	// must not already be registered.
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	// Login verifies credentials and issues a session token. Unknown
	// email and wrong password are indistinguishable to the caller.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// Verify decodes a session token and re-fetches the account it names.
	Verify(ctx context.Context, tokenString string) (*domain.User, error)
}
