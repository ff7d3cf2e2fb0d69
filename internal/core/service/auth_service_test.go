package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/taskhub/task-system/internal/core/domain"
	"github.com/taskhub/task-system/internal/core/password"
	"github.com/taskhub/task-system/internal/core/token"
)

const testSecret = "test-secret"

func newAuthService(users *memUserRepo, limiter LoginLimiter) *AuthService {
	return NewAuthService(users, password.NewHasher(4), token.NewCodec(testSecret, time.Hour), limiter, zerolog.Nop())
}

func mustRegister(t *testing.T, s *AuthService, name, email, pass string) *domain.User {
	t.Helper()
	u, err := s.Register(context.Background(), name, email, pass)
	if err != nil {
		t.Fatalf("Register(%s) returned error: %v", email, err)
	}
	return u
}

func TestAuthService_Register(t *testing.T) {
	users := newMemUserRepo()
	svc := newAuthService(users, nil)

	created := mustRegister(t, svc, "Alice", "  Alice@Example.COM ", "password123")

	if created.Email != "alice@example.com" {
		t.Fatalf("email = %q, want normalized alice@example.com", created.Email)
	}
	if created.Role != domain.RoleUser {
		t.Fatalf("role = %q, registration must always yield a plain user", created.Role)
	}
	if created.PasswordHash != "" {
		t.Fatalf("returned user must not carry a password hash")
	}

	stored, err := users.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("stored user not found: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "password123" {
		t.Fatalf("stored hash = %q, want a bcrypt digest", stored.PasswordHash)
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	users := newMemUserRepo()
	svc := newAuthService(users, nil)

	mustRegister(t, svc, "Alice", "alice@example.com", "password123")

	// same email with different case must still conflict
	if _, err := svc.Register(context.Background(), "Imposter", "ALICE@example.com", "other-pass"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("err = %v, want ErrUserExists", err)
	}
	if n, _ := users.Count(context.Background()); n != 1 {
		t.Fatalf("user count = %d, want 1", n)
	}
}

func TestAuthService_Login(t *testing.T) {
	users := newMemUserRepo()
	limiter := &stubLimiter{}
	svc := newAuthService(users, limiter)

	created := mustRegister(t, svc, "Alice", "alice@example.com", "password123")

	signed, user, err := svc.Login(context.Background(), "Alice@Example.com", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("user id = %q, want %q", user.ID, created.ID)
	}
	if user.PasswordHash != "" {
		t.Fatalf("returned user must not carry a password hash")
	}
	if limiter.resets != 1 {
		t.Fatalf("limiter resets = %d, want 1", limiter.resets)
	}

	claims, err := token.NewCodec(testSecret, time.Hour).Decode(signed)
	if err != nil {
		t.Fatalf("issued token failed to decode: %v", err)
	}
	if claims.UserID() != created.ID {
		t.Fatalf("token subject = %q, want %q", claims.UserID(), created.ID)
	}
	if claims.Role != domain.RoleUser {
		t.Fatalf("token role = %q, want %q", claims.Role, domain.RoleUser)
	}
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	users := newMemUserRepo()
	limiter := &stubLimiter{}
	svc := newAuthService(users, limiter)

	mustRegister(t, svc, "Alice", "alice@example.com", "password123")

	// unknown email and wrong password surface identically
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "password123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), "alice@example.com", "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if limiter.failures != 2 {
		t.Fatalf("recorded failures = %d, want 2", limiter.failures)
	}
}

func TestAuthService_LoginThrottled(t *testing.T) {
	users := newMemUserRepo()
	svc := newAuthService(users, &stubLimiter{blocked: true})

	mustRegister(t, svc, "Alice", "alice@example.com", "password123")

	// even correct credentials are rejected while the identity is blocked
	if _, _, err := svc.Login(context.Background(), "alice@example.com", "password123"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("err = %v, want ErrTooManyAttempts", err)
	}
}

func TestAuthService_Verify(t *testing.T) {
	users := newMemUserRepo()
	svc := newAuthService(users, nil)

	created := mustRegister(t, svc, "Alice", "alice@example.com", "password123")
	signed, _, err := svc.Login(context.Background(), "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	user, err := svc.Verify(context.Background(), signed)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("verified id = %q, want %q", user.ID, created.ID)
	}
	if user.PasswordHash != "" {
		t.Fatalf("verified user must not carry a password hash")
	}
}

func TestAuthService_VerifyDeletedUser(t *testing.T) {
	users := newMemUserRepo()
	svc := newAuthService(users, nil)

	created := mustRegister(t, svc, "Alice", "alice@example.com", "password123")
	signed, _, err := svc.Login(context.Background(), "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	// an unexpired token dies with its account
	if err := users.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Verify(context.Background(), signed); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_VerifyBadTokens(t *testing.T) {
	users := newMemUserRepo()
	svc := newAuthService(users, nil)

	created := mustRegister(t, svc, "Alice", "alice@example.com", "password123")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		Role: domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   created.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredSigned, err := expired.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	tamperedSigned, err := token.NewCodec("another-secret", time.Hour).Issue(created.ID, domain.RoleUser)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	for name, tokenString := range map[string]string{
		"expired":   expiredSigned,
		"tampered":  tamperedSigned,
		"malformed": "not-a-token",
	} {
		if _, err := svc.Verify(context.Background(), tokenString); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("%s: err = %v, want ErrInvalidCredentials", name, err)
		}
	}
}
