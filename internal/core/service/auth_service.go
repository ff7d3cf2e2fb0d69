package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-system/internal/core/domain"
	"github.com/taskhub/task-system/internal/core/password"
	"github.com/taskhub/task-system/internal/core/ports"
	"github.com/taskhub/task-system/internal/core/token"
)

// LoginLimiter throttles failed login attempts per identity (Redis-backed
// in production). A nil limiter disables throttling.
type LoginLimiter interface {
	TooManyAttempts(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuthService implements registration, login, and session verification.
type AuthService struct {
	users   ports.UserRepository
	hasher  password.Hasher
	codec   token.Codec
	limiter LoginLimiter
	log     zerolog.Logger
}

func NewAuthService(users ports.UserRepository, hasher password.Hasher, codec token.Codec, limiter LoginLimiter, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, codec: codec, limiter: limiter, log: log}
}

// Register creates a new account. The role is always "user" here: admin
// accounts come only from startup seeding or a later promotion.
func (s *AuthService) Register(ctx context.Context, name, email, plaintext string) (*domain.User, error) {
	if name == "" || email == "" || plaintext == "" {
		return nil, domain.ErrInvalidCredentials
	}

	email = domain.NormalizeEmail(email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created.Public(), nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password both surface as ErrInvalidCredentials so the response
// never reveals which one was wrong.
func (s *AuthService) Login(ctx context.Context, email, plaintext string) (string, *domain.User, error) {
	if email == "" || plaintext == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	email = domain.NormalizeEmail(email)

	if s.limiter != nil {
		blocked, err := s.limiter.TooManyAttempts(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login limiter check failed, proceeding")
		} else if blocked {
			return "", nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		s.recordFailure(ctx, email)
		return "", nil, domain.ErrInvalidCredentials
	}

	signed, err := s.codec.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("login limiter reset failed")
		}
	}

	s.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("login succeeded")
	return signed, user.Public(), nil
}

// Verify decodes a session token and resolves the account it names. The
// claims are trusted only for the subject id: the returned user reflects
// current storage, and a deleted account fails verification even while its
// tokens are unexpired.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		var te *token.Error
		if errors.As(err, &te) {
			s.log.Debug().Int("kind", int(te.Kind)).Msg("token rejected")
		}
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return user.Public(), nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login limiter record failed")
	}
}
