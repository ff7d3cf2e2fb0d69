package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-system/internal/api"
	"github.com/taskhub/task-system/internal/core/domain"
	"github.com/taskhub/task-system/internal/core/password"
	"github.com/taskhub/task-system/internal/core/ports"
	"github.com/taskhub/task-system/internal/core/service"
	"github.com/taskhub/task-system/internal/infrastructure/config"
	mongodb "github.com/taskhub/task-system/internal/infrastructure/db/mongo"
	redisdb "github.com/taskhub/task-system/internal/infrastructure/db/redis"
	"github.com/taskhub/task-system/internal/infrastructure/queue"
	"github.com/taskhub/task-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	userRepo := mongodb.NewUserRepository(db)
	if err := seedPrimaryAdmin(ctx, userRepo, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("primary admin seeding failed")
	}

	// Activity pipeline: sharded workers consuming audit events.
	activityRepo := mongodb.NewActivityRepository(db)
	dedup := redisdb.NewDedupChecker(rdb)
	activityService := service.NewActivityService(activityRepo, dedup, logger.WithComponent("activity"))
	dispatcher := queue.NewDispatcher(0, activityService, logger.WithComponent("dispatcher"))
	dispatcher.Start(ctx)

	e := api.NewRouter(db, rdb, cfg, dispatcher, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// seedPrimaryAdmin creates the protected admin account on first startup.
// Re-running is a no-op when the account already exists.
func seedPrimaryAdmin(ctx context.Context, users ports.UserRepository, cfg *config.Config, log zerolog.Logger) error {
	email := domain.NormalizeEmail(cfg.PrimaryAdmin.Email)

	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hasher := password.NewHasher(0)
	hash, err := hasher.Hash(cfg.PrimaryAdmin.Password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	created, err := users.Create(ctx, &domain.User{
		Name:         cfg.PrimaryAdmin.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// concurrent startup may have seeded it first
		if errors.Is(err, domain.ErrUserExists) {
			return nil
		}
		return err
	}

	log.Info().Str("user_id", created.ID).Str("email", email).Msg("primary admin seeded")
	return nil
}
