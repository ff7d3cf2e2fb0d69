package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskhub/task-system/internal/api/handler"
	"github.com/taskhub/task-system/internal/api/middleware"
	"github.com/taskhub/task-system/internal/core/domain"
	"github.com/taskhub/task-system/internal/core/password"
	"github.com/taskhub/task-system/internal/core/ports"
	"github.com/taskhub/task-system/internal/core/service"
	"github.com/taskhub/task-system/internal/core/token"
	"github.com/taskhub/task-system/internal/infrastructure/config"
	mongodb "github.com/taskhub/task-system/internal/infrastructure/db/mongo"
	redisdb "github.com/taskhub/task-system/internal/infrastructure/db/redis"
	httphandlers "github.com/taskhub/task-system/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes
// registered. The activity recorder is injected so the caller controls the
// worker pool lifecycle.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, recorder ports.ActivityRecorder, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("taskhub"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	activityRepo := mongodb.NewActivityRepository(db)

	policy := domain.NewPolicy(cfg.PrimaryAdmin.Email)
	hasher := password.NewHasher(0)
	codec := token.NewCodec(cfg.JWTSecret, cfg.TokenTTL)
	limiter := redisdb.NewLoginLimiter(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)

	authService := service.NewAuthService(userRepo, hasher, codec, limiter, log)
	taskService := service.NewTaskService(taskRepo, userRepo, policy, recorder, log)
	adminService := service.NewAdminService(userRepo, taskRepo, activityRepo, recorder, policy, log)

	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)
	adminHandler := handler.NewAdminHandler(adminService)

	authRequired := middleware.Auth(codec)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/profile", authHandler.Profile, authRequired)
	auth.GET("/verify", authHandler.Verify, authRequired)

	// --- Task routes (authenticated) ---
	tasks := e.Group("/api/tasks", authRequired)
	tasks.GET("", taskHandler.List)
	tasks.GET("/stats", taskHandler.Stats)
	tasks.GET("/:id", taskHandler.Get)
	tasks.POST("", taskHandler.Create)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	// --- Admin routes (authenticated + admin role) ---
	admin := e.Group("/api/admin", authRequired, adminOnly)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/promote", adminHandler.Promote)
	admin.PUT("/users/:id/demote", adminHandler.Demote)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/tasks", adminHandler.ListTasks)
	admin.GET("/dashboard/stats", adminHandler.Dashboard)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := httphandlers.NewHealthHandler()
	healthDepsHandler := httphandlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
