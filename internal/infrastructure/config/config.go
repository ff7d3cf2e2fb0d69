package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	PrimaryAdmin PrimaryAdminConfig
	Login        LoginConfig
	Mongo        MongoConfig
	Redis        RedisConfig
}

// PrimaryAdminConfig identifies the permanently protected admin account
// seeded at startup. The email doubles as the identity the authorization
// policy protects against demotion and deletion.
type PrimaryAdminConfig struct {
	Name     string `env:"PRIMARY_ADMIN_NAME,     default=Primary Admin"`
	Email    string `env:"PRIMARY_ADMIN_EMAIL,    default=admin@taskhub.local"`
	Password string `env:"PRIMARY_ADMIN_PASSWORD, default=change-me"`
}

// LoginConfig tunes the failed-login limiter.
type LoginConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	Window      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=task_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
