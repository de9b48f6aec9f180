package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config 从环境变量读取
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME" envDefault:"lending"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPwd  string `env:"REDIS_PASSWORD"`

	Port       string        `env:"PORT" envDefault:"3001"`
	WebOrigin  string        `env:"WEB_ORIGIN" envDefault:"http://localhost:5173"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// 内部回调（支付网关）使用的共享密钥
	InternalToken string `env:"INTERNAL_TOKEN"`

	// 仅开发环境：启动时为该用户签发会话
	BootstrapUsername string `env:"BOOTSTRAP_USERNAME"`

	HandoverCodeTTL      time.Duration `env:"HANDOVER_CODE_TTL" envDefault:"24h"`
	VerifyMaxAttempts    int           `env:"VERIFY_MAX_ATTEMPTS" envDefault:"5"`
	VerifyAttemptWindow  time.Duration `env:"VERIFY_ATTEMPT_WINDOW" envDefault:"15m"`
	DefaultMaxBorrowDays int           `env:"DEFAULT_MAX_BORROW_DAYS" envDefault:"14"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadEnv loads .env into the process environment. A missing file is fine.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("load .env", "error", err)
	}
}

// Load parses Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.VerifyMaxAttempts < 0 {
		return Config{}, fmt.Errorf("VERIFY_MAX_ATTEMPTS must be >= 0, got %d", cfg.VerifyMaxAttempts)
	}
	if cfg.HandoverCodeTTL <= 0 {
		return Config{}, fmt.Errorf("HANDOVER_CODE_TTL must be positive")
	}
	if cfg.DefaultMaxBorrowDays <= 0 {
		cfg.DefaultMaxBorrowDays = 14
	}
	return cfg, nil
}

// DSN returns DATABASE_URL when set, otherwise builds one from the DB_* parts.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// SlogLevel maps LOG_LEVEL onto slog levels; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
