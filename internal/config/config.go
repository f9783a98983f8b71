package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port         string        `env:"PORT"          envDefault:"8080"`
	Environment  string        `env:"ENVIRONMENT"   envDefault:"development"`
	LogLevelName string        `env:"LOG_LEVEL"     envDefault:"info"`
	RedisURL     string        `env:"REDIS_URL"     envDefault:"localhost:6379"`
	DataDir      string        `env:"DATA_DIR"      envDefault:"./data"`
	DefaultWorld string        `env:"DEFAULT_WORLD" envDefault:"sm"`
	CacheTTL     time.Duration `env:"CACHE_TTL"     envDefault:"1h"`
	MaxPasses    int           `env:"MAX_PASSES"    envDefault:"0"`
	QueryTimeout time.Duration `env:"QUERY_TIMEOUT" envDefault:"30s"`
	WorkerID     string        `env:"WORKER_ID"`

	LogLevel slog.Level `env:"-"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxPasses < 0 {
		return nil, fmt.Errorf("MAX_PASSES must not be negative, got %d", cfg.MaxPasses)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	return &cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
