// Package config loads all runtime configuration from environment variables.
// No config files and no third-party config framework are used.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for govportal.
type Config struct {
	HTTP      HTTPConfig
	DB        DBConfig
	Log       LogConfig
	JWT       JWTConfig
	App       AppConfig
	Blob      BlobConfig
	Redis     RedisConfig
	Worker    WorkerConfig
	OTel      OTelConfig
	Changelog ChangelogConfig
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int
}

// DBConfig holds database connection configuration.
type DBConfig struct {
	Driver   string // "sqlite" (default) or "postgres"
	DSN      string // required when Driver == "postgres"
	File     string // SQLite database file path (default: "govportal.db")
	MaxConns int    // Postgres only
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string
	Format string
}

// JWTConfig holds JSON Web Token signing and expiry settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // intentional: holds JWT signing secret loaded from env
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AppConfig holds application-level settings such as seed credentials and the
// anonymous lookup throttle.
type AppConfig struct {
	SeedSuperadminEmail    string
	SeedSuperadminPassword string
	LookupRateLimit        int           // anonymous lookups per window per client
	LookupRateWindow       time.Duration // throttle window
}

// BlobConfig holds upload storage settings.
type BlobConfig struct {
	Dir           string // local directory holding uploaded files
	PublicBaseURL string // prefix of issued download URLs
	MaxUploadMB   int
}

// RedisConfig holds the optional Redis connection used by the lookup
// throttle. Empty Addr means the in-process fallback is used.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // intentional: holds Redis password loaded from env
	DB       int
}

// WorkerConfig holds background worker settings.
type WorkerConfig struct {
	Concurrency int
}

// OTelConfig holds OpenTelemetry exporter settings.
type OTelConfig struct {
	OTLPEndpoint string
}

// ChangelogConfig locates the markdown changelog served by the API.
type ChangelogConfig struct {
	Path string
}

// Load reads configuration from environment variables, applies defaults,
// and returns an error if any required field is absent.
func Load() (*Config, error) {
	cfg := &Config{}

	// HTTP
	cfg.HTTP.Port = envInt("HTTP_PORT", 8080)

	// DB
	cfg.DB.Driver = envStr("DB_DRIVER", "sqlite")
	cfg.DB.File = envStr("DB_FILE", "govportal.db")
	cfg.DB.DSN = os.Getenv("DB_DSN")
	if cfg.DB.Driver == "postgres" && cfg.DB.DSN == "" {
		return nil, errors.New("DB_DSN is required when DB_DRIVER=postgres")
	}
	cfg.DB.MaxConns = envInt("DB_MAX_CONNS", 25)

	// Log
	cfg.Log.Level = envStr("LOG_LEVEL", "info")
	cfg.Log.Format = envStr("LOG_FORMAT", "json")

	// JWT (required)
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	var err error
	cfg.JWT.AccessTTL, err = envDuration("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("JWT_ACCESS_TTL: %w", err)
	}
	cfg.JWT.RefreshTTL, err = envDuration("JWT_REFRESH_TTL", 720*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("JWT_REFRESH_TTL: %w", err)
	}

	// App
	cfg.App.SeedSuperadminEmail = envStr("SEED_SUPERADMIN_EMAIL", "superadmin@govportal.local")
	cfg.App.SeedSuperadminPassword = os.Getenv("SEED_SUPERADMIN_PASSWORD")
	cfg.App.LookupRateLimit = envInt("LOOKUP_RATE_LIMIT", 10)
	cfg.App.LookupRateWindow, err = envDuration("LOOKUP_RATE_WINDOW", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("LOOKUP_RATE_WINDOW: %w", err)
	}

	// Blob
	cfg.Blob.Dir = envStr("UPLOAD_DIR", "uploads")
	cfg.Blob.PublicBaseURL = envStr("PUBLIC_BASE_URL", "/uploads")
	cfg.Blob.MaxUploadMB = envInt("MAX_UPLOAD_MB", 10)

	// Redis (optional)
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = envInt("REDIS_DB", 0)

	// Worker
	cfg.Worker.Concurrency = envInt("WORKER_CONCURRENCY", 10)

	// OTel
	cfg.OTel.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	// Changelog
	cfg.Changelog.Path = envStr("CHANGELOG_PATH", "CHANGELOG.md")

	return cfg, nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", v, err)
	}
	return d, nil
}
