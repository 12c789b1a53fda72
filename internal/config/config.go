package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB      DatabaseConfig
	Redis   RedisConfig
	Pricing PricingConfig
	Worker  WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// PricingConfig contains tunables for the price resolution engine.
type PricingConfig struct {
	// CacheTTL is how long a computed breakdown stays valid in the cache.
	CacheTTL time.Duration
	// ConflictThresholdPct is the minimum percentage delta between a
	// proposed price and a more-specific override before a conflict is
	// flagged. Sub-threshold differences are rounding noise.
	ConflictThresholdPct float64
	// MaxConditionDepth bounds condition-tree recursion.
	MaxConditionDepth int
	// SnapshotSecret keys the HMAC checksum embedded in price snapshots.
	SnapshotSecret string
	// DefaultCurrency is used when neither book nor zone specifies one.
	DefaultCurrency string
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	AuditRetryInterval  time.Duration
	OrphanPruneInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Pricing engine
	var err error
	if cfg.Pricing.CacheTTL, err = parseDurationEnv("PRICE_CACHE_TTL", "900s"); err != nil {
		return nil, fmt.Errorf("invalid PRICE_CACHE_TTL: %w", err)
	}
	cfg.Pricing.ConflictThresholdPct = getEnvFloat("CONFLICT_THRESHOLD_PCT", 1.0)
	cfg.Pricing.MaxConditionDepth = getEnvInt("MAX_CONDITION_DEPTH", 32)
	cfg.Pricing.SnapshotSecret = getEnv("SNAPSHOT_SECRET", "")
	cfg.Pricing.DefaultCurrency = getEnv("DEFAULT_CURRENCY", "INR")

	// Workers (durations)
	if cfg.Worker.AuditRetryInterval, err = parseDurationEnv("AUDIT_RETRY_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid AUDIT_RETRY_INTERVAL: %w", err)
	}
	if cfg.Worker.OrphanPruneInterval, err = parseDurationEnv("ORPHAN_PRUNE_INTERVAL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid ORPHAN_PRUNE_INTERVAL: %w", err)
	}

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for admin authentication")
	}

	// The snapshot secret falls back to the JWT secret; snapshots must
	// always carry a verifiable checksum.
	if cfg.Pricing.SnapshotSecret == "" {
		cfg.Pricing.SnapshotSecret = cfg.JWTSecret
	}

	if cfg.Pricing.ConflictThresholdPct < 0 {
		return nil, errors.New("CONFLICT_THRESHOLD_PCT must be >= 0")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvFloat returns the value of an environment variable as a float or a default if empty/invalid.
func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
