package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	DriverREST   = "rest"
	DriverSQLite = "sqlite3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	BackendDriver         string
	BackendURL            string
	BackendAPIKey         string
	DBPath                string
	DBDriver              string
	RedisAddr             string
	GRPCPort              int
	GRPCReflectionEnabled bool
	HTTPAddr              string
	PublicOrigin          string
	StatsCacheTTL         time.Duration
	ProgressTTL           time.Duration
	EventWriteTimeout     time.Duration
}

// LoadFromEnv loads configuration from environment variables. Unparseable
// values fall back to their defaults.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		BackendDriver:         getEnv("BACKEND_DRIVER", DriverREST),
		BackendURL:            os.Getenv("BACKEND_URL"),
		BackendAPIKey:         os.Getenv("BACKEND_API_KEY"),
		DBPath:                getEnv("DB_PATH", "./data/events.db"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		GRPCPort:              getInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getBool("GRPC_REFLECTION_ENABLED", false),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		PublicOrigin:          os.Getenv("PUBLIC_ORIGIN"),
		StatsCacheTTL:         getDuration("STATS_CACHE_TTL", time.Minute),
		ProgressTTL:           getDuration("PROGRESS_TTL", time.Hour),
		EventWriteTimeout:     getDuration("EVENT_WRITE_TIMEOUT", 5*time.Second),
	}
}

// Validate reports missing or contradictory settings so startup can fail
// before any connection is opened.
func (c *Config) Validate() error {
	var errs []error

	switch c.BackendDriver {
	case DriverREST:
		if c.BackendURL == "" {
			errs = append(errs, errors.New("BACKEND_URL is required for the rest backend"))
		}
		if c.BackendAPIKey == "" {
			errs = append(errs, errors.New("BACKEND_API_KEY is required for the rest backend"))
		}
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for the sqlite3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown BACKEND_DRIVER %q", c.BackendDriver))
	}

	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("GRPC_PORT %d out of range", c.GRPCPort))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
