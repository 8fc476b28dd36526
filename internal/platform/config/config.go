package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr               string
	Environment        string
	LogLevel           string
	DatabaseURL        string
	RunMigrations      bool
	MigrationsDir      string
	RedisURL           string
	FinancialCacheTTL  time.Duration
	FixturesPath       string
	JWTSecret          string
	MaxBodyBytes       int64
	RateLimitPerMinute int
	BulkWorkers        int
	BulkRunInterval    time.Duration
	MetricsEnabled     bool
	CompanyName        string
}

func Load() Config {
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		Environment:        getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "migrations"),
		RedisURL:           getEnv("REDIS_URL", ""),
		FinancialCacheTTL:  getEnvDuration("FINANCIAL_CACHE_TTL", 10*time.Minute),
		FixturesPath:       getEnv("COMMISSION_FIXTURES", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		BulkWorkers:        getEnvInt("BULK_WORKERS", 8),
		BulkRunInterval:    getEnvDuration("BULK_RUN_INTERVAL", 0),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		CompanyName:        getEnv("COMPANY_NAME", "Print Shop"),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" && strings.TrimSpace(c.FixturesPath) == "" {
		return fmt.Errorf("DATABASE_URL or COMMISSION_FIXTURES is required")
	}
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.BulkWorkers <= 0 {
		return fmt.Errorf("BULK_WORKERS must be positive")
	}
	if c.BulkRunInterval < 0 {
		return fmt.Errorf("BULK_RUN_INTERVAL must not be negative")
	}
	return nil
}
