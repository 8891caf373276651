package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит конфигурацию сервера.
// Значения читаются из переменных окружения с разумными дефолтами,
// секрет JWT обязателен.
type Config struct {
	Addr            string
	DatabasePath    string
	JWTSecret       string
	LogLevel        string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	RateLimit       int
	RateWindow      time.Duration
}

// Load читает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Addr:            getEnv("DOCSPACE_ADDR", ":8080"),
		DatabasePath:    getEnv("DOCSPACE_DB_PATH", "docspace.db"),
		JWTSecret:       os.Getenv("DOCSPACE_JWT_SECRET"),
		LogLevel:        getEnv("DOCSPACE_LOG_LEVEL", "info"),
		AccessTokenTTL:  getEnvDuration("DOCSPACE_ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDuration("DOCSPACE_REFRESH_TOKEN_TTL", 720*time.Hour),
		RateLimit:       getEnvInt("DOCSPACE_RATE_LIMIT", 100),
		RateWindow:      getEnvDuration("DOCSPACE_RATE_WINDOW", time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные поля и границы значений
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("DOCSPACE_JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("DOCSPACE_JWT_SECRET must be at least 32 bytes, got %d", len(c.JWTSecret))
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("access token TTL must be positive")
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		return fmt.Errorf("refresh token TTL must be longer than access token TTL")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
