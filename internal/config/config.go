// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Port               string
	Env                string
	StoreBackend       string // "sqlite" or "redis"
	DBPath             string
	RedisAddr          string
	SkillAppID         string // empty disables the application-id check
	TimestampTolerance time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("APP_ENV", "development"),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
		DBPath:             getEnv("DB_PATH", "./data/dogtrainer.db"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		SkillAppID:         getEnv("SKILL_APP_ID", ""),
		TimestampTolerance: time.Duration(getEnvInt("TIMESTAMP_TOLERANCE_SECONDS", 150)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.StoreBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendRedis, c.StoreBackend)
	}
	if c.TimestampTolerance <= 0 {
		return fmt.Errorf("TIMESTAMP_TOLERANCE_SECONDS must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
