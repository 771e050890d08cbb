// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"time"
)

// CategoryDeletePolicy controls what happens when an admin deletes a
// category that posts still reference.
type CategoryDeletePolicy string

const (
	// CategoryDeleteBlock refuses the deletion while referencing posts exist.
	CategoryDeleteBlock CategoryDeletePolicy = "block"
	// CategoryDeleteOrphan clears the category reference on posts, then deletes.
	CategoryDeleteOrphan CategoryDeletePolicy = "orphan"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis (token revocation list)
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Token signing
	JWTSecret string
	TokenTTL  time.Duration

	// CORS origin of the web frontend. Empty allows any origin (dev).
	FrontendOrigin string

	// Category deletion behavior when posts still reference the category.
	CategoryDelete CategoryDeletePolicy
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "pressroom"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "pressroom"),

		RedisHost:     envOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     envOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: envOrDefault("JWT_SECRET", "dev-secret"),

		FrontendOrigin: envOrDefault("FRONTEND_ORIGIN", "http://localhost:5173"),
	}

	ttl := envOrDefault("TOKEN_TTL", "24h")
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttl, err)
	}
	cfg.TokenTTL = d

	policy := CategoryDeletePolicy(envOrDefault("CATEGORY_DELETE_POLICY", string(CategoryDeleteBlock)))
	if policy != CategoryDeleteBlock && policy != CategoryDeleteOrphan {
		return nil, fmt.Errorf("invalid CATEGORY_DELETE_POLICY %q (want %q or %q)",
			policy, CategoryDeleteBlock, CategoryDeleteOrphan)
	}
	cfg.CategoryDelete = policy

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.JWTSecret == "dev-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// RedisAddr returns the Redis host:port address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
