package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is the development automation API configuration, read from the environment.
type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 10).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 2).
	DBMaxIdleConns int

	JWTSecret string

	// Env is "dev" (default) or "prod". In "dev" a bearer token is logged at startup.
	Env string

	// LogFormat is "text" (default) or "json".
	LogFormat string

	// RateLimitPerMinute caps requests per client IP (default 600).
	RateLimitPerMinute int
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "automationdb"),
		DBUser: getEnv("DB_USER", "automation"),
		DBPass: getEnv("DB_PASS", "automation"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 2),

		JWTSecret: getEnv("JWT_SECRET", "devsecret"),
		Env:       getEnv("ENV", "dev"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 600),
	}
}

// DatabaseURL is the postgres URL form of the DB settings, as golang-migrate expects.
func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
