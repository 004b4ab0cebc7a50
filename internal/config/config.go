package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Port        string
	Env         string
	DBDriver    string // postgres or sqlite
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string
	LogLevel    string
	CacheSize   int
	// Redis backs the request rate limiter; limiting is off when empty
	RedisURL        string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

func Load() Config {
	return Config{
		Port:            getenv("PORT", "8080"),
		Env:             getenv("APP_ENV", EnvDevelopment),
		DBDriver:        getenv("DB_DRIVER", "postgres"),
		DatabaseURL:     getenv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=quill port=5432 sslmode=disable"),
		JWTSecret:       getenv("JWT_SECRET", "quill-dev-secret"),
		TokenTTL:        time.Duration(getenvInt("JWT_EXPIRES_IN_HOURS", 48)) * time.Hour,
		CORSOrigins:     splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		CacheSize:       getenvInt("CACHE_SIZE", 500),
		RedisURL:        getenv("REDIS_URL", ""),
		RateLimitMax:    getenvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: time.Duration(getenvInt("RATE_LIMIT_WINDOW_MINUTES", 20)) * time.Minute,
	}
}

// IsProduction reports whether raw errors must be hidden from clients.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
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

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
