package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "dev-secret-change-in-production"

// Config holds the backend server settings.
type Config struct {
	Port        string
	Env         string
	LogMode     string
	Storage     string // "mysql" or "memory"
	DatabaseDSN string
	RedisAddr   string
	JWTSecret   string
	JWTExpiry   time.Duration
	AuthRPS     float64
	AuthBurst   int
}

// Load reads the server configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogMode:     getEnv("LOG_MODE", "dev"),
		Storage:     strings.ToLower(getEnv("STORAGE", "mysql")),
		DatabaseDSN: getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/flavourfinder?parseTime=true"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		JWTSecret:   getEnv("JWT_SECRET", devJWTSecret),
		JWTExpiry:   getEnvDuration("JWT_EXPIRY", time.Hour),
		AuthRPS:     getEnvFloat("AUTH_RATE_LIMIT_RPS", 5),
		AuthBurst:   getEnvInt("AUTH_RATE_LIMIT_BURST", 10),
	}

	if cfg.Env == "production" && cfg.JWTSecret == devJWTSecret {
		return cfg, ErrProductionSecret
	}
	if cfg.Storage != "mysql" && cfg.Storage != "memory" {
		return cfg, ErrUnknownStorage
	}

	return cfg, nil
}

// Client holds the settings for the recipe client core.
type Client struct {
	BaseURL         string
	CachePath       string // empty keeps the cache in memory
	LogMode         string
	HTTPTimeout     time.Duration
	RefreshInterval time.Duration
}

// LoadClient reads the client configuration from the environment.
func LoadClient() Client {
	return Client{
		BaseURL:         getEnv("FLAVOURFINDER_BASE_URL", "https://flavourfinder-5dkq.onrender.com"),
		CachePath:       getEnv("FLAVOURFINDER_CACHE_PATH", ".flavourfinder/cache.db"),
		LogMode:         getEnv("LOG_MODE", "dev"),
		HTTPTimeout:     getEnvDuration("FLAVOURFINDER_HTTP_TIMEOUT", 60*time.Second),
		RefreshInterval: getEnvDuration("FLAVOURFINDER_SESSION_CHECK_INTERVAL", time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
