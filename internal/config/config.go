package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	Env         string
	RedisURL    string
	DatabaseURL string
	SQLitePath  string

	// Reasoning engine
	EngineURL     string
	EngineAPIKey  string
	EngineModel   string
	EngineTimeout time.Duration

	// Rate limiting for the message entry point
	MessageRateLimit  int
	MessageRateWindow time.Duration

	// Queue workers
	WorkerInterval time.Duration
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		RedisURL:          os.Getenv("REDIS_URL"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SQLitePath:        getEnv("SQLITE_PATH", "./data/dispatch.db"),
		EngineURL:         getEnv("ENGINE_URL", "https://api.openai.com"),
		EngineAPIKey:      os.Getenv("ENGINE_API_KEY"),
		EngineModel:       getEnv("ENGINE_MODEL", "gpt-4-turbo-preview"),
		EngineTimeout:     getDuration("ENGINE_TIMEOUT", 30*time.Second),
		MessageRateLimit:  getInt("MESSAGE_RATE_LIMIT", 60),
		MessageRateWindow: getDuration("MESSAGE_RATE_WINDOW", time.Minute),
		WorkerInterval:    getDuration("WORKER_INTERVAL", time.Second),
	}

	// In production, require redis and the engine credentials
	if cfg.Env == "production" {
		if cfg.RedisURL == "" {
			panic("REDIS_URL is required in production")
		}
		if cfg.EngineAPIKey == "" {
			panic("ENGINE_API_KEY is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
