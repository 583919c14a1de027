package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OpenAI   OpenAIConfig
	Places   PlacesConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Pipeline PipelineConfig
	Report   ReportConfig
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type PlacesConfig struct {
	APIKey string
}

type RedisConfig struct {
	// Addr empty disables the Redis cache layer.
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	// URL empty disables Postgres persistence.
	URL string
}

type PipelineConfig struct {
	ThrottleDelay  time.Duration
	CacheTTL       time.Duration
	LocalCacheSize int
}

type ReportConfig struct {
	Dir string
}

func Load() (*Config, error) {
	// Optional .env for local runs; missing file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("LLM_MODEL", "gpt-4o-mini"),
		},
		Places: PlacesConfig{
			APIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			URL: getEnv("POSTGRES_URL", ""),
		},
		Pipeline: PipelineConfig{
			ThrottleDelay:  getEnvAsDuration("THROTTLE_DELAY", 1200*time.Millisecond),
			CacheTTL:       getEnvAsDuration("CACHE_TTL", 7*24*time.Hour),
			LocalCacheSize: getEnvAsInt("LOCAL_CACHE_SIZE", 512),
		},
		Report: ReportConfig{
			Dir: getEnv("REPORT_DIR", "reports"),
		},
	}

	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
