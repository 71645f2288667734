// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable the server reads at startup. All defaults
// live here so call sites cannot drift apart.
type Config struct {
	Port         string
	GeminiAPIKey string
	GeminiModel  string
	BaseURL      string // prefix for share URLs

	LLMTimeout    time.Duration
	ShareTTL      time.Duration // canonical default for share links
	MaxUploadSize int64
	MaxTurns      int // conversation turns retained per persona

	DevMode bool
}

// Load reads .env if present, then the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:          getEnv("PORT", "8080"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:3000"),
		LLMTimeout:    getDuration("LLM_TIMEOUT", 30*time.Second),
		ShareTTL:      getDuration("SHARE_TTL", 7*24*time.Hour),
		MaxUploadSize: getInt64("MAX_UPLOAD_SIZE", 10<<20),
		MaxTurns:      getInt("MAX_CONVERSATION_TURNS", 100),
		DevMode:       os.Getenv("DEV_MODE") == "true",
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
