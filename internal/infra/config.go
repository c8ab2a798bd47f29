package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	GeoIPDBPath      string
	AllowedOrigins   []string
	TextAPIKey       string
	TextBaseURL      string
	TextModel        string
	VideoAPIKey      string
	VideoBaseURL     string
	VideoBackend     string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	PollInterval     time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// Text-model and video-model credentials are independent: the chat relay only
// needs TEXT_API_KEY, the task-based video flow only VIDEO_API_KEY.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		AllowedOrigins:   splitHosts(getEnv("ALLOWED_ORIGINS", "http://localhost:8080")),
		TextAPIKey:       os.Getenv("TEXT_API_KEY"),
		TextBaseURL:      getEnv("TEXT_BASE_URL", "https://api.poe.com/v1"),
		TextModel:        getEnv("TEXT_MODEL", "GPT-5.1"),
		VideoAPIKey:      os.Getenv("VIDEO_API_KEY"),
		VideoBaseURL:     getEnv("VIDEO_BASE_URL", "https://api.together.xyz/v1"),
		VideoBackend:     getEnv("VIDEO_BACKEND", "task"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		PollInterval:     time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 5)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.VideoBackend {
	case "task", "chat":
	default:
		return nil, fmt.Errorf("VIDEO_BACKEND must be %q or %q, got %q", "task", "chat", cfg.VideoBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitHosts(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
