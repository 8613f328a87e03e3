package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds every environment-driven setting.
type AppConfig struct {
	// Server
	HTTPAddr string
	Debug    bool

	// Remote services API
	APIBaseURL string
	APITimeout time.Duration

	// Session cookies
	CookieTTL    time.Duration
	SecureCookie bool
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr: getEnv("HTTP_ADDR", ":3000"),
		Debug:    getEnvBool("DEBUG", false),

		APIBaseURL: getEnv("API_BASE_URL", "https://protacc-backend.onrender.com/api/v1"),
		APITimeout: getEnvDuration("API_TIMEOUT", 15*time.Second),

		CookieTTL:    getEnvDuration("SESSION_COOKIE_TTL", 24*time.Hour),
		SecureCookie: getEnvBool("SESSION_COOKIE_SECURE", true),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.ToLower(v) == "true" || v == "1"
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if hours, err := strconv.Atoi(v); err == nil {
		return time.Duration(hours) * time.Hour
	}
	return fallback
}
