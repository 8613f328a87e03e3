package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "https://protacc-backend.onrender.com/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, 24*time.Hour, cfg.CookieTTL)
	assert.True(t, cfg.SecureCookie)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("DEBUG", "true")
	t.Setenv("API_BASE_URL", "http://localhost:9000/api/v1")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("SESSION_COOKIE_TTL", "48h")
	t.Setenv("SESSION_COOKIE_SECURE", "false")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "http://localhost:9000/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, 48*time.Hour, cfg.CookieTTL)
	assert.False(t, cfg.SecureCookie)
}

func TestDurationAcceptsBareHours(t *testing.T) {
	t.Setenv("SESSION_COOKIE_TTL", "72")
	assert.Equal(t, 72*time.Hour, Load().CookieTTL)

	t.Setenv("SESSION_COOKIE_TTL", "not-a-duration")
	assert.Equal(t, 24*time.Hour, Load().CookieTTL)
}

func TestBoolParsing(t *testing.T) {
	t.Setenv("DEBUG", "1")
	assert.True(t, Load().Debug)

	t.Setenv("DEBUG", "TRUE")
	assert.True(t, Load().Debug)

	t.Setenv("DEBUG", "no")
	assert.False(t, Load().Debug)
}
