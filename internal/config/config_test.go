package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.SiteURL)
	assert.Equal(t, "https://a.khalti.com/api/v2", cfg.KhaltiBaseURL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, 10, cfg.CheckoutRateLimit)
	assert.Equal(t, 60, cfg.CheckoutRateWindowSeconds)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("SITE_URL", "https://shop.example.com")
	t.Setenv("KHALTI_SECRET_KEY", "live-secret")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("CHECKOUT_RATE_LIMIT", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://shop.example.com", cfg.SiteURL)
	assert.Equal(t, "live-secret", cfg.KhaltiSecretKey)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 3, cfg.CheckoutRateLimit)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestLoad_InvalidSiteURL(t *testing.T) {
	t.Setenv("SITE_URL", "not a url")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid site url")
}

func TestLoad_InvalidKhaltiBaseURL(t *testing.T) {
	t.Setenv("KHALTI_BASE_URL", "::")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid khalti base url")
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("CHECKOUT_RATE_LIMIT", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid checkout rate limit")
}
