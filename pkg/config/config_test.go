package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, time.Minute, cfg.Listings.PublicCacheTTL)
	assert.Equal(t, 2, cfg.Listings.ViewWorkers)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LISTINGS_VIEW_TIMEOUT", "500ms")
	t.Setenv("LISTINGS_PUBLIC_CACHE_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://elan.az, ,https://admin.elan.az")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Listings.ViewTimeout)
	assert.Equal(t, time.Minute, cfg.Listings.PublicCacheTTL)
	assert.Equal(t, []string{"https://elan.az", "https://admin.elan.az"}, cfg.CORS.AllowedOrigins)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
