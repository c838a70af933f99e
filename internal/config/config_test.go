package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "WanderLust", cfg.App.Name)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 24*time.Hour, cfg.Session.TouchAfter)
	assert.False(t, cfg.Session.Secure)
	assert.Equal(t, "http://localhost:9000", cfg.MinIO.PublicURL)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoder.BaseURL)
	assert.Equal(t, time.Second, cfg.Queue.GeoThrottle)
	assert.Empty(t, cfg.Queue.GeoRepairCron)
}

func TestLoad_GeoThrottleFloor(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("GEO_THROTTLE", "200ms")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEO_THROTTLE")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoad_ProductionRequiresSecureCookie(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "a-real-secret")
	t.Setenv("SESSION_SECURE", "false")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECURE")
}

func TestLoad_ProductionOK(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "a-real-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Session.Secure)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_TOUCH_AFTER", "soon")
	t.Setenv("REDIS_DB", "x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.Session.TouchAfter)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestLoadDatabaseConfig(t *testing.T) {
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_RETRY_DELAY", "250ms")

	cfg, err := LoadDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
}

func TestLoadDatabaseConfig_InvalidDuration(t *testing.T) {
	t.Setenv("DB_CONNECT_TIMEOUT", "ten seconds")

	_, err := LoadDatabaseConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_CONNECT_TIMEOUT")
}
