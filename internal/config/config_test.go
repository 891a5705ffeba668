package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("STORAGE", "")
	t.Setenv("JWT_EXPIRY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.Storage)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 10, cfg.AuthBurst)
}

func TestLoadRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrProductionSecret)
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("STORAGE", "postgres")

	_, err := Load()
	assert.ErrorIs(t, err, ErrUnknownStorage)
}

func TestLoadClientOverrides(t *testing.T) {
	t.Setenv("FLAVOURFINDER_BASE_URL", "http://localhost:9000")
	t.Setenv("FLAVOURFINDER_HTTP_TIMEOUT", "5s")
	t.Setenv("FLAVOURFINDER_SESSION_CHECK_INTERVAL", "not-a-duration")

	cfg := LoadClient()

	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
}
