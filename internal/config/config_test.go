package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "data", cfg.DataDir)
	assert.True(t, cfg.Seed)
	assert.False(t, cfg.EnforceAdminToken)
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.False(t, cfg.TLSEnabled())
	assert.Empty(t, cfg.JWTSecret, "empty secret means the generated signing key is used")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORTAL_PORT", "8081")
	t.Setenv("PORTAL_ENV", "production")
	t.Setenv("PORTAL_SEED", "false")
	t.Setenv("PORTAL_TLS_CERT_FILE", "cert.pem")
	t.Setenv("PORTAL_TLS_KEY_FILE", "key.pem")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.Seed)
	assert.True(t, cfg.TLSEnabled())
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("PORTAL_PORT", "70000")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("PORTAL_JWT_SECRET", "short")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("PORTAL_SERVER", "http://example.test:9000")
	t.Setenv("PORTAL_PROBE_TIMEOUT", "500ms")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:9000", cfg.Server)
	assert.Equal(t, 500*time.Millisecond, cfg.ProbeTimeout)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}
