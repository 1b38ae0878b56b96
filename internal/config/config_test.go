package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_CONN", "postgres://localhost/test")
	t.Setenv("HCLOUD_TOKEN", "token")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.System.Listen)
	assert.False(t, cfg.System.IsProd)
	assert.Equal(t, "cx32", cfg.Cloud.ServerType)
	assert.Equal(t, 10*time.Second, cfg.Provision.PollInterval)
	assert.Equal(t, 30, cfg.Provision.PollAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Deploy.CertWatchdog)
	assert.Equal(t, 30*time.Minute, cfg.Deploy.ConfigTimeout)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DB_CONN", "postgres://localhost/test")
	t.Setenv("HCLOUD_TOKEN", "token")
	os.Unsetenv("HCLOUD_TOKEN")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HCLOUD_TOKEN")
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("MODE", "production")
	t.Setenv("LISTEN", ":9000")
	t.Setenv("PROVISION_POLL_INTERVAL", "2s")
	t.Setenv("PROVISION_POLL_ATTEMPTS", "5")
	t.Setenv("CERT_WATCHDOG", "1m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.System.IsProd)
	assert.Equal(t, ":9000", cfg.System.Listen)
	assert.Equal(t, 2*time.Second, cfg.Provision.PollInterval)
	assert.Equal(t, 5, cfg.Provision.PollAttempts)
	assert.Equal(t, time.Minute, cfg.Deploy.CertWatchdog)
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("PROVISION_POLL_INTERVAL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROVISION_POLL_INTERVAL")
}

func TestLoad_InvalidAttempts(t *testing.T) {
	setRequired(t)
	t.Setenv("PROVISION_POLL_ATTEMPTS", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROVISION_POLL_ATTEMPTS")
}
