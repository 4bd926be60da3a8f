// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultWSPort, cfg.WSPort)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultLevel, cfg.LogLevel)
	assert.True(t, cfg.WSEnabled())
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("WS_PORT", "0")
	t.Setenv("DATA_DIR", "/var/lib/chipichipi")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "/var/lib/chipichipi", cfg.DataDir)
	assert.False(t, cfg.WSEnabled())
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("PORT", "4000")

	cfg, err := Load([]string{"--port", "5000", "--log-level", "debug"})
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsUnknownFlag(t *testing.T) {
	_, err := Load([]string{"--bogus"})
	assert.Error(t, err)
}
