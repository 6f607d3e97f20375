package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	viper.Reset()
	InitializeDefaults()
	require.NoError(t, Reload())

	s := Get()
	assert.Equal(t, "http://localhost:8000", s.Server.URL)
	assert.Equal(t, 30, s.Server.Timeout)
	assert.Equal(t, "default", s.Agent.Default)
	assert.Equal(t, "info", s.Logging.Level)
	assert.True(t, s.Streaming)
}

func TestReloadPicksUpOverrides(t *testing.T) {
	viper.Reset()
	InitializeDefaults()
	viper.Set("server.url", "https://intel.example.com")
	viper.Set("agent.default", "compliance")
	require.NoError(t, Reload())

	s := Get()
	assert.Equal(t, "https://intel.example.com", s.Server.URL)
	assert.Equal(t, "compliance", s.Agent.Default)
}

func TestBuildSettingsPath(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	viper.Set("config.path", dir)

	path := BuildSettingsPath("token")
	assert.Equal(t, filepath.Join(dir, "token"), path)
}
