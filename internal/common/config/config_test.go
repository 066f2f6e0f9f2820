package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigResolvesEnv(t *testing.T) {
	t.Setenv("MOCKMCP_TEST_PORT", "9100")

	dir := t.TempDir()
	path := filepath.Join(dir, "mockmcp.yaml")
	content := []byte(`
port: ${MOCKMCP_TEST_PORT:8000}
logger:
  level: ${MOCKMCP_TEST_LEVEL:debug}
sse:
  keep_alive_interval: 5s
tools:
  search_step_delay: 10ms
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, cfgPath, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfgPath)
	assert.Equal(t, 9100, cfg.Port)
	// unset env falls back to the inline default
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 5*time.Second, cfg.SSE.KeepAliveInterval)
	assert.Equal(t, 10*time.Millisecond, cfg.Tools.SearchStepDelay)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.SSE.KeepAliveInterval)
	assert.Equal(t, 16, cfg.Session.QueueSize)
	assert.Equal(t, time.Second, cfg.Tools.SearchStepDelay)
	assert.Equal(t, "mockmcp", cfg.Metrics.Namespace)
}
