package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000", cfg.Scoring.BaseURL)
	assert.Equal(t, 3, cfg.Scoring.MaxAttempts)
	assert.Equal(t, 4*time.Second, cfg.Scoring.BackoffMin)
	assert.Equal(t, 10*time.Second, cfg.Scoring.BackoffMax)
	assert.Equal(t, 30*time.Second, cfg.Scoring.AttemptTimeout)
	assert.Equal(t, 2*time.Second, cfg.Workflow.DeferredStatusDelay)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "transactions", cfg.Kafka.Topic)
	assert.Equal(t, "fraud_detection_group", cfg.Kafka.GroupID)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
server:
  port: 9000
scoring:
  base_url: http://scoring.internal:8000
redis:
  enabled: true
  verdict_ttl: 10m
workflow:
  deferred_status_delay: 500ms
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "http://scoring.internal:8000", cfg.Scoring.BaseURL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Redis.VerdictTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Workflow.DeferredStatusDelay)

	// Untouched keys keep their defaults
	assert.Equal(t, 3, cfg.Scoring.MaxAttempts)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("FSB_ENVIRONMENT", "staging")
	t.Setenv("FSB_SERVER_PORT", "9090")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
}
