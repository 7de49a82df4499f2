package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BLOCKACCESS_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Access.UpdatePhysics)
	assert.True(t, cfg.Access.Notify)
	assert.Equal(t, 50*time.Millisecond, cfg.Physics.TickInterval())
	assert.Equal(t, "memory", cfg.EventBus.Kind)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockaccess.yaml")
	yamlData := `
access:
  notify: false
notify:
  batch_size: 10
eventbus:
  kind: redis
  url: redis://localhost:6379/0
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0644))
	t.Setenv("BLOCKACCESS_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Access.Notify)
	assert.True(t, cfg.Access.UpdatePhysics, "незаданные поля сохраняют значения по умолчанию")
	assert.Equal(t, 10, cfg.Notify.BatchSize)
	assert.Equal(t, 200*time.Millisecond, cfg.Notify.FlushInterval())
	assert.Equal(t, "redis", cfg.EventBus.Kind)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("eventbus:\n  kind: jetstream\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err, "jetstream без url недопустим")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMetricsPortFallback(t *testing.T) {
	m := MetricsConfig{}
	t.Setenv("BLOCKACCESS_METRICS_PORT", "9100")
	assert.Equal(t, 9100, m.GetPort())

	m.Port = 8000
	assert.Equal(t, 8000, m.GetPort())

	t.Setenv("BLOCKACCESS_METRICS_PORT", "abc")
	assert.Equal(t, 2112, (&MetricsConfig{}).GetPort())
}
