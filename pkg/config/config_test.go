package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GiulioRossetti/ash/pkg/ash"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg := LoadFromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, string(ash.BackendDense), cfg.Engine.Backend)
	assert.True(t, cfg.Engine.RemovalEnabled)
	assert.True(t, cfg.Engine.MetricsEnabled)
	assert.Equal(t, 10000, cfg.Walks.Budget)
	assert.Equal(t, 1.0, cfg.Walks.SampleRate)
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("ASH_BACKEND", "interval")
	t.Setenv("ASH_REMOVAL_ENABLED", "false")
	t.Setenv("ASH_WALK_BUDGET", "250")
	t.Setenv("ASH_WALK_SEED", "42")

	cfg := LoadFromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "interval", cfg.Engine.Backend)
	assert.False(t, cfg.Engine.RemovalEnabled)
	assert.Equal(t, 250, cfg.Walks.Budget)
	assert.Equal(t, int64(42), cfg.Walks.Seed)

	opts := cfg.Engine.ToOptions()
	assert.Equal(t, ash.BackendInterval, opts.Backend)
	assert.False(t, opts.RemovalEnabled)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("ASH_WALK_BUDGET", "250")

	path := filepath.Join(t.TempDir(), "ash.yaml")
	body := []byte("engine:\n  backend: interval\n  removal_enabled: true\nwalks:\n  budget: 500\n  sample_rate: 0.5\n  p: 1\n  q: 1\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	// File wins over environment; untouched fields keep defaults.
	assert.Equal(t, "interval", cfg.Engine.Backend)
	assert.Equal(t, 500, cfg.Walks.Budget)
	assert.Equal(t, 0.5, cfg.Walks.SampleRate)
	assert.Equal(t, "INFO", cfg.Logging.Level)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("engine: ["), 0o644))
	_, err = LoadFromFile(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad backend", func(c *Config) { c.Engine.Backend = "sparse" }},
		{"negative budget", func(c *Config) { c.Walks.Budget = -1 }},
		{"zero sample rate", func(c *Config) { c.Walks.SampleRate = 0 }},
		{"negative bias", func(c *Config) { c.Walks.P = -2 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "LOUD" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadFromEnv()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
