package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/fsindex/internal/config"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	configDir := filepath.Join(dir, "fsindex")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.Depth)
	assert.Nil(t, cfg.Defaults.SkipHidden)
	assert.Nil(t, cfg.Defaults.ProgressInterval)
	assert.Empty(t, cfg.Defaults.Exclude)
}

func TestLoad_FullConfig(t *testing.T) {
	writeConfig(t, `
[defaults]
depth = 7
skip_hidden = true
verbose = false
no_progress = true
progress_interval = "2s"
shutdown_grace = "1m"
output_dir = "/var/lib/fsindex"
exclude = ["*.tmp", "node_modules/"]
`)

	cfg, err := config.Load()
	require.NoError(t, err)
	d := cfg.Defaults

	require.NotNil(t, d.Depth)
	assert.Equal(t, 7, *d.Depth)
	require.NotNil(t, d.SkipHidden)
	assert.True(t, *d.SkipHidden)
	require.NotNil(t, d.Verbose)
	assert.False(t, *d.Verbose)
	require.NotNil(t, d.NoProgress)
	assert.True(t, *d.NoProgress)
	require.NotNil(t, d.ProgressInterval)
	assert.Equal(t, 2*time.Second, d.ProgressInterval.Duration)
	require.NotNil(t, d.ShutdownGrace)
	assert.Equal(t, time.Minute, d.ShutdownGrace.Duration)
	require.NotNil(t, d.OutputDir)
	assert.Equal(t, "/var/lib/fsindex", *d.OutputDir)
	assert.Equal(t, []string{"*.tmp", "node_modules/"}, d.Exclude)
}

func TestLoad_PartialConfig(t *testing.T) {
	writeConfig(t, `
[defaults]
skip_hidden = true
`)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.Depth)
	require.NotNil(t, cfg.Defaults.SkipHidden)
	assert.True(t, *cfg.Defaults.SkipHidden)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid toml", "invalid [[["},
		{"unknown key", "[defaults]\nworkers = 4\n"},
		{"bad duration", "[defaults]\nprogress_interval = \"soon\"\n"},
		{"negative duration", "[defaults]\nshutdown_grace = \"-1s\"\n"},
		{"depth out of range", "[defaults]\ndepth = 40\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.content)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DepthOutOfRangeIsSentinel(t *testing.T) {
	writeConfig(t, "[defaults]\ndepth = 0\n")
	_, err := config.Load()
	require.ErrorIs(t, err, config.ErrDepthRange)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, filepath.Join("/custom/config", "fsindex", "config.toml"), config.Path())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	require.NoError(t, config.Save(path, config.Sample(), false))
	require.ErrorIs(t, config.Save(path, config.Sample(), false), os.ErrExist)
	require.NoError(t, config.Save(path, config.Sample(), true))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Defaults.Depth)
	assert.Equal(t, config.DefaultDepth, *cfg.Defaults.Depth)
	require.NotNil(t, cfg.Defaults.ShutdownGrace)
	assert.Equal(t, 15*time.Second, cfg.Defaults.ShutdownGrace.Duration)
}
