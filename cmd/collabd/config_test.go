package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfigReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collabd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9090\"\nmax_total_log_size: 4096\n"), 0644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, uint64(4096), cfg.MaxTotalLogSize)
	require.Equal(t, defaultConfig().NoopInterval, cfg.NoopInterval)
}

func TestLoadConfigParsesYAMLDurationStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collabd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cleanup_interval: \"2h\"\nnoop_interval: \"750ms\"\n"), 0644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 2*time.Hour, cfg.CleanupInterval)
	require.Equal(t, 750*time.Millisecond, cfg.NoopInterval)
}

func TestLoadConfigEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collabd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9090\"\n"), 0644))

	t.Setenv("COLLABD_ADDR", ":7070")
	t.Setenv("COLLABD_NOOP_INTERVAL", "2s")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Addr)
	require.Equal(t, 2*time.Second, cfg.NoopInterval)
}
