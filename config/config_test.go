package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConfigAppliesDefaults(t *testing.T) {
	cfg := NewConfig("/data")
	require.Equal(t, "/data", cfg.DataDir)
	require.Equal(t, 256, cfg.BufferPoolSize)
	require.Equal(t, 16, cfg.InitialTablespaceSizeMiB)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestInitialAndAutoExtendSizeInBytes(t *testing.T) {
	cfg := NewConfig("/data")
	require.EqualValues(t, 16<<20, cfg.InitialTablespaceSize())
	require.EqualValues(t, 16<<20, cfg.AutoExtendSize())
}

func TestLoadConfigJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeFile(t, path, `{"data_dir":"/var/aistore","buffer_pool_size":512,"log_level":"debug"}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/var/aistore", cfg.DataDir)
	require.Equal(t, 512, cfg.BufferPoolSize)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 16, cfg.InitialTablespaceSizeMiB) // default filled in
}

func TestLoadConfigKeyValueText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.txt")
	writeFile(t, path, "data_dir = /var/aistore\nbuffer_pool_size = 128\n# comment\nlog_level = warn\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/var/aistore", cfg.DataDir)
	require.Equal(t, 128, cfg.BufferPoolSize)
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigMissingDataDirFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.txt")
	writeFile(t, path, "buffer_pool_size = 128\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigMissingFileFails(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.txt")
	require.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
