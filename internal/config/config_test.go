package config

import (
	"os"
	"path/filepath"
	"testing"

	"flakelab/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvConfigFile, "")

	assert.Equal(t, filepath.Join(home, ".flakelab"), GetConfigPath())
	assert.Equal(t, filepath.Join(home, ".flakelab", "config.yaml"), GetConfigFile())
	assert.Equal(t, filepath.Join(home, ".flakelab", "history.db"), HistoryFile(nil))
	assert.Equal(t, "/tmp/runs.db", HistoryFile(&models.Config{HistoryPath: "/tmp/runs.db"}))
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lab.yaml")
	t.Setenv(EnvConfigFile, file)

	assert.Equal(t, dir, GetConfigPath())
	assert.Equal(t, file, GetConfigFile())
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfigFile, "")

	cfg := &models.Config{
		DefaultConnection: "demo_connection",
		AgentsDir:         "agents",
		Deployment:        models.Deployment{Variant: "dual-tool", Warehouse: "DEMO_WH", Seed: 7},
		Lab:               models.LabVolumes{Customers: 300},
	}

	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	info, err := os.Stat(GetConfigFile())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "demo_connection", loaded.DefaultConnection)
	assert.Equal(t, "dual-tool", loaded.Deployment.Variant)
	assert.Equal(t, int64(7), loaded.Deployment.Seed)
	assert.Equal(t, 300, loaded.Lab.Customers)
	// defaults fill the gaps
	assert.Equal(t, "flakelab.log", loaded.Logging.File)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfigFile, "")

	assert.False(t, Exists())
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.DefaultConnection)
	assert.Equal(t, "markets", cfg.Deployment.Variant)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("deployment: [unclosed"), 0600))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSaveWithInvalidPath(t *testing.T) {
	t.Setenv(EnvConfigFile, "/proc/flakelab-cannot-write/config.yaml")

	err := Save(&models.Config{})
	assert.Error(t, err)
}
