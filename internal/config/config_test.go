package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/featgate/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, config.BackendJSONFile, cfg.Storage.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	require.NoError(t, cfg.Validate())
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "redis"

	require.Error(t, cfg.Validate())
}

func TestLoad_MissingConfigFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.BackendJSONFile, cfg.Storage.Backend)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("FEATGATE_STORAGE_BACKEND", "sqlite")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.BackendSQLite, cfg.Storage.Backend)
}

func TestStorePath_DerivedFromBackend(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	cfg := config.Default()
	path, err := cfg.StorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataHome, "featgate", "profile.json"), path)

	cfg.Storage.Backend = config.BackendSQLite
	path, err = cfg.StorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataHome, "featgate", "featgate.sqlite"), path)

	cfg.Storage.Path = "/tmp/custom.json"
	path, err = cfg.StorePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.json", path)
}

func TestManifestDirs_DefaultUnderConfig(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	cfg := config.Default()
	dirs, err := cfg.ManifestDirs()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(configHome, "featgate", "features")}, dirs)

	cfg.Manifests.Dirs = []string{"/etc/featgate/features"}
	dirs, err = cfg.ManifestDirs()
	require.NoError(t, err)
	assert.Equal(t, []string{"/etc/featgate/features"}, dirs)
}
