package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConfigHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("ENV", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	t.Setenv("WEBPAGE_LOG_LEVEL", "")
	t.Setenv("WEBPAGE_LOG_FORMAT", "")
	return filepath.Join(home, "config", appName)
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, dirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), filePerm))
}

func TestSetDefaults(t *testing.T) {
	mgr := &Manager{viper: viper.New()}
	mgr.setDefaults()

	assert.Equal(t, 75, mgr.viper.GetInt("thumbnail.quality"))
	assert.Equal(t, 1280, mgr.viper.GetInt("headless.width"))
	assert.Equal(t, 48, mgr.viper.GetInt("window.toolbar_height"))
	assert.Equal(t, "info", mgr.viper.GetString("logging.level"))
}

func TestManager_LoadCreatesDefaultConfig(t *testing.T) {
	configDir := setupConfigHome(t)

	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	assert.FileExists(t, filepath.Join(configDir, "config.toml"))
	assert.FileExists(t, filepath.Join(configDir, "config.schema.json"))
	assert.Equal(t, filepath.Join(configDir, "config.toml"), mgr.GetConfigFile())
	assert.Equal(t, DefaultConfig(), mgr.Get())
}

func TestManager_LoadReadsFileAndEnv(t *testing.T) {
	configDir := setupConfigHome(t)
	writeConfig(t, configDir, `
[logging]
  level = "DEBUG"
  format = "json"

[thumbnail]
  cache_dir = "/tmp/thumbs"
  quality = 90

[headless]
  width = 800
`)
	t.Setenv("WEBPAGE_HEADLESS_CONCURRENCY", "2")
	t.Setenv("WEBPAGE_LOG_FORMAT", "console")

	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	cfg := mgr.Get()
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "/tmp/thumbs", cfg.Thumbnail.CacheDir)
	assert.Equal(t, 90, cfg.Thumbnail.Quality)
	assert.Equal(t, 800, cfg.Headless.Width)
	assert.Equal(t, defaultHeadlessHeight, cfg.Headless.Height)
	assert.Equal(t, 2, cfg.Headless.Concurrency)
}

func TestManager_LoadRejectsInvalidValues(t *testing.T) {
	configDir := setupConfigHome(t)
	writeConfig(t, configDir, `
[thumbnail]
  quality = 150
`)

	mgr, err := NewManager()
	require.NoError(t, err)

	err = mgr.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "thumbnail.quality")
}

func TestManager_LoadReportsMalformedFile(t *testing.T) {
	configDir := setupConfigHome(t)
	writeConfig(t, configDir, "[thumbnail\nquality = ")

	mgr, err := NewManager()
	require.NoError(t, err)

	err = mgr.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be valid TOML")
}

func TestManager_GetReturnsCopy(t *testing.T) {
	setupConfigHome(t)

	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	cfg := mgr.Get()
	cfg.Thumbnail.Quality = 1
	assert.Equal(t, defaultThumbnailQuality, mgr.Get().Thumbnail.Quality)
}

func TestManager_GetBeforeLoad(t *testing.T) {
	mgr := &Manager{viper: viper.New()}
	assert.Equal(t, DefaultConfig(), mgr.Get())
}

func TestNormalizeConfig(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Logging.Level = " WARN "
	cfg.Logging.Format = "pretty"
	cfg.Thumbnail.CacheDir = "~/thumbs"

	normalizeConfig(cfg)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, filepath.Join(home, "thumbs"), cfg.Thumbnail.CacheDir)
}

func TestManager_WatchReloadsOnChange(t *testing.T) {
	configDir := setupConfigHome(t)
	writeConfig(t, configDir, "[thumbnail]\n  quality = 60\n")

	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	changed := make(chan *Config, 4)
	mgr.OnConfigChange(func(cfg *Config) { changed <- cfg })
	require.NoError(t, mgr.Watch())
	require.NoError(t, mgr.Watch())

	writeConfig(t, configDir, "[thumbnail]\n  quality = 80\n")

	// A truncate may surface as its own event before the final write.
	deadline := time.After(5 * time.Second)
	for observed := false; !observed; {
		select {
		case cfg := <-changed:
			observed = cfg.Thumbnail.Quality == 80
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
	assert.Equal(t, 80, mgr.Get().Thumbnail.Quality)
}

func TestManager_WatchRequiresLoad(t *testing.T) {
	setupConfigHome(t)

	mgr, err := NewManager()
	require.NoError(t, err)
	assert.Error(t, mgr.Watch())
}
