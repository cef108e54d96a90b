package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.3, cfg.Session.InitialScale)
	assert.Equal(t, 0.05, cfg.Session.MinScale)
	assert.Equal(t, 2.5, cfg.Session.MaxScale)
	assert.Equal(t, 1.1, cfg.Session.GrowFactor)
	assert.Equal(t, 0.9, cfg.Session.ShrinkFactor)
	assert.Equal(t, 240, cfg.Asset.KeyThreshold)
	assert.Equal(t, "png", cfg.Snapshot.Format)
	assert.Equal(t, "snapshot_", cfg.Snapshot.Prefix)
	assert.NoError(t, cfg.Validate())
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Camera.Index = 2
	cfg.Snapshot.Format = "webp"

	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFileKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"camera":{"index":1}}`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Camera.Index)
	assert.Equal(t, 0.3, cfg.Session.InitialScale)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestDownloadTimeoutFormats(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "string.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"asset":{"download_timeout":"1m30s"}}`), 0o644))
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Asset.DownloadTimeout.Std())

	path = filepath.Join(dir, "nanos.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"asset":{"download_timeout":2000000000}}`), 0o644))
	cfg, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Asset.DownloadTimeout.Std())

	path = filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"asset":{"download_timeout":"soon"}}`), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)

	data, err := Default().Asset.DownloadTimeout.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"10s"`, string(data))
}

func TestLoadAppliesEnv(t *testing.T) {
	t.Setenv("TRYON_CAMERA_INDEX", "3")
	t.Setenv("TRYON_SNAPSHOT_DIR", "/tmp/snaps")
	t.Setenv("TRYON_DOWNLOAD_TIMEOUT", "5s")
	t.Setenv("TRYON_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Camera.Index)
	assert.Equal(t, "/tmp/snaps", cfg.Snapshot.Dir)
	assert.Equal(t, 5*time.Second, cfg.Asset.DownloadTimeout.Std())
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched values keep their defaults
	assert.Equal(t, 2.5, cfg.Session.MaxScale)
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("TRYON_CAMERA_INDEX", "front")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero min scale", func(c *Config) { c.Session.MinScale = 0 }},
		{"max below min", func(c *Config) { c.Session.MaxScale = 0.01 }},
		{"initial out of range", func(c *Config) { c.Session.InitialScale = 3 }},
		{"grow factor not growing", func(c *Config) { c.Session.GrowFactor = 1 }},
		{"shrink factor not shrinking", func(c *Config) { c.Session.ShrinkFactor = 1.2 }},
		{"threshold too high", func(c *Config) { c.Asset.KeyThreshold = 256 }},
		{"negative camera", func(c *Config) { c.Camera.Index = -1 }},
		{"unknown format", func(c *Config) { c.Snapshot.Format = "gif" }},
		{"quality out of range", func(c *Config) { c.Snapshot.Quality = 0 }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.json", filepath.Base(GetConfigPath()))
}
