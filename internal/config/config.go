package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration
type Config struct {
	Session  SessionConfig  `json:"session"`
	Asset    AssetConfig    `json:"asset"`
	Camera   CameraConfig   `json:"camera"`
	Snapshot SnapshotConfig `json:"snapshot"`
	Log      LogConfig      `json:"log"`
}

// SessionConfig holds the interactive scale policy
type SessionConfig struct {
	InitialScale float64 `json:"initial_scale" env:"TRYON_INITIAL_SCALE"`
	MinScale     float64 `json:"min_scale" env:"TRYON_MIN_SCALE"`
	MaxScale     float64 `json:"max_scale" env:"TRYON_MAX_SCALE"`
	GrowFactor   float64 `json:"grow_factor" env:"TRYON_GROW_FACTOR"`
	ShrinkFactor float64 `json:"shrink_factor" env:"TRYON_SHRINK_FACTOR"`
}

// AssetConfig holds configuration for product loading
type AssetConfig struct {
	KeyThreshold    int      `json:"key_threshold" env:"TRYON_KEY_THRESHOLD"`
	DownloadTimeout Duration `json:"download_timeout" env:"TRYON_DOWNLOAD_TIMEOUT"`
}

// Duration is a time.Duration written as a Go duration string ("10s") in
// config files and environment variables. Plain JSON numbers are read as
// nanoseconds.
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		return d.UnmarshalText([]byte(val))
	case float64:
		*d = Duration(int64(val))
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(data))
	}
}

// UnmarshalText parses a duration string such as "1m30s"
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// CameraConfig holds capture and window settings
type CameraConfig struct {
	Index       int    `json:"index" env:"TRYON_CAMERA_INDEX"`
	Width       int    `json:"width" env:"TRYON_CAMERA_WIDTH"`
	Height      int    `json:"height" env:"TRYON_CAMERA_HEIGHT"`
	WindowTitle string `json:"window_title" env:"TRYON_WINDOW_TITLE"`
}

// SnapshotConfig holds configuration for snapshot output
type SnapshotConfig struct {
	Dir      string `json:"dir" env:"TRYON_SNAPSHOT_DIR"`
	Prefix   string `json:"prefix" env:"TRYON_SNAPSHOT_PREFIX"`
	Format   string `json:"format" env:"TRYON_SNAPSHOT_FORMAT"`
	Quality  int    `json:"quality" env:"TRYON_SNAPSHOT_QUALITY"`
	Lossless bool   `json:"lossless" env:"TRYON_SNAPSHOT_LOSSLESS"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `json:"level" env:"TRYON_LOG_LEVEL"`
	Format string `json:"format" env:"TRYON_LOG_FORMAT"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			InitialScale: 0.3,
			MinScale:     0.05,
			MaxScale:     2.5,
			GrowFactor:   1.1,
			ShrinkFactor: 0.9,
		},
		Asset: AssetConfig{
			KeyThreshold:    240,
			DownloadTimeout: Duration(10 * time.Second),
		},
		Camera: CameraConfig{
			Index:       0,
			WindowTitle: "Centered Try-On (q to quit)",
		},
		Snapshot: SnapshotConfig{
			Dir:     ".",
			Prefix:  "snapshot_",
			Format:  "png",
			Quality: 90,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a JSON file on top of the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads the optional config file, then applies TRYON_* environment
// overrides and validates the result.
func Load(filename string) (*Config, error) {
	config := Default()
	if filename != "" {
		var err error
		if config, err = LoadFromFile(filename); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from TRYON_* environment variables
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	s := c.Session
	if s.MinScale <= 0 || s.MaxScale < s.MinScale {
		return fmt.Errorf("session scale bounds must satisfy 0 < min_scale <= max_scale")
	}

	if s.InitialScale < s.MinScale || s.InitialScale > s.MaxScale {
		return fmt.Errorf("session.initial_scale must be between min_scale and max_scale")
	}

	if s.GrowFactor <= 1 {
		return fmt.Errorf("session.grow_factor must be greater than 1")
	}

	if s.ShrinkFactor <= 0 || s.ShrinkFactor >= 1 {
		return fmt.Errorf("session.shrink_factor must be between 0 and 1")
	}

	if c.Asset.KeyThreshold < 0 || c.Asset.KeyThreshold > 255 {
		return fmt.Errorf("asset.key_threshold must be between 0 and 255")
	}

	if c.Camera.Index < 0 {
		return fmt.Errorf("camera.index must not be negative")
	}

	switch strings.ToLower(c.Snapshot.Format) {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("snapshot.format must be one of png, jpg, webp")
	}

	if c.Snapshot.Quality < 1 || c.Snapshot.Quality > 100 {
		return fmt.Errorf("snapshot.quality must be between 1 and 100")
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "virtual-tryon", "config.json")
}
