package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMaxResolution is the largest texture edge the importer accepts by
// default. Image code downstream uses 32-bit size/offset values, which keeps
// this at 16K.
const DefaultMaxResolution = 16 * 1024

// Config is the top-level configuration struct.  All fields have safe defaults
// so callers can start with Default() and override only what they need.
type Config struct {
	// Worker pool controls.
	WorkerCount int           `yaml:"worker_count"` // default: runtime.NumCPU()
	QueueSize   int           `yaml:"queue_size"`   // max queued jobs before backpressure; default: 256
	JobTimeout  time.Duration `yaml:"job_timeout"`

	// Streaming / memory limits.
	MaxImageBytes int64 `yaml:"max_image_bytes"` // 0 = no limit
	ChunkSize     int   `yaml:"chunk_size"`      // streaming chunk size in bytes; default 32 KiB

	// Import policy.
	FillPNGZeroAlpha   bool `yaml:"fill_png_zero_alpha"`
	AllowNonPowerOfTwo bool `yaml:"allow_non_power_of_two"`
	MaxResolution      int  `yaml:"max_resolution"`
	RetainJPEG         bool `yaml:"retain_jpeg"` // keep JPEG bytes compressed instead of decoding

	// Raw dump output used by the CLI.
	Output OutputConfig `yaml:"output"`

	// Logging.
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn", "error"
}

// OutputConfig configures the local raw dump writer.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	Compress    bool   `yaml:"compress"`    // zstd-compress raw pixel data
	Permissions uint32 `yaml:"permissions"` // default 0644
}

// Default returns a Config populated with sensible production defaults.
func Default() Config {
	return Config{
		WorkerCount:        0, // resolved at runtime to NumCPU
		QueueSize:          256,
		JobTimeout:         30 * time.Second,
		ChunkSize:          32 * 1024,
		FillPNGZeroAlpha:   true,
		AllowNonPowerOfTwo: true,
		MaxResolution:      DefaultMaxResolution,
		Output: OutputConfig{
			Dir:         ".",
			Permissions: 0o644,
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file and overlays it on Default(). Keys missing from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.ChunkSize <= 0 {
		return errors.New("config: ChunkSize must be positive")
	}
	if c.MaxResolution <= 0 {
		return errors.New("config: MaxResolution must be positive")
	}
	if c.MaxImageBytes < 0 {
		return errors.New("config: MaxImageBytes must not be negative")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown LogLevel %q", c.LogLevel)
	}
	return nil
}
