package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir string `yaml:"work_dir"`

	// Segmentation settings
	Segmentation SegmentationConfig `yaml:"segmentation"`

	// Encoder settings
	Encoder EncoderConfig `yaml:"encoder"`

	// Combine settings
	Combine CombineConfig `yaml:"combine"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`
}

// SegmentationConfig holds scene detection defaults. Threshold and
// ComparisonWidth are heuristic tuning values, kept configurable rather
// than hard-coded.
type SegmentationConfig struct {
	SampleRate         float64 `yaml:"sample_rate"`
	MaxDimension       int     `yaml:"max_dimension"` // 0 keeps the source resolution
	Threshold          float64 `yaml:"threshold"`     // percent, 0-100
	MinSceneFrames     int     `yaml:"min_scene_frames"`
	ComparisonWidth    int     `yaml:"comparison_width"`
	SeekTimeoutSeconds int     `yaml:"seek_timeout_seconds"`
}

type EncoderConfig struct {
	Quality int  `yaml:"quality"` // 1-20, lower is better
	Dither  bool `yaml:"dither"`
}

type CombineConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Threads    int    `yaml:"threads"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		WorkDir: "./work",
		Segmentation: SegmentationConfig{
			SampleRate:         10,
			MaxDimension:       480,
			Threshold:          12.0,
			MinSceneFrames:     8,
			ComparisonWidth:    48,
			SeekTimeoutSeconds: 5,
		},
		Encoder: EncoderConfig{
			Quality: 5,
			Dither:  true,
		},
		Combine: CombineConfig{
			DebounceMs: 400,
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			Threads:    0,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".gifslice", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
