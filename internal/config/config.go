package config

import "time"

// Config represents the complete blendctl configuration.
type Config struct {
	Blender BlenderConfig `yaml:"blender"`
	Log     LogConfig     `yaml:"log"`
}

// BlenderConfig defines how the Blender executable is located and run.
type BlenderConfig struct {
	// Path is an explicit executable path. It is probed before the
	// conventional install locations, after $BLENDER_PATH.
	Path string `yaml:"path,omitempty"`

	// ExtraPaths are additional candidate locations probed in order.
	ExtraPaths []string `yaml:"extra_paths,omitempty"`

	// Timeout bounds a single Blender invocation. Zero means the default.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultTimeout bounds one headless Blender run.
const DefaultTimeout = 300 * time.Second

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Blender: BlenderConfig{
			Timeout: DefaultTimeout,
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// CandidatePaths returns the configured executable candidates in probe order.
func (c *Config) CandidatePaths() []string {
	var paths []string
	if c.Blender.Path != "" {
		paths = append(paths, c.Blender.Path)
	}
	paths = append(paths, c.Blender.ExtraPaths...)
	return paths
}
