package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a file. An empty path triggers
// discovery; if no config file exists anywhere, defaults are returned rather
// than an error, since blendctl is fully usable without a config file.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		discovered, err := Discover()
		if err != nil {
			return Defaults(), nil
		}
		configPath = discovered
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", absPath, err)
	}

	cfg.Blender.Path = interpolateEnv(cfg.Blender.Path)
	for i, p := range cfg.Blender.ExtraPaths {
		cfg.Blender.ExtraPaths[i] = interpolateEnv(p)
	}
	if cfg.Blender.Timeout <= 0 {
		cfg.Blender.Timeout = DefaultTimeout
	}

	return cfg, nil
}

// Discover finds a config file by checking standard locations.
// Priority order: $BLENDCTL_CONFIG, ~/.config/blendctl/config.yaml, ./blendctl.yaml
func Discover() (string, error) {
	if path := os.Getenv("BLENDCTL_CONFIG"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		userConfig := filepath.Join(homeDir, ".config", "blendctl", "config.yaml")
		if _, err := os.Stat(userConfig); err == nil {
			return userConfig, nil
		}
	}

	localConfig := "./blendctl.yaml"
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	return "", fmt.Errorf("no config found (checked: $BLENDCTL_CONFIG, ~/.config/blendctl, ./blendctl.yaml)")
}

// interpolateEnv expands ${VAR} references against the process environment.
func interpolateEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
