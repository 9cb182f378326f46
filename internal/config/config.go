// Package config holds blogo's configuration: sampler settings and
// debug logging options, loaded from a YAML file with environment
// variable overrides for the sampler knobs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all blogo configuration.
type Config struct {
	Name string `yaml:"name"`

	Sampler SamplerConfig `yaml:"sampler"`
	Logging LoggingConfig `yaml:"logging"`
}

// SamplerConfig configures likelihood-weighting runs.
type SamplerConfig struct {
	Samples int   `yaml:"samples"`
	Chains  int   `yaml:"chains"`
	Seed    int64 `yaml:"seed"`
}

// LoggingConfig configures the categorized debug logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Dir        string          `yaml:"dir"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		Name: "blogo",
		Sampler: SamplerConfig{
			Samples: 10000,
			Chains:  4,
			Seed:    1,
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
			Dir:       "logs",
		},
	}
}

// Load reads config from path, applying defaults for missing fields and
// environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides lets BLOGO_SAMPLES, BLOGO_CHAINS, and BLOGO_SEED
// override the sampler settings.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BLOGO_SAMPLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Sampler.Samples = n
		}
	}
	if v := os.Getenv("BLOGO_CHAINS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Sampler.Chains = n
		}
	}
	if v := os.Getenv("BLOGO_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Sampler.Seed = n
		}
	}
}
