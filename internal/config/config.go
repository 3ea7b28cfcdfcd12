// Package config loads the generation run configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DatasetConfig selects the measurement tree and its preprocessing.
type DatasetConfig struct {
	Dir       string `yaml:"dir"`
	Normalize bool   `yaml:"normalize"`
	MinPhase  bool   `yaml:"min_phase"`
}

// OutputConfig names the two artifact destinations.
type OutputConfig struct {
	Header string `yaml:"header"`
	Source string `yaml:"source"`
}

// Config is the top-level structure of a hrtf-gen config file.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset"`
	Output  OutputConfig  `yaml:"output"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}
