package config

import (
	"fmt"
)

// LoadConfigForCLI loads configuration for the command line tools (without Discord validation)
func LoadConfigForCLI(configPath string) (*Config, error) {
	config, err := load(configPath)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}
