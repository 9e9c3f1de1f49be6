package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadTemplateConfig parses a generated template back into a validated Config
func LoadTemplateConfig(projectType ProjectType, strictness Strictness) (*Config, error) {
	return parseConfig(GetFullConfigTemplate(projectType, strictness), "yaml")
}

// parseConfig reads configuration text of the given viper config type on top of the defaults
func parseConfig(content string, configType string) (*Config, error) {
	v := viper.New()
	v.SetConfigType(configType)
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
