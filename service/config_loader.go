package service

import (
	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/analyzer"
	"github.com/ludo-technologies/vibescan/internal/config"
)

// ConfigurationLoaderImpl loads configuration files and turns them into the
// read-only ResolvedConfig the analyzer consumes
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from path, or discovers one from targetPath
// when path is empty. With nothing found the defaults are returned.
func (c *ConfigurationLoaderImpl) LoadConfig(path string, targetPath string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, targetPath)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// FindConfigFile returns the configuration file that would be used for targetPath
func (c *ConfigurationLoaderImpl) FindConfigFile(targetPath string) string {
	return config.FindDefaultConfig(targetPath)
}

// Resolve converts a Config into a ResolvedConfig. Invalid pattern names,
// severities or detector settings are configuration errors.
func (c *ConfigurationLoaderImpl) Resolve(cfg *config.Config) (*domain.ResolvedConfig, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, domain.NewConfigError("invalid configuration", err)
	}

	resolved := &domain.ResolvedConfig{
		EnabledPatterns:   domain.AllPatternTypes(),
		MinSeverity:       domain.SeverityInfo,
		SeverityOverrides: make(map[domain.PatternType]domain.Severity, len(cfg.Patterns.SeverityOverrides)),
		ExcludePatterns:   append([]string(nil), cfg.Analysis.ExcludePatterns...),
		Settings:          cfg.Detectors.ToDetectorSettings(),
	}

	if len(cfg.Patterns.Enabled) > 0 {
		enabled, err := ParsePatternTypes(cfg.Patterns.Enabled)
		if err != nil {
			return nil, domain.NewConfigError("invalid patterns.enabled", err)
		}
		resolved.EnabledPatterns = enabled
	}

	if cfg.Patterns.MinSeverity != "" {
		severity, err := domain.ParseSeverity(cfg.Patterns.MinSeverity)
		if err != nil {
			return nil, domain.NewConfigError("invalid patterns.min_severity", err)
		}
		resolved.MinSeverity = severity
	}

	for name, value := range cfg.Patterns.SeverityOverrides {
		patternType, err := domain.ParsePatternType(name)
		if err != nil {
			return nil, domain.NewConfigError("invalid patterns.severity_overrides", err)
		}
		severity, err := domain.ParseSeverity(value)
		if err != nil {
			return nil, domain.NewConfigError("invalid patterns.severity_overrides", err)
		}
		resolved.SeverityOverrides[patternType] = severity
	}

	// Surface bad regular expressions once, before any file is scanned
	if _, err := analyzer.ResolveSettings(resolved.Settings); err != nil {
		return nil, domain.NewConfigError("invalid detector settings", err)
	}

	return resolved, nil
}

// ParsePatternTypes validates a list of pattern type names, dropping duplicates
func ParsePatternTypes(names []string) ([]domain.PatternType, error) {
	seen := make(map[domain.PatternType]struct{}, len(names))
	types := make([]domain.PatternType, 0, len(names))
	for _, name := range names {
		patternType, err := domain.ParsePatternType(name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[patternType]; dup {
			continue
		}
		seen[patternType] = struct{}{}
		types = append(types, patternType)
	}
	return types, nil
}
