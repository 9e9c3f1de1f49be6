package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/spf13/viper"
)

// Default analysis thresholds
const (
	// DefaultComplexityWarning is the cyclomatic complexity at which a function is reported
	DefaultComplexityWarning = 10

	// DefaultComplexityCritical is the complexity above which the report becomes critical
	DefaultComplexityCritical = 20

	// DefaultMaxNestingDepth is the deepest control-structure nesting allowed
	DefaultMaxNestingDepth = 4

	// DefaultMaxFunctionLines is the longest function body allowed
	DefaultMaxFunctionLines = 50

	// DefaultMinSeverity is the lowest severity reported
	DefaultMinSeverity = "info"

	// DefaultTimeoutSeconds bounds a whole scan
	DefaultTimeoutSeconds = 300
)

// EnvConfigVar names the environment variable pointing at a config file
const EnvConfigVar = "VIBESCAN_CONFIG"

// Config represents the main configuration structure
type Config struct {
	// Patterns selects which pattern types run and how severe they are
	Patterns PatternsConfig `json:"patterns" mapstructure:"patterns" yaml:"patterns"`

	// Detectors extends the built-in detector vocabularies and thresholds
	Detectors DetectorsConfig `json:"detectors" mapstructure:"detectors" yaml:"detectors"`

	// Analysis holds file selection configuration
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Performance holds concurrency and timeout limits
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`
}

// PatternsConfig controls pattern selection and severities
type PatternsConfig struct {
	// Enabled lists the pattern types to detect; empty means all
	Enabled []string `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// MinSeverity drops patterns below this level: info, warning, critical
	MinSeverity string `json:"min_severity" mapstructure:"min_severity" yaml:"min_severity"`

	// SeverityOverrides replaces the default severity of a pattern type
	SeverityOverrides map[string]string `json:"severity_overrides" mapstructure:"severity_overrides" yaml:"severity_overrides"`
}

// DetectorsConfig holds user additions to the detector defaults
type DetectorsConfig struct {
	GenericNames         []string `json:"generic_names" mapstructure:"generic_names" yaml:"generic_names"`
	LoopVariables        []string `json:"loop_variables" mapstructure:"loop_variables" yaml:"loop_variables"`
	CoordinateVariables  []string `json:"coordinate_variables" mapstructure:"coordinate_variables" yaml:"coordinate_variables"`
	GenericErrorMessages []string `json:"generic_error_messages" mapstructure:"generic_error_messages" yaml:"generic_error_messages"`

	// SecretPatterns are extra regular expressions; the last capture group is the secret
	SecretPatterns []string `json:"secret_patterns" mapstructure:"secret_patterns" yaml:"secret_patterns"`

	ComplexityWarning  int `json:"complexity_warning" mapstructure:"complexity_warning" yaml:"complexity_warning"`
	ComplexityCritical int `json:"complexity_critical" mapstructure:"complexity_critical" yaml:"complexity_critical"`
	MaxNestingDepth    int `json:"max_nesting_depth" mapstructure:"max_nesting_depth" yaml:"max_nesting_depth"`
	MaxFunctionLines   int `json:"max_function_lines" mapstructure:"max_function_lines" yaml:"max_function_lines"`
}

// AnalysisConfig holds general analysis configuration
type AnalysisConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns are gitignore-style patterns; excluded files yield no patterns
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// Recursive controls whether to analyze directories recursively
	Recursive bool `json:"recursive" mapstructure:"recursive" yaml:"recursive"`

	// FollowSymlinks controls whether to follow symbolic links
	FollowSymlinks bool `json:"follow_symlinks" mapstructure:"follow_symlinks" yaml:"follow_symlinks"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, sarif
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// ShowSnippets prints the offending code under each finding
	ShowSnippets bool `json:"show_snippets" mapstructure:"show_snippets" yaml:"show_snippets"`

	// ShowSuggestions prints the suggested fix under each finding
	ShowSuggestions bool `json:"show_suggestions" mapstructure:"show_suggestions" yaml:"show_suggestions"`

	// Color enables ANSI colors in text output
	Color bool `json:"color" mapstructure:"color" yaml:"color"`
}

// PerformanceConfig bounds resource usage of a scan
type PerformanceConfig struct {
	// MaxGoroutines caps concurrently analyzed files (0 = number of CPUs)
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines"`

	// TimeoutSeconds bounds the whole scan
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`

	// ShowProgress enables progress bars in interactive terminals
	ShowProgress bool `json:"show_progress" mapstructure:"show_progress" yaml:"show_progress"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Patterns: PatternsConfig{
			Enabled:           []string{},
			MinSeverity:       DefaultMinSeverity,
			SeverityOverrides: map[string]string{},
		},
		Detectors: DetectorsConfig{
			ComplexityWarning:  DefaultComplexityWarning,
			ComplexityCritical: DefaultComplexityCritical,
			MaxNestingDepth:    DefaultMaxNestingDepth,
			MaxFunctionLines:   DefaultMaxFunctionLines,
		},
		Analysis: AnalysisConfig{
			IncludePatterns: []string{
				"**/*.js", "**/*.ts", "**/*.jsx", "**/*.tsx",
				"**/*.mjs", "**/*.cjs", "**/*.mts", "**/*.cts",
			},
			ExcludePatterns: []string{
				// Package managers and dependencies
				"node_modules/",
				"vendor/",
				// Build outputs
				"dist/",
				"build/",
				"out/",
				".next/",
				".nuxt/",
				"coverage/",
				".git/",
				// Minified and bundled files
				"*.min.js",
				"*.bundle.js",
				"*.d.ts",
			},
			Recursive:      true,
			FollowSymlinks: false,
		},
		Output: OutputConfig{
			Format:          string(domain.OutputFormatText),
			ShowSnippets:    true,
			ShowSuggestions: true,
			Color:           true,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  0,
			TimeoutSeconds: DefaultTimeoutSeconds,
			ShowProgress:   true,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration, discovering a file from the
// target path upward when configPath is empty
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = FindDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// A fresh viper instance per load keeps concurrent loads independent
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// configCandidates lists discoverable file names in order of preference
var configCandidates = []string{
	"vibescan.yaml",
	"vibescan.yml",
	".vibescan.yaml",
	".vibescan.yml",
	".vibescan.toml",
	"vibescan.json",
	".vibescan.json",
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string) string {
	for _, candidate := range configCandidates {
		path := filepath.Join(dir, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// FindDefaultConfig looks for a configuration file starting at targetPath and
// walking up to the filesystem root, then in the current directory, the XDG
// config directory and the home directory. VIBESCAN_CONFIG is the last resort.
func FindDefaultConfig(targetPath string) string {
	if targetPath != "" {
		if absPath, err := filepath.Abs(targetPath); err == nil {
			if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir || dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory("."); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "vibescan")); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if config := searchConfigInDirectory(filepath.Join(home, ".config", "vibescan")); config != "" {
			return config
		}
		if config := searchConfigInDirectory(home); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv(EnvConfigVar); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	for _, name := range c.Patterns.Enabled {
		if _, err := domain.ParsePatternType(name); err != nil {
			return fmt.Errorf("patterns.enabled: %w", err)
		}
	}

	if _, err := domain.ParseSeverity(c.Patterns.MinSeverity); err != nil {
		return fmt.Errorf("patterns.min_severity: %w", err)
	}

	for name, severity := range c.Patterns.SeverityOverrides {
		if _, err := domain.ParsePatternType(name); err != nil {
			return fmt.Errorf("patterns.severity_overrides: %w", err)
		}
		if _, err := domain.ParseSeverity(severity); err != nil {
			return fmt.Errorf("patterns.severity_overrides[%s]: %w", name, err)
		}
	}

	if err := c.Detectors.validate(); err != nil {
		return err
	}

	validFormats := map[string]bool{
		string(domain.OutputFormatText):  true,
		string(domain.OutputFormatJSON):  true,
		string(domain.OutputFormatYAML):  true,
		string(domain.OutputFormatSARIF): true,
	}
	if !validFormats[strings.ToLower(c.Output.Format)] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, sarif", c.Output.Format)
	}

	if len(c.Analysis.IncludePatterns) == 0 {
		return fmt.Errorf("analysis.include_patterns cannot be empty")
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	return nil
}

// validate checks detector thresholds. Zero means "use the default".
func (d *DetectorsConfig) validate() error {
	thresholds := map[string]int{
		"complexity_warning":  d.ComplexityWarning,
		"complexity_critical": d.ComplexityCritical,
		"max_nesting_depth":   d.MaxNestingDepth,
		"max_function_lines":  d.MaxFunctionLines,
	}
	for name, value := range thresholds {
		if value < 0 {
			return fmt.Errorf("detectors.%s must be >= 0, got %d", name, value)
		}
	}

	if d.ComplexityWarning > 0 && d.ComplexityCritical > 0 && d.ComplexityCritical < d.ComplexityWarning {
		return fmt.Errorf("detectors.complexity_critical (%d) must be >= complexity_warning (%d)",
			d.ComplexityCritical, d.ComplexityWarning)
	}
	return nil
}

// ToDetectorSettings converts the detectors section into analyzer settings
func (d *DetectorsConfig) ToDetectorSettings() domain.DetectorSettings {
	return domain.DetectorSettings{
		GenericNames:         d.GenericNames,
		LoopVariables:        d.LoopVariables,
		CoordinateVariables:  d.CoordinateVariables,
		GenericErrorMessages: d.GenericErrorMessages,
		SecretPatterns:       d.SecretPatterns,
		ComplexityWarning:    d.ComplexityWarning,
		ComplexityCritical:   d.ComplexityCritical,
		MaxNestingDepth:      d.MaxNestingDepth,
		MaxFunctionLines:     d.MaxFunctionLines,
	}
}

// SaveConfig saves configuration to a file; the format follows the extension
func SaveConfig(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}

	v.Set("patterns", config.Patterns)
	v.Set("detectors", config.Detectors)
	v.Set("analysis", config.Analysis)
	v.Set("output", config.Output)
	v.Set("performance", config.Performance)

	return v.WriteConfig()
}
