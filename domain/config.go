package domain

// DetectorSettings holds user extensions layered on top of the built-in
// detector defaults. Lists extend the built-ins, they never replace them.
// Zero thresholds mean "use the built-in default".
type DetectorSettings struct {
	GenericNames         []string `json:"generic_names,omitempty" yaml:"generic_names,omitempty"`
	LoopVariables        []string `json:"loop_variables,omitempty" yaml:"loop_variables,omitempty"`
	CoordinateVariables  []string `json:"coordinate_variables,omitempty" yaml:"coordinate_variables,omitempty"`
	GenericErrorMessages []string `json:"generic_error_messages,omitempty" yaml:"generic_error_messages,omitempty"`
	SecretPatterns       []string `json:"secret_patterns,omitempty" yaml:"secret_patterns,omitempty"`

	ComplexityWarning  int `json:"complexity_warning,omitempty" yaml:"complexity_warning,omitempty"`
	ComplexityCritical int `json:"complexity_critical,omitempty" yaml:"complexity_critical,omitempty"`
	MaxNestingDepth    int `json:"max_nesting_depth,omitempty" yaml:"max_nesting_depth,omitempty"`
	MaxFunctionLines   int `json:"max_function_lines,omitempty" yaml:"max_function_lines,omitempty"`
}

// ResolvedConfig is the fully merged configuration handed to the analyzer.
// It is constructed once per invocation and treated as read-only.
type ResolvedConfig struct {
	EnabledPatterns   []PatternType            `json:"enabled_patterns" yaml:"enabled_patterns"`
	MinSeverity       Severity                 `json:"min_severity" yaml:"min_severity"`
	SeverityOverrides map[PatternType]Severity `json:"severity_overrides,omitempty" yaml:"severity_overrides,omitempty"`
	ExcludePatterns   []string                 `json:"exclude_patterns,omitempty" yaml:"exclude_patterns,omitempty"`
	Settings          DetectorSettings         `json:"settings" yaml:"settings"`
}

// DefaultResolvedConfig enables every pattern with no overrides and an info threshold
func DefaultResolvedConfig() *ResolvedConfig {
	return &ResolvedConfig{
		EnabledPatterns:   AllPatternTypes(),
		MinSeverity:       SeverityInfo,
		SeverityOverrides: map[PatternType]Severity{},
	}
}

// IsEnabled reports whether a pattern type is in the enabled list
func (c *ResolvedConfig) IsEnabled(p PatternType) bool {
	for _, enabled := range c.EnabledPatterns {
		if enabled == p {
			return true
		}
	}
	return false
}
