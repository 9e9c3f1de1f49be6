package config

import (
	"strconv"
	"strings"
)

// ProjectType represents the type of JavaScript/TypeScript project
type ProjectType string

const (
	ProjectTypeGeneric     ProjectType = "generic"
	ProjectTypeReact       ProjectType = "react"
	ProjectTypeVue         ProjectType = "vue"
	ProjectTypeNodeBackend ProjectType = "node"
)

// Strictness represents the analysis strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// ProjectPreset holds file selection presets for a project type
type ProjectPreset struct {
	IncludePatterns []string
	ExcludePatterns []string
}

// StrictnessPreset holds detector thresholds for a strictness level
type StrictnessPreset struct {
	MinSeverity        string
	ComplexityWarning  int
	ComplexityCritical int
	MaxNestingDepth    int
	MaxFunctionLines   int
}

// GetProjectPresets returns presets for different project types
func GetProjectPresets() map[ProjectType]ProjectPreset {
	scripts := []string{"**/*.js", "**/*.ts", "**/*.jsx", "**/*.tsx"}
	common := []string{"node_modules/", "dist/", "build/", "*.min.js", "*.bundle.js"}

	return map[ProjectType]ProjectPreset{
		ProjectTypeGeneric: {
			IncludePatterns: scripts,
			ExcludePatterns: common,
		},
		ProjectTypeReact: {
			IncludePatterns: scripts,
			ExcludePatterns: append(append([]string{}, common...), ".next/", "coverage/"),
		},
		ProjectTypeVue: {
			IncludePatterns: scripts,
			ExcludePatterns: append(append([]string{}, common...), ".nuxt/", "coverage/"),
		},
		ProjectTypeNodeBackend: {
			IncludePatterns: []string{"**/*.js", "**/*.ts", "**/*.mjs", "**/*.cjs", "**/*.mts", "**/*.cts"},
			ExcludePatterns: append(append([]string{}, common...), "coverage/", "*.d.ts"),
		},
	}
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			MinSeverity:        "warning",
			ComplexityWarning:  15,
			ComplexityCritical: 30,
			MaxNestingDepth:    5,
			MaxFunctionLines:   80,
		},
		StrictnessStandard: {
			MinSeverity:        DefaultMinSeverity,
			ComplexityWarning:  DefaultComplexityWarning,
			ComplexityCritical: DefaultComplexityCritical,
			MaxNestingDepth:    DefaultMaxNestingDepth,
			MaxFunctionLines:   DefaultMaxFunctionLines,
		},
		StrictnessStrict: {
			MinSeverity:        "info",
			ComplexityWarning:  7,
			ComplexityCritical: 15,
			MaxNestingDepth:    3,
			MaxFunctionLines:   30,
		},
	}
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(projectType ProjectType, strictness Strictness) string {
	preset, ok := GetProjectPresets()[projectType]
	if !ok {
		preset = GetProjectPresets()[ProjectTypeGeneric]
	}
	strict, ok := GetStrictnessPresets()[strictness]
	if !ok {
		strict = GetStrictnessPresets()[StrictnessStandard]
	}

	return `# vibescan configuration
# Documentation: https://github.com/ludo-technologies/vibescan

# ============================================================================
# PATTERNS
# ============================================================================
patterns:
  # Pattern types to detect (empty = all)
  enabled: []

  # Minimum severity to report: info, warning, critical
  min_severity: ` + strict.MinSeverity + `

  # Replace the default severity of a pattern type
  # severity_overrides:
  #   magic_number: critical
  severity_overrides: {}

# ============================================================================
# DETECTORS
# ============================================================================
# Lists extend the built-in vocabularies, they never replace them
detectors:
  generic_names: []
  loop_variables: []
  coordinate_variables: []
  generic_error_messages: []

  # Extra regular expressions for secrets; the last capture group is masked
  secret_patterns: []

  # Functions with complexity >= this are reported
  complexity_warning: ` + strconv.Itoa(strict.ComplexityWarning) + `
  # Above this the report becomes critical
  complexity_critical: ` + strconv.Itoa(strict.ComplexityCritical) + `
  max_nesting_depth: ` + strconv.Itoa(strict.MaxNestingDepth) + `
  max_function_lines: ` + strconv.Itoa(strict.MaxFunctionLines) + `

# ============================================================================
# ANALYSIS SCOPE
# ============================================================================
analysis:
  include_patterns:
` + formatYAMLList(preset.IncludePatterns) + `
  # gitignore-style patterns
  exclude_patterns:
` + formatYAMLList(preset.ExcludePatterns) + `
  recursive: true
  follow_symlinks: false

# ============================================================================
# OUTPUT
# ============================================================================
output:
  # text, json, yaml, sarif
  format: text
  show_snippets: true
  show_suggestions: true
  color: true

# ============================================================================
# PERFORMANCE
# ============================================================================
performance:
  # 0 = number of CPUs
  max_goroutines: 0
  timeout_seconds: ` + strconv.Itoa(DefaultTimeoutSeconds) + `
  show_progress: true
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# vibescan configuration (minimal)
# See full options: https://github.com/ludo-technologies/vibescan

patterns:
  min_severity: info

analysis:
  exclude_patterns:
    - "node_modules/"
    - "dist/"
`
}

// formatYAMLList renders items as an indented YAML sequence of quoted strings
func formatYAMLList(items []string) string {
	if len(items) == 0 {
		return "    []"
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, `    - "`+item+`"`)
	}
	return strings.Join(lines, "\n")
}
