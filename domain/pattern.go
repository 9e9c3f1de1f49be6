package domain

import (
	"fmt"
	"strings"
	"time"
)

// Severity represents how serious a detected pattern is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Level returns the ordinal of the severity (info < warning < critical).
// Unknown severities rank below info.
func (s Severity) Level() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether s is equal to or more severe than other
func (s Severity) AtLeast(other Severity) bool {
	return s.Level() >= other.Level()
}

// IsValid returns true for the three known severities
func (s Severity) IsValid() bool {
	return s.Level() > 0
}

// ParseSeverity parses a severity name case-insensitively
func ParseSeverity(value string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid severity %q, must be one of: info, warning, critical", value)
	}
	return s, nil
}

// PatternType identifies the kind of issue a detector reports
type PatternType string

// Naming patterns
const (
	PatternGenericVariableName PatternType = "generic_variable_name"
	PatternGenericFunctionName PatternType = "generic_function_name"
	PatternInconsistentNaming  PatternType = "inconsistent_naming"
)

// Error handling patterns
const (
	PatternEmptyCatchBlock      PatternType = "empty_catch_block"
	PatternSwallowedError       PatternType = "swallowed_error"
	PatternMissingErrorBoundary PatternType = "missing_error_boundary"
	PatternGenericErrorMessage  PatternType = "generic_error_message"
	PatternTryWithoutCatch      PatternType = "try_without_catch"
)

// Security patterns
const (
	PatternHardcodedSecret  PatternType = "hardcoded_secret"
	PatternSQLConcatenation PatternType = "sql_concatenation"
	PatternUnsafeEval       PatternType = "unsafe_eval"
	PatternInsecureRandom   PatternType = "insecure_random"
	PatternDangerousHTML    PatternType = "dangerous_html"
)

// Code quality patterns
const (
	PatternMagicNumber               PatternType = "magic_number"
	PatternTodoWithoutContext        PatternType = "todo_without_context"
	PatternCommentedOutCode          PatternType = "commented_out_code"
	PatternOverlyComplexFunction     PatternType = "overly_complex_function"
	PatternPlaceholderImplementation PatternType = "placeholder_implementation"
	PatternDeepNesting               PatternType = "deep_nesting"
	PatternLongFunction              PatternType = "long_function"
)

var defaultSeverities = map[PatternType]Severity{
	PatternGenericVariableName:       SeverityWarning,
	PatternGenericFunctionName:       SeverityInfo,
	PatternInconsistentNaming:        SeverityInfo,
	PatternEmptyCatchBlock:           SeverityCritical,
	PatternSwallowedError:            SeverityWarning,
	PatternMissingErrorBoundary:      SeverityWarning,
	PatternGenericErrorMessage:       SeverityInfo,
	PatternTryWithoutCatch:           SeverityInfo,
	PatternHardcodedSecret:           SeverityCritical,
	PatternSQLConcatenation:          SeverityCritical,
	PatternUnsafeEval:                SeverityCritical,
	PatternInsecureRandom:            SeverityWarning,
	PatternDangerousHTML:             SeverityWarning,
	PatternMagicNumber:               SeverityInfo,
	PatternTodoWithoutContext:        SeverityInfo,
	PatternCommentedOutCode:          SeverityInfo,
	PatternOverlyComplexFunction:     SeverityWarning,
	PatternPlaceholderImplementation: SeverityWarning,
	PatternDeepNesting:               SeverityWarning,
	PatternLongFunction:              SeverityInfo,
}

// AllPatternTypes returns every known pattern type in declaration order
func AllPatternTypes() []PatternType {
	return []PatternType{
		PatternGenericVariableName,
		PatternGenericFunctionName,
		PatternInconsistentNaming,
		PatternEmptyCatchBlock,
		PatternSwallowedError,
		PatternMissingErrorBoundary,
		PatternGenericErrorMessage,
		PatternTryWithoutCatch,
		PatternHardcodedSecret,
		PatternSQLConcatenation,
		PatternUnsafeEval,
		PatternInsecureRandom,
		PatternDangerousHTML,
		PatternMagicNumber,
		PatternTodoWithoutContext,
		PatternCommentedOutCode,
		PatternOverlyComplexFunction,
		PatternPlaceholderImplementation,
		PatternDeepNesting,
		PatternLongFunction,
	}
}

// DefaultSeverity returns the severity a pattern type carries unless overridden
func (p PatternType) DefaultSeverity() Severity {
	if s, ok := defaultSeverities[p]; ok {
		return s
	}
	return SeverityInfo
}

// IsValid returns true if p is one of the known pattern types
func (p PatternType) IsValid() bool {
	_, ok := defaultSeverities[p]
	return ok
}

// ParsePatternType validates a pattern type name
func ParsePatternType(value string) (PatternType, error) {
	p := PatternType(strings.ToLower(strings.TrimSpace(value)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown pattern type %q", value)
	}
	return p, nil
}

// Language is the source language of an analyzed file
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
)

// Location identifies a span in a source file. Lines are 1-based.
type Location struct {
	File        string `json:"file" yaml:"file"`
	StartLine   int    `json:"start_line" yaml:"start_line"`
	EndLine     int    `json:"end_line" yaml:"end_line"`
	StartColumn int    `json:"start_column,omitempty" yaml:"start_column,omitempty"`
	EndColumn   int    `json:"end_column,omitempty" yaml:"end_column,omitempty"`
}

// String returns file:line
func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.StartLine)
}

// PatternRecord is one detected issue
type PatternRecord struct {
	ID               string      `json:"id" yaml:"id"`
	Type             PatternType `json:"type" yaml:"type"`
	Severity         Severity    `json:"severity" yaml:"severity"`
	Location         Location    `json:"location" yaml:"location"`
	Description      string      `json:"description" yaml:"description"`
	Explanation      string      `json:"explanation" yaml:"explanation"`
	CodeSnippet      string      `json:"code_snippet" yaml:"code_snippet"`
	Suggestion       string      `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Confidence       float64     `json:"confidence" yaml:"confidence"`
	AutoFixAvailable bool        `json:"auto_fix_available" yaml:"auto_fix_available"`
	DetectorID       string      `json:"detector_id" yaml:"detector_id"`
}

// SourceFile is an in-memory file handed to the analyzer
type SourceFile struct {
	Path   string
	Source string
}

// AnalysisResult holds the patterns found in a single file
type AnalysisResult struct {
	FilePath string          `json:"file_path" yaml:"file_path"`
	Language Language        `json:"language,omitempty" yaml:"language,omitempty"`
	Patterns []PatternRecord `json:"patterns" yaml:"patterns"`
	Duration time.Duration   `json:"duration_ns" yaml:"duration_ns"`
	Excluded bool            `json:"excluded,omitempty" yaml:"excluded,omitempty"`
}

// AnalysisSummary aggregates pattern counts over many results
type AnalysisSummary struct {
	TotalFiles      int                 `json:"total_files" yaml:"total_files"`
	TotalPatterns   int                 `json:"total_patterns" yaml:"total_patterns"`
	BySeverity      map[Severity]int    `json:"by_severity" yaml:"by_severity"`
	ByType          map[PatternType]int `json:"by_type" yaml:"by_type"`
	TotalDurationMs int64               `json:"total_duration_ms" yaml:"total_duration_ms"`
}

// CountAtLeast returns how many patterns are at or above the given severity
func (s AnalysisSummary) CountAtLeast(min Severity) int {
	count := 0
	for severity, n := range s.BySeverity {
		if severity.AtLeast(min) {
			count += n
		}
	}
	return count
}
