package domain

import (
	"context"
	"io"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText  OutputFormat = "text"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
	OutputFormatSARIF OutputFormat = "sarif"
)

// PatternRequest represents a request to scan a set of files
type PatternRequest struct {
	// Files to analyze (already collected)
	Paths []string

	// Config is the resolved configuration applied to every file
	Config *ResolvedConfig

	// PatternTypes restricts detection to these types when non-empty
	PatternTypes []PatternType

	// MinSeverity overrides Config.MinSeverity when set
	MinSeverity Severity

	// Output configuration
	OutputFormat    OutputFormat
	OutputWriter    io.Writer
	ShowSnippets    bool
	ShowSuggestions bool
	NoColor         bool
}

// PatternResponse represents the complete scan result
type PatternResponse struct {
	Results []*AnalysisResult `json:"results" yaml:"results"`
	Summary AnalysisSummary   `json:"summary" yaml:"summary"`

	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// PatternService defines the core business logic for pattern scanning
type PatternService interface {
	// Analyze scans every file in the request
	Analyze(ctx context.Context, req PatternRequest) (*PatternResponse, error)
}

// OutputFormatter defines the interface for formatting scan results
type OutputFormatter interface {
	Write(response *PatternResponse, req PatternRequest, writer io.Writer) error
}

// FileReader defines file collection and reading operations
type FileReader interface {
	CollectJSFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	IsValidJSFile(path string) bool
	FileExists(path string) (bool, error)
}

// ExecutableTask is a unit of work run by a ParallelExecutor
type ExecutableTask interface {
	Name() string
	Execute(ctx context.Context) (interface{}, error)
	IsEnabled() bool
}

// ParallelExecutor runs tasks concurrently
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) error
}

// ProgressManager creates progress trackers for long running work
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress tracks progress of a single task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}
