package app

import (
	"context"
	"io"

	"github.com/ludo-technologies/vibescan/domain"
)

// AnalyzeConfig holds configuration for the analyze use case
type AnalyzeConfig struct {
	// Config is the resolved configuration applied to every file
	Config *domain.ResolvedConfig

	// Selection overrides from the command line
	PatternTypes []domain.PatternType
	MinSeverity  domain.Severity

	// Output options; a nil writer skips formatting
	OutputFormat    domain.OutputFormat
	OutputWriter    io.Writer
	ShowSnippets    bool
	ShowSuggestions bool
	NoColor         bool

	// File options
	Recursive       bool
	FollowSymlinks  bool
	IncludePatterns []string
	ExcludePatterns []string
}

// DefaultAnalyzeConfig returns default configuration
func DefaultAnalyzeConfig() AnalyzeConfig {
	return AnalyzeConfig{
		Config:          domain.DefaultResolvedConfig(),
		OutputFormat:    domain.OutputFormatText,
		ShowSnippets:    true,
		ShowSuggestions: true,
		Recursive:       true,
	}
}

// AnalyzeUseCase orchestrates file collection, scanning and reporting
type AnalyzeUseCase struct {
	service    domain.PatternService
	formatter  domain.OutputFormatter
	fileHelper *FileHelper
}

// NewAnalyzeUseCase creates a new analyze use case
func NewAnalyzeUseCase(service domain.PatternService, formatter domain.OutputFormatter) *AnalyzeUseCase {
	return &AnalyzeUseCase{
		service:    service,
		formatter:  formatter,
		fileHelper: NewFileHelper(),
	}
}

// Execute collects the files under paths, scans them and writes the report
func (uc *AnalyzeUseCase) Execute(ctx context.Context, config AnalyzeConfig, paths []string) (*domain.PatternResponse, error) {
	if len(paths) == 0 {
		return nil, domain.NewInvalidInputError("no paths specified", nil)
	}
	if uc.service == nil {
		return nil, domain.NewInvalidInputError("pattern service is not configured", nil)
	}

	collect := uc.fileHelper.CollectJSFiles
	if config.FollowSymlinks {
		collect = uc.fileHelper.CollectJSFilesFollowingSymlinks
	}
	files, err := collect(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, domain.NewFileNotFoundError("failed to collect files", err)
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no JavaScript/TypeScript files found in the specified paths", nil)
	}

	req := domain.PatternRequest{
		Paths:           files,
		Config:          config.Config,
		PatternTypes:    config.PatternTypes,
		MinSeverity:     config.MinSeverity,
		OutputFormat:    config.OutputFormat,
		OutputWriter:    config.OutputWriter,
		ShowSnippets:    config.ShowSnippets,
		ShowSuggestions: config.ShowSuggestions,
		NoColor:         config.NoColor,
	}

	response, err := uc.service.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.OutputWriter != nil && uc.formatter != nil {
		if err := uc.formatter.Write(response, req, req.OutputWriter); err != nil {
			return response, err
		}
	}

	return response, nil
}
