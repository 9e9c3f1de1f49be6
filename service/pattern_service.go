package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/analyzer"
	"github.com/ludo-technologies/vibescan/internal/config"
	"github.com/ludo-technologies/vibescan/internal/version"
)

// PatternServiceImpl implements the PatternService interface
type PatternServiceImpl struct {
	analyzer *analyzer.Analyzer
	executor *ParallelExecutorImpl
	logger   *slog.Logger
}

// NewPatternService creates a pattern service that analyzes files in parallel
// within the limits of the performance configuration
func NewPatternService(perf *config.PerformanceConfig, pm domain.ProgressManager, logger *slog.Logger) *PatternServiceImpl {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	executor := NewParallelExecutorWithProgress(perf, pm)
	return &PatternServiceImpl{
		analyzer: analyzer.NewAnalyzer(analyzer.WithLogger(logger)),
		executor: executor,
		logger:   logger,
	}
}

// fileTask analyzes one file and keeps the result for the service to collect
type fileTask struct {
	path     string
	analyzer *analyzer.Analyzer
	opts     analyzer.FileOptions
	result   *domain.AnalysisResult
}

// Name returns the file path
func (t *fileTask) Name() string {
	return t.path
}

// IsEnabled is always true; unsupported files are filtered before tasks are built
func (t *fileTask) IsEnabled() bool {
	return true
}

// Execute reads and analyzes the file
func (t *fileTask) Execute(ctx context.Context) (interface{}, error) {
	content, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewFileNotFoundError(t.path, err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	t.result = t.analyzer.AnalyzeFile(ctx, string(content), t.path, t.opts)
	return t.result, nil
}

// Analyze scans every file in the request. Per-file failures are reported in
// the response; the call only fails when the request itself is unusable.
func (s *PatternServiceImpl) Analyze(ctx context.Context, req domain.PatternRequest) (*domain.PatternResponse, error) {
	if len(req.Paths) == 0 {
		return nil, domain.NewInvalidInputError("no files to analyze", nil)
	}

	cfg := req.Config
	if cfg == nil {
		cfg = domain.DefaultResolvedConfig()
	}
	if req.MinSeverity != "" && !req.MinSeverity.IsValid() {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid minimum severity %q", req.MinSeverity), nil)
	}

	settings, err := analyzer.ResolveSettings(cfg.Settings)
	if err != nil {
		return nil, domain.NewConfigError("invalid detector settings", err)
	}

	opts := analyzer.FileOptions{
		Config:       cfg,
		Settings:     settings,
		PatternTypes: req.PatternTypes,
		MinSeverity:  req.MinSeverity,
	}

	tasks := make([]domain.ExecutableTask, 0, len(req.Paths))
	fileTasks := make([]*fileTask, 0, len(req.Paths))
	for _, path := range req.Paths {
		task := &fileTask{path: path, analyzer: s.analyzer, opts: opts}
		tasks = append(tasks, task)
		fileTasks = append(fileTasks, task)
	}

	start := time.Now()
	s.logger.Debug("scanning files", "files", len(tasks))

	var errs []string
	if execErr := s.executor.Execute(ctx, tasks); execErr != nil {
		var aggErr *AggregatedError
		if !errors.As(execErr, &aggErr) {
			return nil, domain.NewAnalysisError("scan failed", execErr)
		}
		for _, taskErr := range aggErr.Errors {
			s.logger.Warn("file skipped", "file", taskErr.TaskName, "error", taskErr.Err)
		}
		errs = aggErr.Messages()
		sort.Strings(errs)
	}

	results := make([]*domain.AnalysisResult, 0, len(fileTasks))
	var warnings []string
	for _, task := range fileTasks {
		if task.result == nil {
			continue
		}
		if task.result.Excluded {
			warnings = append(warnings, fmt.Sprintf("[%s] excluded by configuration", task.path))
		}
		results = append(results, task.result)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FilePath < results[j].FilePath
	})

	if len(results) == 0 {
		return nil, domain.NewAnalysisError("no files could be analyzed", fmt.Errorf("%d files failed", len(errs)))
	}

	summary := analyzer.Summarize(results)
	s.logger.Debug("scan finished",
		"files", summary.TotalFiles,
		"patterns", summary.TotalPatterns,
		"elapsed", time.Since(start))

	return &domain.PatternResponse{
		Results:     results,
		Summary:     summary,
		Warnings:    warnings,
		Errors:      errs,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.GetVersion(),
	}, nil
}
