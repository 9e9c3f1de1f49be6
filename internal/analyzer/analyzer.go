package analyzer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/vibescan/domain"
)

// DefaultDetectors returns the built-in detectors in registration order
func DefaultDetectors() []Detector {
	return []Detector{
		NewNamingDetector(),
		NewErrorHandlingDetector(),
		NewSecurityDetector(),
		NewCodeQualityDetector(),
	}
}

// Analyzer runs every applicable detector over a file and post-processes the
// combined result
type Analyzer struct {
	detectors      []Detector
	logger         *slog.Logger
	maxConcurrency int
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithDetectors replaces the default detector set
func WithDetectors(detectors ...Detector) Option {
	return func(a *Analyzer) {
		a.detectors = detectors
	}
}

// WithLogger sets the logger used for detector failures
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMaxConcurrency bounds how many files AnalyzeFiles processes at once
func WithMaxConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxConcurrency = n
		}
	}
}

// NewAnalyzer creates an analyzer with the default detectors and a logger
// that discards output
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		detectors:      DefaultDetectors(),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxConcurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Detectors returns the registered detectors
func (a *Analyzer) Detectors() []Detector {
	return a.detectors
}

// FileOptions controls a single analysis call
type FileOptions struct {
	// Config is the resolved configuration; nil means defaults
	Config *domain.ResolvedConfig
	// Settings are pre-resolved detector settings; nil resolves them from Config
	Settings *Settings
	// PatternTypes restricts detection when non-empty
	PatternTypes []domain.PatternType
	// MinSeverity overrides Config.MinSeverity when set
	MinSeverity domain.Severity
}

// AnalyzeFile runs the applicable detectors on source. Detector failures are
// logged and contribute no patterns; they never fail the call.
func (a *Analyzer) AnalyzeFile(ctx context.Context, source, path string, opts FileOptions) *domain.AnalysisResult {
	start := time.Now()
	cfg := opts.Config
	if cfg == nil {
		cfg = domain.DefaultResolvedConfig()
	}

	lang := DetectLanguage(path)
	result := &domain.AnalysisResult{
		FilePath: path,
		Language: lang,
		Patterns: []domain.PatternRecord{},
	}
	defer func() { result.Duration = time.Since(start) }()

	if IsExcluded(path, cfg.ExcludePatterns) {
		result.Excluded = true
		return result
	}
	if lang == "" {
		return result
	}

	settings := opts.Settings
	if settings == nil {
		var err error
		settings, err = ResolveSettings(cfg.Settings)
		if err != nil {
			a.logger.Warn("invalid detector settings, using defaults", "file", path, "error", err)
			settings = DefaultSettings()
		}
	}

	requested := requestedTypes(cfg, opts.PatternTypes)
	applicable := a.applicableDetectors(lang, requested)
	if len(applicable) == 0 {
		return result
	}

	perDetector := make([][]domain.PatternRecord, len(applicable))
	g, gCtx := errgroup.WithContext(ctx)
	for i, det := range applicable {
		i, det := i, det
		g.Go(func() error {
			perDetector[i] = a.runDetector(gCtx, det, source, path, settings)
			// Failures are isolated; siblings keep running
			return nil
		})
	}
	_ = g.Wait()

	var patterns []domain.PatternRecord
	for _, records := range perDetector {
		for _, p := range records {
			if _, ok := requested[p.Type]; ok {
				patterns = append(patterns, p)
			}
		}
	}

	minSeverity := cfg.MinSeverity
	if opts.MinSeverity != "" {
		minSeverity = opts.MinSeverity
	}
	patterns = filterBySeverity(patterns, minSeverity)
	applyOverrides(patterns, cfg.SeverityOverrides)
	SortPatterns(patterns)

	if patterns != nil {
		result.Patterns = patterns
	}
	return result
}

// runDetector invokes one detector, converting errors and panics into an
// empty result
func (a *Analyzer) runDetector(ctx context.Context, det Detector, source, path string, settings *Settings) (records []domain.PatternRecord) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("detector panicked", "detector", det.ID(), "file", path, "error", fmt.Sprint(r))
			records = nil
		}
	}()

	if ctx.Err() != nil {
		return nil
	}
	records, err := det.Analyze(source, path, settings)
	if err != nil {
		a.logger.Warn("detector failed", "detector", det.ID(), "file", path, "error", err)
		return nil
	}
	a.logger.Debug("detector finished", "detector", det.ID(), "file", path, "patterns", len(records))
	return records
}

// AnalyzeFiles analyzes files concurrently; results keep the input order
func (a *Analyzer) AnalyzeFiles(ctx context.Context, files []domain.SourceFile, opts FileOptions) []*domain.AnalysisResult {
	results := make([]*domain.AnalysisResult, len(files))
	if len(files) == 0 {
		return results
	}

	if opts.Settings == nil {
		cfg := opts.Config
		if cfg == nil {
			cfg = domain.DefaultResolvedConfig()
		}
		if settings, err := ResolveSettings(cfg.Settings); err == nil {
			opts.Settings = settings
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			results[i] = a.AnalyzeFile(gCtx, f.Source, f.Path, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// applicableDetectors keeps detectors that understand lang and own at least
// one requested pattern type
func (a *Analyzer) applicableDetectors(lang domain.Language, requested map[domain.PatternType]struct{}) []Detector {
	var out []Detector
	for _, det := range a.detectors {
		if !containsLanguage(det.Languages(), lang) {
			continue
		}
		for _, p := range det.Patterns() {
			if _, ok := requested[p]; ok {
				out = append(out, det)
				break
			}
		}
	}
	return out
}

// requestedTypes intersects the call's pattern types (all when empty) with
// the enabled ones
func requestedTypes(cfg *domain.ResolvedConfig, only []domain.PatternType) map[domain.PatternType]struct{} {
	types := make(map[domain.PatternType]struct{})
	if len(only) == 0 {
		for _, p := range cfg.EnabledPatterns {
			types[p] = struct{}{}
		}
		return types
	}
	for _, p := range only {
		if cfg.IsEnabled(p) {
			types[p] = struct{}{}
		}
	}
	return types
}

func filterBySeverity(patterns []domain.PatternRecord, min domain.Severity) []domain.PatternRecord {
	if min == "" {
		return patterns
	}
	filtered := patterns[:0]
	for _, p := range patterns {
		if p.Severity.AtLeast(min) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// applyOverrides runs after severity filtering, so an override never brings
// back a pattern that was filtered out
func applyOverrides(patterns []domain.PatternRecord, overrides map[domain.PatternType]domain.Severity) {
	if len(overrides) == 0 {
		return
	}
	for i := range patterns {
		if s, ok := overrides[patterns[i].Type]; ok {
			patterns[i].Severity = s
		}
	}
}

// SortPatterns orders patterns by severity (critical first), then start line
func SortPatterns(patterns []domain.PatternRecord) {
	sort.SliceStable(patterns, func(i, j int) bool {
		li, lj := patterns[i].Severity.Level(), patterns[j].Severity.Level()
		if li != lj {
			return li > lj
		}
		return patterns[i].Location.StartLine < patterns[j].Location.StartLine
	})
}

var (
	ignoreCacheMu sync.Mutex
	ignoreCache   = map[string]*ignore.GitIgnore{}
)

// IsExcluded reports whether path matches any gitignore-style pattern
func IsExcluded(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	matcher := compileExcludes(patterns)
	slashed := filepath.ToSlash(path)
	if matcher.MatchesPath(slashed) {
		return true
	}
	// Absolute paths should still match relative patterns such as "dist/"
	if filepath.IsAbs(path) {
		if wd, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(wd, path); err == nil {
				return matcher.MatchesPath(filepath.ToSlash(rel))
			}
		}
	}
	return false
}

func compileExcludes(patterns []string) *ignore.GitIgnore {
	// NUL cannot appear in a pattern line, so distinct lists never share a key
	key := strings.Join(patterns, "\x00")
	ignoreCacheMu.Lock()
	defer ignoreCacheMu.Unlock()
	if m, ok := ignoreCache[key]; ok {
		return m
	}
	m := ignore.CompileIgnoreLines(patterns...)
	ignoreCache[key] = m
	return m
}

// Summarize aggregates pattern counts across results
func Summarize(results []*domain.AnalysisResult) domain.AnalysisSummary {
	summary := domain.AnalysisSummary{
		BySeverity: make(map[domain.Severity]int),
		ByType:     make(map[domain.PatternType]int),
	}
	var total time.Duration
	for _, r := range results {
		if r == nil {
			continue
		}
		summary.TotalFiles++
		total += r.Duration
		for _, p := range r.Patterns {
			summary.TotalPatterns++
			summary.BySeverity[p.Severity]++
			summary.ByType[p.Type]++
		}
	}
	summary.TotalDurationMs = total.Milliseconds()
	return summary
}
