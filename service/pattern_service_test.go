package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
	"github.com/ludo-technologies/vibescan/internal/testutil"
)

func newTestPatternService() *PatternServiceImpl {
	return NewPatternService(&config.PerformanceConfig{MaxGoroutines: 2, TimeoutSeconds: 30}, &NoOpProgressManager{}, nil)
}

func TestPatternService_Analyze(t *testing.T) {
	dir := t.TempDir()
	catchPath := testutil.WriteFile(t, dir, "b.js", "try { run(); } catch (e) {}\n")
	namingPath := testutil.WriteFile(t, dir, "a.ts", "const data = load();\n")

	resp, err := newTestPatternService().Analyze(context.Background(), domain.PatternRequest{
		Paths: []string{catchPath, namingPath},
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if resp.Results[0].FilePath != namingPath {
		t.Errorf("expected results sorted by path, first is %s", resp.Results[0].FilePath)
	}
	if resp.Summary.TotalFiles != 2 {
		t.Errorf("expected 2 files in summary, got %d", resp.Summary.TotalFiles)
	}
	if resp.Summary.ByType[domain.PatternEmptyCatchBlock] != 1 {
		t.Errorf("expected one empty catch block, got %v", resp.Summary.ByType)
	}
	if resp.Summary.ByType[domain.PatternGenericVariableName] != 1 {
		t.Errorf("expected one generic variable name, got %v", resp.Summary.ByType)
	}
	if resp.Version == "" || resp.GeneratedAt == "" {
		t.Error("expected version and timestamp")
	}
}

func TestPatternService_FiltersFromRequest(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "app.js", "const data = load();\nconst total = price * 42;\ntry { run(); } catch (e) {}\n")

	resp, err := newTestPatternService().Analyze(context.Background(), domain.PatternRequest{
		Paths:        []string{path},
		PatternTypes: []domain.PatternType{domain.PatternMagicNumber, domain.PatternEmptyCatchBlock},
		MinSeverity:  domain.SeverityWarning,
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	patterns := resp.Results[0].Patterns
	testutil.AssertPatternCount(t, patterns, domain.PatternEmptyCatchBlock, 1)
	testutil.AssertPatternCount(t, patterns, domain.PatternMagicNumber, 0)
	testutil.AssertPatternCount(t, patterns, domain.PatternGenericVariableName, 0)
}

func TestPatternService_ExcludedFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "bundle.min.js", "eval(x);\n")

	cfg := domain.DefaultResolvedConfig()
	cfg.ExcludePatterns = []string{"*.min.js"}

	resp, err := newTestPatternService().Analyze(context.Background(), domain.PatternRequest{
		Paths:  []string{path},
		Config: cfg,
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !resp.Results[0].Excluded || len(resp.Results[0].Patterns) != 0 {
		t.Errorf("expected excluded result with no patterns, got %+v", resp.Results[0])
	}
	if len(resp.Warnings) != 1 {
		t.Errorf("expected an exclusion warning, got %v", resp.Warnings)
	}
}

func TestPatternService_MissingFile(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteFile(t, dir, "ok.js", "run();\n")
	missing := filepath.Join(dir, "gone.js")

	resp, err := newTestPatternService().Analyze(context.Background(), domain.PatternRequest{
		Paths: []string{good, missing},
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(resp.Results) != 1 {
		t.Errorf("expected 1 result, got %d", len(resp.Results))
	}
	if len(resp.Errors) != 1 || !strings.Contains(resp.Errors[0], "gone.js") {
		t.Errorf("expected an error naming the missing file, got %v", resp.Errors)
	}
}

func TestPatternService_AllFilesFail(t *testing.T) {
	_, err := newTestPatternService().Analyze(context.Background(), domain.PatternRequest{
		Paths: []string{filepath.Join(t.TempDir(), "missing.js")},
	})

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != domain.ErrCodeAnalysisError {
		t.Errorf("expected analysis error, got %v", err)
	}
}

func TestPatternService_InvalidRequests(t *testing.T) {
	svc := newTestPatternService()

	if _, err := svc.Analyze(context.Background(), domain.PatternRequest{}); err == nil {
		t.Error("expected error for empty path list")
	}

	cfg := domain.DefaultResolvedConfig()
	cfg.Settings.SecretPatterns = []string{"(["}
	_, err := svc.Analyze(context.Background(), domain.PatternRequest{Paths: []string{"a.js"}, Config: cfg})
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != domain.ErrCodeConfigError {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestPatternService_Deterministic(t *testing.T) {
	dir := t.TempDir()
	source := "const data = load();\nconst total = price * 42;\nfunction handle() {}\n"
	var paths []string
	for _, name := range []string{"c.js", "a.js", "b.js"} {
		paths = append(paths, testutil.WriteFile(t, dir, name, source))
	}

	svc := newTestPatternService()
	first, err := svc.Analyze(context.Background(), domain.PatternRequest{Paths: paths})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	second, err := svc.Analyze(context.Background(), domain.PatternRequest{Paths: paths})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	for i := range first.Results {
		a, b := first.Results[i], second.Results[i]
		if a.FilePath != b.FilePath || len(a.Patterns) != len(b.Patterns) {
			t.Fatalf("results differ at %d", i)
		}
		for j := range a.Patterns {
			if a.Patterns[j].Type != b.Patterns[j].Type || a.Patterns[j].Location != b.Patterns[j].Location {
				t.Errorf("pattern %d of %s differs between runs", j, a.FilePath)
			}
		}
	}
}
