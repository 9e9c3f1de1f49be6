package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
	"github.com/ludo-technologies/vibescan/internal/constants"
	"github.com/ludo-technologies/vibescan/internal/testutil"
)

// runCLI executes the root command and returns the exit code and both streams
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// newProject creates a directory with a config file so discovery stops there
func newProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFile(t, dir, constants.ConfigFileName, "patterns:\n  min_severity: info\n")
	for name, content := range files {
		testutil.WriteFile(t, dir, name, content)
	}
	return dir
}

func TestAnalyzeCmd_FlagsExist(t *testing.T) {
	cmd := analyzeCmd()

	expectedFlags := []string{"config", "format", "select", "min-severity", "exclude", "output",
		"no-color", "no-snippets", "no-suggestions", "no-progress", "follow-symlinks", "verbose"}
	for _, flagName := range expectedFlags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
}

func TestAnalyzeCmd_ShortFlags(t *testing.T) {
	cmd := analyzeCmd()

	shortFlags := map[string]string{
		"c": "config",
		"f": "format",
		"s": "select",
		"e": "exclude",
		"o": "output",
		"v": "verbose",
	}
	for short, long := range shortFlags {
		flag := cmd.Flags().ShorthandLookup(short)
		if flag == nil || flag.Name != long {
			t.Errorf("Missing short flag -%s for --%s", short, long)
		}
	}
}

func TestCheckCmd_DefaultValues(t *testing.T) {
	cmd := checkCmd()

	failOn := cmd.Flags().Lookup("fail-on")
	if failOn == nil {
		t.Fatal("fail-on flag not found")
	}
	if failOn.DefValue != "critical" {
		t.Errorf("Expected default fail-on to be 'critical', got '%s'", failOn.DefValue)
	}
	if format := cmd.Flags().Lookup("format"); format == nil || format.DefValue != "text" {
		t.Error("Expected check to share the text format default")
	}
}

func TestVersionCmd(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	if code != constants.ExitOK {
		t.Fatalf("Expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "vibescan version") {
		t.Errorf("Unexpected version output %q", out)
	}

	_, out, _ = runCLI(t, "version", "--verbose")
	if !strings.Contains(out, "commit:") {
		t.Errorf("Expected full version info, got %q", out)
	}
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	dir := newProject(t, map[string]string{
		"src/handler.js": "try { run(); } catch (e) {}\n",
		"src/util.ts":    "export const add = (left: number, right: number) => left + right;\n",
	})

	code, out, errOut := runCLI(t, "analyze", "--format", "json", "--no-progress", dir)
	if code != constants.ExitOK {
		t.Fatalf("Expected exit 0, got %d: %s", code, errOut)
	}

	var resp domain.PatternResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, out)
	}
	if resp.Summary.TotalFiles != 2 {
		t.Errorf("Expected 2 files, got %d", resp.Summary.TotalFiles)
	}
	if resp.Summary.ByType[domain.PatternEmptyCatchBlock] != 1 {
		t.Errorf("Expected one empty catch block, got %v", resp.Summary.ByType)
	}
}

func TestAnalyzeCmd_SelectAndSeverity(t *testing.T) {
	dir := newProject(t, map[string]string{
		"app.js": "const data = load();\ntry { run(); } catch (e) {}\n",
	})

	code, out, errOut := runCLI(t, "analyze", "-f", "json", "--select", "generic_variable_name", dir)
	if code != constants.ExitOK {
		t.Fatalf("Expected exit 0, got %d: %s", code, errOut)
	}
	var resp domain.PatternResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if resp.Summary.TotalPatterns != 1 || resp.Summary.ByType[domain.PatternGenericVariableName] != 1 {
		t.Errorf("Expected only the generic name, got %v", resp.Summary.ByType)
	}

	code, _, _ = runCLI(t, "analyze", "--select", "not_a_pattern", dir)
	if code != constants.ExitError {
		t.Errorf("Expected exit 2 for an unknown pattern type, got %d", code)
	}
	code, _, _ = runCLI(t, "analyze", "--min-severity", "loud", dir)
	if code != constants.ExitError {
		t.Errorf("Expected exit 2 for an unknown severity, got %d", code)
	}
	code, _, _ = runCLI(t, "analyze", "--format", "html", dir)
	if code != constants.ExitError {
		t.Errorf("Expected exit 2 for an unsupported format, got %d", code)
	}
}

func TestAnalyzeCmd_OutputFile(t *testing.T) {
	dir := newProject(t, map[string]string{"app.js": "eval(input);\n"})
	reportPath := filepath.Join(t.TempDir(), "report.sarif")

	code, out, errOut := runCLI(t, "analyze", "--format", "sarif", "-o", reportPath, dir)
	if code != constants.ExitOK {
		t.Fatalf("Expected exit 0, got %d: %s", code, errOut)
	}
	if out != "" {
		t.Errorf("Expected nothing on stdout, got %q", out)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("Report not written: %v", err)
	}
	if !strings.Contains(string(data), `"version": "2.1.0"`) || !strings.Contains(string(data), "unsafe_eval") {
		t.Errorf("Unexpected SARIF report\n%s", data)
	}
}

func TestAnalyzeCmd_Errors(t *testing.T) {
	if code, _, _ := runCLI(t, "analyze"); code != constants.ExitError {
		t.Errorf("Expected exit 2 without paths, got %d", code)
	}
	missing := filepath.Join(t.TempDir(), "missing")
	if code, _, errOut := runCLI(t, "analyze", missing); code != constants.ExitError || !strings.Contains(errOut, "Error:") {
		t.Errorf("Expected exit 2 with an error message for a missing path, got %d %q", code, errOut)
	}
}

func TestCheckCmd_ExitCodes(t *testing.T) {
	dir := newProject(t, map[string]string{
		"bad.js":  "try { run(); } catch (e) {}\n",
		"good.js": "run();\n",
	})

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"critical finding fails", []string{"check", "--no-progress", dir}, constants.ExitFindings},
		{"selection without findings passes", []string{"check", "--select", "unsafe_eval", dir}, constants.ExitOK},
		{"single clean file passes", []string{"check", filepath.Join(dir, "good.js")}, constants.ExitOK},
		{"invalid fail-on", []string{"check", "--fail-on", "fatal", dir}, constants.ExitError},
		{"missing path", []string{"check", filepath.Join(dir, "missing.js")}, constants.ExitError},
		{"no paths", []string{"check"}, constants.ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			if code != tt.want {
				t.Errorf("Expected exit %d, got %d: %s", tt.want, code, errOut)
			}
		})
	}
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, constants.ConfigFileName)

	code, out, errOut := runCLI(t, "init", "--config", path, "--project", "react", "--strictness", "strict")
	if code != constants.ExitOK {
		t.Fatalf("Expected exit 0, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Created") {
		t.Errorf("Unexpected init output %q", out)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("Generated config does not load: %v", err)
	}
	if cfg.Detectors.MaxNestingDepth != 3 {
		t.Errorf("Expected strict nesting depth 3, got %d", cfg.Detectors.MaxNestingDepth)
	}

	if code, _, _ := runCLI(t, "init", "--config", path); code != constants.ExitError {
		t.Errorf("Expected exit 2 when the file exists, got %d", code)
	}
	if code, _, errOut := runCLI(t, "init", "--config", path, "--force", "--minimal"); code != constants.ExitOK {
		t.Errorf("Expected --force to overwrite, got %d: %s", code, errOut)
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Errorf("Minimal config does not load: %v", err)
	}
}

func TestInitCmd_InvalidOptions(t *testing.T) {
	dir := t.TempDir()

	tests := [][]string{
		{"init", "--config", filepath.Join(dir, "a.yaml"), "--project", "angular"},
		{"init", "--config", filepath.Join(dir, "b.yaml"), "--strictness", "paranoid"},
		{"init", "--config", filepath.Join(dir, "missing", "c.yaml")},
	}
	for _, args := range tests {
		if code, _, _ := runCLI(t, args...); code != constants.ExitError {
			t.Errorf("Expected exit 2 for %v, got %d", args, code)
		}
	}
}
