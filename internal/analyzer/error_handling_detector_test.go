package analyzer

import (
	"testing"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/testutil"
)

func TestErrorHandlingEmptyCatch(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{"empty block", `try { x(); } catch (e) {}`, 1},
		{"comment only", "try { x(); } catch (e) {\n  // ignore\n}", 1},
		{"stray semicolon", `try { x(); } catch (e) { ; }`, 1},
		{"handled", `try { x(); } catch (e) { console.error(e); }`, 0},
	}

	d := NewErrorHandlingDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns := runDetector(t, d, "a.js", tt.source)
			found := testutil.AssertPatternCount(t, patterns, domain.PatternEmptyCatchBlock, tt.want)
			for _, p := range found {
				if p.Severity != domain.SeverityCritical {
					t.Errorf("Expected critical severity, got %s", p.Severity)
				}
			}
		})
	}
}

func TestErrorHandlingSwallowedError(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{"error logged", `try { x(); } catch (err) { console.error(err); }`, 0},
		{"error rethrown", `try { x(); } catch (err) { throw err; }`, 0},
		{"error wrapped", `try { x(); } catch (err) { report({ cause: err }); }`, 0},
		{"error ignored", `try { x(); } catch (err) { cleanup(); }`, 1},
		{"no binding", `try { x(); } catch { cleanup(); }`, 0},
	}

	d := NewErrorHandlingDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns := runDetector(t, d, "a.js", tt.source)
			testutil.AssertPatternCount(t, patterns, domain.PatternSwallowedError, tt.want)
			testutil.AssertPatternCount(t, patterns, domain.PatternEmptyCatchBlock, 0)
		})
	}
}

func TestErrorHandlingMissingBoundary(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{
			"unprotected await",
			`async function load(url) { const res = await fetch(url); return res.json(); }`,
			1,
		},
		{
			"protected await",
			`async function load(url) { try { return await fetch(url); } catch (err) { log(err); } }`,
			0,
		},
		{
			"await in catch handler",
			`async function load(url) { try { run(); } catch (err) { await report(err); } }`,
			1,
		},
		{
			"nested async arrow counted separately",
			`async function outer() { try { await a(); } catch (err) { log(err); } const f = async () => { await b(); }; }`,
			1,
		},
		{
			"sync function",
			`function load() { return fetch(url); }`,
			0,
		},
	}

	d := NewErrorHandlingDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns := runDetector(t, d, "a.js", tt.source)
			testutil.AssertPatternCount(t, patterns, domain.PatternMissingErrorBoundary, tt.want)
		})
	}
}

func TestErrorHandlingGenericMessages(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{"thrown error", `throw new Error("Something went wrong");`, 1},
		{"thrown string", `function f() { throw "Oops!"; }`, 1},
		{"custom error class", `throw new ValidationError("Invalid input");`, 0},
		{"reject", `new Promise((resolve, reject) => reject("error"));`, 1},
		{"inside catch", `try { x(); } catch (err) { notify("An error occurred", err); }`, 1},
		{"specific message", `throw new Error("Failed to parse config file header");`, 0},
		{"not an error context", `console.log("error");`, 0},
		{"custom error class with generic text", `throw new ApiError("Something went wrong");`, 1},
		{"error called without new", `const e = Error("Something went wrong");`, 1},
		{"logging helper", `logError("failed");`, 0},
		{"ui helper", `showError("Something went wrong");`, 0},
	}

	d := NewErrorHandlingDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns := runDetector(t, d, "a.js", tt.source)
			testutil.AssertPatternCount(t, patterns, domain.PatternGenericErrorMessage, tt.want)
		})
	}
}

func TestErrorHandlingTryFinally(t *testing.T) {
	patterns := runDetector(t, NewErrorHandlingDetector(), "a.js", `try { run(); } finally { done(); }`)

	found := testutil.AssertPatternCount(t, patterns, domain.PatternTryWithoutCatch, 1)
	if len(found) == 1 && found[0].Severity != domain.SeverityInfo {
		t.Errorf("Expected info severity, got %s", found[0].Severity)
	}

	patterns = runDetector(t, NewErrorHandlingDetector(), "a.js", `try { count = 1; } finally { done(); }`)
	testutil.AssertPatternCount(t, patterns, domain.PatternTryWithoutCatch, 0)
}

func TestErrorHandlingTryWithoutHandler(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		source string
		line   int
	}{
		{"top level", "a.js", "try { x(); }", 1},
		{"inside function body", "a.js", "function load() {\n  try {\n    x();\n  }\n}", 2},
		{"followed by more code", "a.js", "try { x(); }\nconst total = sum();", 1},
		{"typescript file", "a.ts", "const limit: number = 3;\ntry { x(limit); }", 2},
		{"tsx file", "a.tsx", "export function run(): void {\n  try { x(); }\n}", 2},
	}

	d := NewErrorHandlingDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns := runDetector(t, d, tt.path, tt.source)
			found := testutil.AssertPatternCount(t, patterns, domain.PatternTryWithoutCatch, 1)
			if len(found) != 1 {
				return
			}
			if found[0].Severity != domain.SeverityCritical {
				t.Errorf("Expected critical severity, got %s", found[0].Severity)
			}
			if found[0].Location.StartLine != tt.line {
				t.Errorf("Expected line %d, got %d", tt.line, found[0].Location.StartLine)
			}
		})
	}
}

func TestIsGenericMessage(t *testing.T) {
	phrases := DefaultSettings().GenericErrorMessages
	tests := []struct {
		message string
		want    bool
	}{
		{"Something went wrong", true},
		{"something went wrong!", true},
		{"Request failed", true},
		{"Network error", true},
		{"Could not connect to the billing database", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isGenericMessage(tt.message, phrases); got != tt.want {
			t.Errorf("isGenericMessage(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}
