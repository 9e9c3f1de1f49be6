package analyzer

import (
	"regexp"
	"strings"
	"testing"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/parser"
	"github.com/ludo-technologies/vibescan/internal/testutil"
)

func TestResolveSettingsMergesUserLists(t *testing.T) {
	settings, err := ResolveSettings(domain.DetectorSettings{
		GenericNames:         []string{"Payload", "data"},
		LoopVariables:        []string{"idx"},
		CoordinateVariables:  []string{"lat"},
		GenericErrorMessages: []string{"Bad Things"},
	})
	testutil.AssertNoError(t, err)

	for _, name := range []string{"data", "payload", "result"} {
		if !inSet(settings.GenericNames, name) {
			t.Errorf("Expected %s in generic names", name)
		}
	}
	if !inSet(settings.LoopVariables, "i") || !inSet(settings.LoopVariables, "IDX") {
		t.Error("Expected built-in and user loop variables")
	}
	if !inSet(settings.CoordinateVariables, "lat") || !inSet(settings.CoordinateVariables, "x") {
		t.Error("Expected built-in and user coordinate variables")
	}

	found := false
	for _, msg := range settings.GenericErrorMessages {
		if msg == "bad things" {
			found = true
		}
	}
	if !found {
		t.Error("Expected user error message to be lower-cased and merged")
	}

	if len(settings.SecretPatterns) != len(builtinSecretPatterns) {
		t.Errorf("Expected %d secret patterns, got %d", len(builtinSecretPatterns), len(settings.SecretPatterns))
	}
}

func TestResolveSettingsThresholds(t *testing.T) {
	settings := DefaultSettings()
	testutil.AssertEqual(t, DefaultComplexityWarning, settings.ComplexityWarning)
	testutil.AssertEqual(t, DefaultComplexityCritical, settings.ComplexityCritical)
	testutil.AssertEqual(t, DefaultMaxNestingDepth, settings.MaxNestingDepth)
	testutil.AssertEqual(t, DefaultMaxFunctionLines, settings.MaxFunctionLines)

	custom, err := ResolveSettings(domain.DetectorSettings{ComplexityWarning: 5, MaxFunctionLines: 30})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 5, custom.ComplexityWarning)
	testutil.AssertEqual(t, 30, custom.MaxFunctionLines)

	_, err = ResolveSettings(domain.DetectorSettings{ComplexityWarning: 30, ComplexityCritical: 20})
	testutil.AssertError(t, err)
}

func TestResolveSettingsInvalidRegex(t *testing.T) {
	_, err := ResolveSettings(domain.DetectorSettings{SecretPatterns: []string{"([unclosed"}})
	testutil.AssertError(t, err)
}

func TestNewPatternID(t *testing.T) {
	id := newPatternID("naming", "src/a.js", 12)
	if !regexp.MustCompile(`^naming-src/a\.js-12-[0-9a-f]{8}$`).MatchString(id) {
		t.Errorf("Unexpected ID format: %s", id)
	}
	if other := newPatternID("naming", "src/a.js", 12); other == id {
		t.Error("Expected unique IDs for the same location")
	}
}

func TestSnippetTruncation(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := snippet(long)
	if len(got) > maxSnippetWidth {
		t.Errorf("Expected snippet width <= %d, got %d", maxSnippetWidth, len(got))
	}

	multi := snippet("a\nb\nc\nd\ne")
	if lines := strings.Split(multi, "\n"); len(lines) != maxSnippetLines+1 || lines[maxSnippetLines] != "..." {
		t.Errorf("Expected %d lines plus ellipsis, got %q", maxSnippetLines, multi)
	}
}

func TestNewNodePatternLocation(t *testing.T) {
	ast := testutil.CreateTestAST(t, "\n  call();")
	var call *parser.Node
	ast.Walk(func(n *parser.Node) bool {
		if n.Type == parser.NodeCallExpression {
			call = n
		}
		return true
	})
	if call == nil {
		t.Fatal("Expected a call expression")
	}

	p := newNodePattern("test", domain.PatternUnsafeEval, "a.js", call)
	testutil.AssertEqual(t, 2, p.Location.StartLine)
	testutil.AssertEqual(t, 3, p.Location.StartColumn)
	testutil.AssertEqual(t, domain.SeverityCritical, p.Severity)
	testutil.AssertEqual(t, "call()", p.CodeSnippet)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want domain.Language
	}{
		{"a.js", domain.LanguageJavaScript},
		{"a.jsx", domain.LanguageJavaScript},
		{"a.mjs", domain.LanguageJavaScript},
		{"a.cjs", domain.LanguageJavaScript},
		{"a.ts", domain.LanguageTypeScript},
		{"a.TSX", domain.LanguageTypeScript},
		{"a.mts", domain.LanguageTypeScript},
		{"a.cts", domain.LanguageTypeScript},
		{"a.py", ""},
		{"Makefile", ""},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.path); got != tt.want {
			t.Errorf("DetectLanguage(%s) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
