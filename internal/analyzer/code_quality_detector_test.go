package analyzer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/testutil"
)

// branchyFunction has four nested ifs plus a loop around a four-case switch
const branchyFunction = `function route(a, b, c, d, items, kind) {
  if (a) {
    if (b) {
      if (c) {
        if (d) {
          return 1;
        }
      }
    }
  }
  for (const item of items) {
    switch (kind) {
      case 'a': break;
      case 'b': break;
      case 'c': break;
      case 'd': break;
    }
  }
  return 0;
}`

func TestCodeQualityMagicNumbers(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{"unnamed multiplier", `const total = price * 42;`, 1},
		{"large timeout", `setTimeout(refresh, 3600);`, 1},
		{"negative one", `const last = items.at(-1);`, 0},
		{"negative outside the range", `move(-17);`, 0},
		{"allowed values", `const r = a * 2 + b * 100 + c * 60 + d * 24 - 1;`, 0},
		{"round number", `const r = a * 50;`, 0},
		{"small values", `const r = a * 0.5;`, 0},
		{"named constant", `const MAX_RETRIES = 42;`, 0},
		{"array index", `const third = items[7];`, 0},
		{"switch case", `switch (code) { case 42: break; }`, 0},
		{"object property", `const opts = { port: 8080 };`, 0},
		{"hex literal", `const mask = flags & 0xff;`, 1},
	}

	d := NewCodeQualityDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns := runDetector(t, d, "a.js", tt.source)
			testutil.AssertPatternCount(t, patterns, domain.PatternMagicNumber, tt.want)
		})
	}
}

func TestCodeQualityTodos(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{"bare todo", "// TODO\nrun();", 1},
		{"vague todo", "// TODO: fix this\nrun();", 1},
		{"fixme", "/* FIXME */\nrun();", 1},
		{"with context", "// TODO: retry on 429 once the API exposes Retry-After\nrun();", 0},
		{"identifier not comment", "const TODO = 1;", 0},
	}

	d := NewCodeQualityDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns := runDetector(t, d, "a.js", tt.source)
			testutil.AssertPatternCount(t, patterns, domain.PatternTodoWithoutContext, tt.want)
		})
	}
}

func TestCodeQualityCommentedOutCode(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{
			"three lines",
			"// const a = load();\n// const b = a + 1;\n// return b;\nrun();",
			1,
		},
		{
			"two lines",
			"// const a = load();\n// return a;\nrun();",
			0,
		},
		{
			"prose",
			"// This module loads the user profile\n// and caches it for the session\n// until logout\nrun();",
			0,
		},
	}

	d := NewCodeQualityDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns := runDetector(t, d, "a.js", tt.source)
			found := testutil.AssertPatternCount(t, patterns, domain.PatternCommentedOutCode, tt.want)
			for _, p := range found {
				if p.Location.StartLine != 1 || p.Location.EndLine != 3 {
					t.Errorf("Expected lines 1-3, got %d-%d", p.Location.StartLine, p.Location.EndLine)
				}
			}
		})
	}
}

func TestCodeQualityComplexFunction(t *testing.T) {
	patterns := runDetector(t, NewCodeQualityDetector(), "a.js", branchyFunction)

	found := testutil.AssertPatternCount(t, patterns, domain.PatternOverlyComplexFunction, 1)
	if len(found) == 0 {
		return
	}
	if found[0].Severity != domain.SeverityWarning {
		t.Errorf("Expected warning severity, got %s", found[0].Severity)
	}
	if !strings.Contains(found[0].Description, "route") || !strings.Contains(found[0].Description, "medium risk") {
		t.Errorf("Expected description to name the function and its risk, got %q", found[0].Description)
	}
	if !strings.Contains(found[0].Explanation, "4 case") {
		t.Errorf("Expected explanation to carry the branch breakdown, got %q", found[0].Explanation)
	}
}

func TestCodeQualityCriticalComplexity(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("function dispatch(flags) {\n")
	for i := 0; i < 21; i++ {
		fmt.Fprintf(&sb, "  if (flags.f%d) { handleFlag(flags.f%d); }\n", i, i)
	}
	sb.WriteString("}\n")

	patterns := runDetector(t, NewCodeQualityDetector(), "a.js", sb.String())
	found := testutil.AssertPatternCount(t, patterns, domain.PatternOverlyComplexFunction, 1)
	if len(found) == 1 && found[0].Severity != domain.SeverityCritical {
		t.Errorf("Expected critical severity, got %s", found[0].Severity)
	}
	if len(found) == 1 && !strings.Contains(found[0].Description, "high risk") {
		t.Errorf("Expected high risk in description, got %q", found[0].Description)
	}
}

func TestCodeQualityDeepNesting(t *testing.T) {
	source := `function deep(a) {
  if (a.b) {
    for (const c of a.list) {
      while (c.next) {
        if (c.ok) {
          try {
            c.run();
          } catch (err) {
            log(err);
          }
        }
      }
    }
  }
}`
	patterns := runDetector(t, NewCodeQualityDetector(), "a.js", source)
	testutil.AssertPatternCount(t, patterns, domain.PatternDeepNesting, 1)

	patterns = runDetector(t, NewCodeQualityDetector(), "a.js", branchyFunction)
	testutil.AssertPatternCount(t, patterns, domain.PatternDeepNesting, 0)
}

func TestCodeQualityLongFunction(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("function migrate() {\n")
	for i := 0; i < 60; i++ {
		sb.WriteString("  step();\n")
	}
	sb.WriteString("}\n")

	patterns := runDetector(t, NewCodeQualityDetector(), "a.js", sb.String())
	found := testutil.AssertPatternCount(t, patterns, domain.PatternLongFunction, 1)
	if len(found) == 1 && found[0].Severity != domain.SeverityInfo {
		t.Errorf("Expected info severity, got %s", found[0].Severity)
	}
}

func TestCodeQualityPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		want     int
		severity domain.Severity
	}{
		{"not implemented", `function save() { throw new Error("Not implemented"); }`, 1, domain.SeverityCritical},
		{"empty function", `function load() {}`, 1, domain.SeverityWarning},
		{"empty method", `class Store { load() {} }`, 1, domain.SeverityWarning},
		{"empty arrow argument", `items.forEach(() => {});`, 0, ""},
		{"empty arrow property", `const handlers = { onClose: () => {} };`, 0, ""},
		{"real implementation", `function add(a, b) { return a + b; }`, 0, ""},
	}

	d := NewCodeQualityDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns := runDetector(t, d, "a.js", tt.source)
			found := testutil.AssertPatternCount(t, patterns, domain.PatternPlaceholderImplementation, tt.want)
			for _, p := range found {
				if p.Severity != tt.severity {
					t.Errorf("Expected %s severity, got %s", tt.severity, p.Severity)
				}
			}
		})
	}
}

func TestCodeQualityTodoPlaceholder(t *testing.T) {
	source := "function sync() {\n  // TODO: implement sync\n}"
	patterns := runDetector(t, NewCodeQualityDetector(), "a.js", source)

	// One record for the TODO, one for the empty body
	testutil.AssertPatternCount(t, patterns, domain.PatternPlaceholderImplementation, 2)
	testutil.AssertPatternCount(t, patterns, domain.PatternTodoWithoutContext, 0)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"42", 42},
		{"3.14", 3.14},
		{"1_000", 1000},
		{"0xff", 255},
		{"0b101", 5},
		{"10n", 10},
		{"1e3", 1000},
	}
	for _, tt := range tests {
		got, ok := parseNumber(tt.text)
		if !ok || got != tt.want {
			t.Errorf("parseNumber(%s) = %v, %v; want %v", tt.text, got, ok, tt.want)
		}
	}
}
