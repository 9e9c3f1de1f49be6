package analyzer

import (
	"strings"
	"testing"

	"github.com/ludo-technologies/vibescan/internal/testutil"
)

func TestCalculateComplexity(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		funcName string
		expected int
	}{
		{
			name:     "straight line",
			code:     `function simple() { return 1; }`,
			funcName: "simple",
			expected: 1,
		},
		{
			name:     "if else",
			code:     `function check(a) { if (a) { return 1; } else { return 2; } }`,
			funcName: "check",
			expected: 2,
		},
		{
			name:     "else if chain",
			code:     `function grade(s) { if (s > 90) { return "A"; } else if (s > 80) { return "B"; } else { return "C"; } }`,
			funcName: "grade",
			expected: 3,
		},
		{
			name:     "logical operators",
			code:     `function ok(a, b, c) { return a && b || c; }`,
			funcName: "ok",
			expected: 3,
		},
		{
			name:     "nullish coalescing is not a branch",
			code:     `function pick(a, b) { return a ?? b; }`,
			funcName: "pick",
			expected: 1,
		},
		{
			name:     "ternary",
			code:     `function sign(n) { return n < 0 ? -1 : 1; }`,
			funcName: "sign",
			expected: 2,
		},
		{
			name:     "loops and catch",
			code:     `function run(xs) { for (const x of xs) { try { go(x); } catch (e) { log(e); } } while (more()) {} }`,
			funcName: "run",
			expected: 4,
		},
		{
			name:     "switch cases without default",
			code:     `function kind(k) { switch (k) { case 1: return "a"; case 2: return "b"; default: return "c"; } }`,
			funcName: "kind",
			expected: 3,
		},
		{
			name:     "nested function counted in outer",
			code:     `function outer(xs) { return xs.filter(function inner(x) { return x && x.ok; }); }`,
			funcName: "outer",
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast := testutil.CreateTestAST(t, tt.code)
			fn := testutil.FindFunctionInAST(ast, tt.funcName)
			if fn == nil {
				t.Fatalf("Function %s not found", tt.funcName)
			}
			result := CalculateComplexity(fn, nil)
			if result.Complexity != tt.expected {
				t.Errorf("Expected complexity %d, got %d (%v)", tt.expected, result.Complexity, result)
			}
		})
	}
}

func TestComplexityOfBranchyFunction(t *testing.T) {
	ast := testutil.CreateTestAST(t, branchyFunction)
	fn := testutil.FindFunctionInAST(ast, "route")
	if fn == nil {
		t.Fatal("Function route not found")
	}

	result := CalculateComplexity(fn, DefaultSettings())
	if result.Complexity < 10 {
		t.Errorf("Expected complexity >= 10, got %d", result.Complexity)
	}
	if result.SwitchCases != 4 || result.IfStatements != 4 || result.LoopStatements != 1 {
		t.Errorf("Unexpected breakdown: %s", result.Breakdown())
	}
	if got := result.Breakdown(); !strings.Contains(got, "4 if") || !strings.Contains(got, "4 case") {
		t.Errorf("Expected breakdown to list ifs and cases, got %q", got)
	}
	if result.RiskLevel != RiskMedium {
		t.Errorf("Expected medium risk, got %s", result.RiskLevel)
	}
}

func TestCalculateNestingDepth(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		funcName string
		expected int
	}{
		{"flat", `function f() { run(); }`, "f", 0},
		{"single if", `function f(a) { if (a) { run(); } }`, "f", 1},
		{"loop in if", `function f(a) { if (a) { for (;;) { run(); } } }`, "f", 2},
		{"else if stays flat", `function f(a) { if (a === 1) { x(); } else if (a === 2) { y(); } else if (a === 3) { z(); } }`, "f", 1},
		{"nested function ignored", `function f(a) { if (a) { return () => { if (a) { if (a) { run(); } } }; } }`, "f", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast := testutil.CreateTestAST(t, tt.code)
			fn := testutil.FindFunctionInAST(ast, tt.funcName)
			if fn == nil {
				t.Fatalf("Function %s not found", tt.funcName)
			}
			if got := CalculateNestingDepth(fn); got != tt.expected {
				t.Errorf("Expected depth %d, got %d", tt.expected, got)
			}
		})
	}
}
