// Package testutil provides helper functions for testing vibescan components
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/parser"
)

// CreateTestAST parses JavaScript source, failing the test on error
func CreateTestAST(t *testing.T, source string) *parser.Node {
	t.Helper()
	return parseWith(t, parser.NewParser(), source)
}

// CreateTestTSAST parses TypeScript source, failing the test on error
func CreateTestTSAST(t *testing.T, source string) *parser.Node {
	t.Helper()
	return parseWith(t, parser.NewTypeScriptParser(), source)
}

func parseWith(t *testing.T, p *parser.Parser, source string) *parser.Node {
	t.Helper()
	defer p.Close()

	ast, err := p.ParseString(source)
	if err != nil {
		t.Fatalf("Failed to parse test code: %v", err)
	}
	return ast
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertEqual fails the test if expected != actual
func AssertEqual(t *testing.T, expected, actual any) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected %v, got %v", expected, actual)
	}
}

// FindFunctionInAST finds the first function node with the given name
func FindFunctionInAST(ast *parser.Node, name string) *parser.Node {
	var found *parser.Node
	ast.Walk(func(n *parser.Node) bool {
		if found != nil {
			return false
		}
		if n.IsFunction() && n.FunctionName() == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// CountNodesOfType counts nodes of a specific type in an AST
func CountNodesOfType(ast *parser.Node, nodeType parser.NodeType) int {
	count := 0
	ast.Walk(func(n *parser.Node) bool {
		if n.Type == nodeType {
			count++
		}
		return true
	})
	return count
}

// FindPatterns returns the records of the given type
func FindPatterns(patterns []domain.PatternRecord, patternType domain.PatternType) []domain.PatternRecord {
	var out []domain.PatternRecord
	for _, p := range patterns {
		if p.Type == patternType {
			out = append(out, p)
		}
	}
	return out
}

// AssertPatternCount fails the test unless exactly want records have the type
func AssertPatternCount(t *testing.T, patterns []domain.PatternRecord, patternType domain.PatternType, want int) []domain.PatternRecord {
	t.Helper()
	found := FindPatterns(patterns, patternType)
	if len(found) != want {
		t.Errorf("Expected %d %s patterns, got %d: %+v", want, patternType, len(found), found)
	}
	return found
}

// WriteFile creates a file (and its parent directories) under dir
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
