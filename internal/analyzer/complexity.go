package analyzer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/vibescan/internal/parser"
)

// ComplexityResult holds cyclomatic complexity metrics for a function or method
type ComplexityResult struct {
	Complexity        int
	FunctionName      string
	StartLine         int
	EndLine           int
	NestingDepth      int
	IfStatements      int
	LoopStatements    int
	ExceptionHandlers int
	SwitchCases       int
	LogicalOperators  int
	TernaryOperators  int
	RiskLevel         string
}

// Risk levels derived from the complexity thresholds
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Breakdown lists the non-zero decision point counts, e.g. "4 if, 1 loop"
func (cr *ComplexityResult) Breakdown() string {
	parts := make([]string, 0, 6)
	for _, c := range []struct {
		n    int
		name string
	}{
		{cr.IfStatements, "if"},
		{cr.LoopStatements, "loop"},
		{cr.SwitchCases, "case"},
		{cr.ExceptionHandlers, "catch"},
		{cr.TernaryOperators, "ternary"},
		{cr.LogicalOperators, "&&/||"},
	} {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.name))
		}
	}
	if len(parts) == 0 {
		return "no branches"
	}
	return strings.Join(parts, ", ")
}

// CalculateComplexity computes cyclomatic complexity as 1 plus the number of
// decision points among all descendants of fn, nested functions included.
func CalculateComplexity(fn *parser.Node, settings *Settings) *ComplexityResult {
	if settings == nil {
		settings = DefaultSettings()
	}
	result := &ComplexityResult{Complexity: 1, RiskLevel: RiskLow}
	if fn == nil {
		return result
	}

	result.FunctionName = fn.FunctionName()
	result.StartLine = fn.Location.StartLine
	result.EndLine = fn.Location.EndLine

	for _, n := range fn.Descendants() {
		switch n.Type {
		case parser.NodeIfStatement:
			result.IfStatements++
		case parser.NodeForStatement, parser.NodeForInStatement, parser.NodeForOfStatement,
			parser.NodeWhileStatement, parser.NodeDoWhileStatement:
			result.LoopStatements++
		case parser.NodeCaseClause:
			result.SwitchCases++
		case parser.NodeCatchClause:
			result.ExceptionHandlers++
		case parser.NodeConditionalExpression:
			result.TernaryOperators++
		case parser.NodeLogicalExpression:
			if n.Operator == "&&" || n.Operator == "||" {
				result.LogicalOperators++
			}
		}
	}

	result.Complexity += result.IfStatements + result.LoopStatements + result.SwitchCases +
		result.ExceptionHandlers + result.TernaryOperators + result.LogicalOperators
	result.NestingDepth = CalculateNestingDepth(fn)
	result.RiskLevel = determineRiskLevel(result.Complexity, settings)
	return result
}

func determineRiskLevel(complexity int, settings *Settings) string {
	if complexity > settings.ComplexityCritical {
		return RiskHigh
	} else if complexity >= settings.ComplexityWarning {
		return RiskMedium
	}
	return RiskLow
}

// CalculateNestingDepth returns the deepest chain of nested control
// structures inside fn, not counting nested functions. An else-if continues
// its chain at the same depth.
func CalculateNestingDepth(fn *parser.Node) int {
	if fn == nil {
		return 0
	}
	body := fn.Body()
	if body == nil {
		return 0
	}
	return nestingDepth(body, 0)
}

func nestingDepth(n *parser.Node, depth int) int {
	if n.IsFunction() {
		return depth
	}
	if isControlStructure(n) && !isElseIf(n) {
		depth++
	}
	deepest := depth
	for _, child := range n.Children {
		if child.IsFunction() {
			continue
		}
		if d := nestingDepth(child, depth); d > deepest {
			deepest = d
		}
	}
	return deepest
}

func isControlStructure(node *parser.Node) bool {
	switch node.Type {
	case parser.NodeIfStatement, parser.NodeSwitchStatement,
		parser.NodeForStatement, parser.NodeForInStatement, parser.NodeForOfStatement,
		parser.NodeWhileStatement, parser.NodeDoWhileStatement,
		parser.NodeTryStatement:
		return true
	}
	return false
}

func isElseIf(node *parser.Node) bool {
	return node.Type == parser.NodeIfStatement && node.Parent != nil && node.Parent.Type == parser.NodeElseClause
}
