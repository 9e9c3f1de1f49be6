package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/parser"
)

// CodeQualityDetectorID identifies the code quality detector
const CodeQualityDetectorID = "code-quality"

// Consecutive commented code lines needed before a block is reported
const minCommentedCodeRun = 3

// Numbers readers recognize without a name
var allowedNumbers = map[float64]struct{}{
	0: {}, 1: {}, 2: {}, -1: {}, 100: {}, 1000: {}, 60: {}, 24: {}, 365: {},
}

var roundLargeNumbers = map[float64]struct{}{100: {}, 1000: {}, 10000: {}}

var (
	todoMarker      = regexp.MustCompile(`(?://|/\*|^\s*\*)[^\n]*?\b(TODO|FIXME|XXX|HACK|BUG)\b:?(.*)$`)
	vagueTodoText   = regexp.MustCompile(`(?i)^(fix|do|implement|add|remove|update|change|handle|check|refactor|cleanup|clean up)(\s+(this|it|me|later|here))?\s*[.!]*$`)
	notImplemented  = regexp.MustCompile("(?i)throw\\s+new\\s+Error\\s*\\(\\s*[\"'`][^\"'`]*not\\s+implemented")
	placeholderTodo = regexp.MustCompile(`(?i)TODO:?\s*(implement|add|fix|complete)`)

	commentedCodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^//\s*(const|let|var|function|if|for|while|return|import|export|class|switch|try|await|async)\b`),
		regexp.MustCompile(`^//\s*[\w$.\[\]]+\s*(=|\+=|-=)\s*[^=].*$`),
		regexp.MustCompile(`^//\s*[}\])]+;?\s*$`),
		regexp.MustCompile(`^//\s*[\w$]+(\.[\w$]+)*\(.*\)\s*;?\s*$`),
		regexp.MustCompile(`^//.*;\s*$`),
	}
)

// CodeQualityDetector reports maintainability smells: magic numbers, vague
// TODOs, commented-out code, complex or oversized functions and stubs
type CodeQualityDetector struct{}

// NewCodeQualityDetector creates a code quality detector
func NewCodeQualityDetector() *CodeQualityDetector {
	return &CodeQualityDetector{}
}

func (d *CodeQualityDetector) ID() string { return CodeQualityDetectorID }

func (d *CodeQualityDetector) Patterns() []domain.PatternType {
	return []domain.PatternType{
		domain.PatternMagicNumber,
		domain.PatternTodoWithoutContext,
		domain.PatternCommentedOutCode,
		domain.PatternOverlyComplexFunction,
		domain.PatternPlaceholderImplementation,
		domain.PatternDeepNesting,
		domain.PatternLongFunction,
	}
}

func (d *CodeQualityDetector) Languages() []domain.Language { return bothLanguages }

func (d *CodeQualityDetector) Analyze(source, path string, settings *Settings) ([]domain.PatternRecord, error) {
	ast, err := parseSource(source, path)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = DefaultSettings()
	}

	var patterns []domain.PatternRecord
	for _, lit := range collect(ast, parser.NodeNumberLiteral) {
		if p, ok := d.checkMagicNumber(lit, path); ok {
			patterns = append(patterns, p)
		}
	}

	lines := sourceLines(source)
	patterns = append(patterns, d.checkTodos(lines, path)...)
	patterns = append(patterns, d.checkCommentedCode(lines, path)...)

	for _, fn := range functionNodes(ast) {
		patterns = append(patterns, d.checkFunction(fn, path, settings)...)
	}
	return patterns, nil
}

func (d *CodeQualityDetector) checkMagicNumber(lit *parser.Node, path string) (domain.PatternRecord, bool) {
	value, ok := parseNumber(lit.Text)
	if !ok {
		return domain.PatternRecord{}, false
	}

	node := lit
	if parent := lit.Parent; parent != nil && parent.Type == parser.NodeUnaryExpression && parent.Operator == "-" {
		value = -value
		node = parent
	}

	if _, allowed := allowedNumbers[value]; allowed {
		return domain.PatternRecord{}, false
	}
	if !isSuspiciousNumber(value) || isNamedNumberContext(node) {
		return domain.PatternRecord{}, false
	}

	p := newNodePattern(d.ID(), domain.PatternMagicNumber, path, node)
	if stmt := enclosingStatement(node); stmt != nil {
		p.CodeSnippet = snippet(firstLine(stmt.Text))
	}
	p.Description = fmt.Sprintf("Magic number %s", node.Text)
	p.Explanation = "Unnamed numeric literals hide their meaning and must be updated everywhere they are repeated."
	p.Suggestion = "Extract the value into a named constant, e.g. const MAX_RETRIES = " + node.Text
	p.Confidence = 0.6
	return p, true
}

// isSuspiciousNumber flags non-round values strictly between 2 and 100 and
// large values other than 100, 1000 and 10000
func isSuspiciousNumber(v float64) bool {
	if v > 2 && v < 100 {
		return v != math.Trunc(v) || math.Mod(v, 10) != 0
	}
	if v >= 100 {
		_, round := roundLargeNumbers[v]
		return !round
	}
	return false
}

// isNamedNumberContext reports positions where a literal already has a name
// or an obvious role
func isNamedNumberContext(node *parser.Node) bool {
	parent := node.Parent
	if parent == nil {
		return false
	}
	switch parent.Type {
	case parser.NodeSubscriptExpression:
		return node.Field == "index"
	case parser.NodeCaseClause:
		return node.Field == "value"
	case parser.NodeProperty:
		return node.Field == "value"
	case parser.NodeVariableDeclarator:
		decl := parent.Parent
		return decl != nil && decl.Kind == "const" && isDescriptiveName(parent.Name)
	case "enum_assignment":
		return true
	}
	return node.Ancestor(func(p *parser.Node) bool { return p.TSType == "literal_type" }) != nil
}

func isDescriptiveName(name string) bool {
	return len(name) > 3 || strings.ContainsAny(name, "_ABCDEFGHIJKLMNOPQRSTUVWXYZ")
}

// parseNumber understands decimal, hex, octal, binary, separators and BigInt
func parseNumber(text string) (float64, bool) {
	text = strings.TrimSuffix(strings.ReplaceAll(text, "_", ""), "n")
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		v, err := strconv.ParseInt(lower, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(v), true
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func enclosingStatement(n *parser.Node) *parser.Node {
	for p := n; p != nil; p = p.Parent {
		if p.IsStatement() && p.Type != parser.NodeBlockStatement {
			return p
		}
	}
	return nil
}

func (d *CodeQualityDetector) checkTodos(lines []string, path string) []domain.PatternRecord {
	var patterns []domain.PatternRecord
	for i, line := range lines {
		m := todoMarker.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[2]), "*/"))
		if len(text) > 10 && !vagueTodoText.MatchString(text) {
			continue
		}

		p := newLinePattern(d.ID(), domain.PatternTodoWithoutContext, path, i+1, i+1, strings.TrimSpace(line))
		p.Description = fmt.Sprintf("%s comment without context", m[1])
		p.Explanation = "A marker with no description does not tell the next reader what is missing or why."
		p.Suggestion = fmt.Sprintf("Describe the remaining work, e.g. // %s: retry on 429 once the API exposes Retry-After", m[1])
		p.Confidence = 0.8
		patterns = append(patterns, p)
	}
	return patterns
}

func (d *CodeQualityDetector) checkCommentedCode(lines []string, path string) []domain.PatternRecord {
	var patterns []domain.PatternRecord
	runStart := -1

	flush := func(end int) {
		if runStart >= 0 && end-runStart >= minCommentedCodeRun {
			text := strings.Join(trimAll(lines[runStart:end]), "\n")
			p := newLinePattern(d.ID(), domain.PatternCommentedOutCode, path, runStart+1, end, text)
			p.Description = fmt.Sprintf("%d lines of commented-out code", end-runStart)
			p.Explanation = "Dead code in comments rots quickly and confuses readers; version control already keeps the history."
			p.Suggestion = "Delete the commented code"
			p.Confidence = 0.7
			patterns = append(patterns, p)
		}
		runStart = -1
	}

	for i, line := range lines {
		if isCommentedCode(strings.TrimSpace(line)) {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i)
	}
	flush(len(lines))
	return patterns
}

func isCommentedCode(line string) bool {
	if !strings.HasPrefix(line, "//") || strings.HasPrefix(line, "///") {
		return false
	}
	for _, re := range commentedCodePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func trimAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimSpace(l)
	}
	return out
}

func (d *CodeQualityDetector) checkFunction(fn *parser.Node, path string, settings *Settings) []domain.PatternRecord {
	var patterns []domain.PatternRecord
	name := fn.FunctionName()
	header := snippet(firstLine(fn.Text))

	metrics := CalculateComplexity(fn, settings)
	if metrics.RiskLevel != RiskLow {
		p := newNodePattern(d.ID(), domain.PatternOverlyComplexFunction, path, fn)
		p.CodeSnippet = header
		if metrics.RiskLevel == RiskHigh {
			p.Severity = domain.SeverityCritical
		}
		p.Description = fmt.Sprintf("Function '%s' has cyclomatic complexity %d (%s risk)", name, metrics.Complexity, metrics.RiskLevel)
		p.Explanation = fmt.Sprintf("Every branch adds a path that has to be understood and tested (%s). "+
			"Highly branched functions are where bugs hide.", metrics.Breakdown())
		p.Suggestion = "Split the function into smaller helpers or replace branching with lookup tables and early returns"
		p.Confidence = 0.9
		patterns = append(patterns, p)
	}

	if metrics.NestingDepth > settings.MaxNestingDepth {
		p := newNodePattern(d.ID(), domain.PatternDeepNesting, path, fn)
		p.CodeSnippet = header
		p.Description = fmt.Sprintf("Function '%s' nests control flow %d levels deep", name, metrics.NestingDepth)
		p.Explanation = "Deeply nested blocks force readers to track many conditions at once."
		p.Suggestion = "Use guard clauses and extract inner blocks into functions"
		p.Confidence = 0.85
		patterns = append(patterns, p)
	}

	if lines := fn.Location.EndLine - fn.Location.StartLine + 1; lines > settings.MaxFunctionLines {
		p := newNodePattern(d.ID(), domain.PatternLongFunction, path, fn)
		p.CodeSnippet = header
		p.Description = fmt.Sprintf("Function '%s' is %d lines long", name, lines)
		p.Explanation = "Long functions usually do several things and are hard to test in isolation."
		p.Suggestion = fmt.Sprintf("Break the function into pieces under %d lines", settings.MaxFunctionLines)
		p.Confidence = 0.8
		patterns = append(patterns, p)
	}

	return append(patterns, d.checkPlaceholder(fn, path, name, header)...)
}

func (d *CodeQualityDetector) checkPlaceholder(fn *parser.Node, path, name, header string) []domain.PatternRecord {
	body := fn.Body()
	if body == nil || body.Type != parser.NodeBlockStatement {
		return nil
	}

	var patterns []domain.PatternRecord
	newPlaceholder := func(description string) domain.PatternRecord {
		p := newNodePattern(d.ID(), domain.PatternPlaceholderImplementation, path, fn)
		p.CodeSnippet = header
		p.Description = description
		p.Explanation = "Stub implementations compile and pass review easily but fail at runtime or silently do nothing."
		p.Suggestion = "Implement the function or remove it until it is needed"
		return p
	}

	if notImplemented.MatchString(body.Text) {
		p := newPlaceholder(fmt.Sprintf("Function '%s' throws a not-implemented error", name))
		p.Severity = domain.SeverityCritical
		p.Confidence = 0.95
		patterns = append(patterns, p)
	}

	if placeholderTodo.MatchString(body.Text) {
		p := newPlaceholder(fmt.Sprintf("Function '%s' contains an unfinished TODO", name))
		p.Confidence = 0.8
		patterns = append(patterns, p)
	}

	if len(meaningfulStatements(body)) == 0 && !isInlineCallback(fn) {
		p := newPlaceholder(fmt.Sprintf("Function '%s' has an empty body", name))
		p.Confidence = 0.7
		patterns = append(patterns, p)
	}
	return patterns
}

// isInlineCallback reports arrow functions passed as arguments or used as
// object property values, where an empty body is a deliberate no-op
func isInlineCallback(fn *parser.Node) bool {
	if fn.Type != parser.NodeArrowFunction || fn.Parent == nil {
		return false
	}
	switch fn.Parent.Type {
	case parser.NodeArguments:
		return true
	case parser.NodeProperty:
		return fn.Field == "value"
	}
	return false
}
