package analyzer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/parser"
)

// NamingDetectorID identifies the naming detector
const NamingDetectorID = "naming"

// NamingConvention is the casing style of an identifier
type NamingConvention string

const (
	ConventionCamelCase      NamingConvention = "camelCase"
	ConventionPascalCase     NamingConvention = "PascalCase"
	ConventionSnakeCase      NamingConvention = "snake_case"
	ConventionScreamingSnake NamingConvention = "SCREAMING_SNAKE_CASE"
	ConventionUnknown        NamingConvention = ""
)

var (
	camelCasePattern      = regexp.MustCompile(`^[a-z][a-z0-9]*(?:[A-Z][a-z0-9]*)+$`)
	pascalCasePattern     = regexp.MustCompile(`^[A-Z][a-z0-9]+(?:[A-Z][a-z0-9]*)*$`)
	snakeCasePattern      = regexp.MustCompile(`^[a-z][a-z0-9]*(?:_[a-z0-9]+)+$`)
	screamingSnakePattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*(?:_[A-Z0-9]+)+$`)
)

// ClassifyConvention returns the casing style of name. Single lower-case
// words fit both camelCase and snake_case and are left unclassified.
func ClassifyConvention(name string) NamingConvention {
	switch {
	case camelCasePattern.MatchString(name):
		return ConventionCamelCase
	case pascalCasePattern.MatchString(name):
		return ConventionPascalCase
	case snakeCasePattern.MatchString(name):
		return ConventionSnakeCase
	case screamingSnakePattern.MatchString(name):
		return ConventionScreamingSnake
	}
	return ConventionUnknown
}

// Callbacks of these array methods commonly use short parameter names
var iterationMethods = map[string]struct{}{
	"map": {}, "filter": {}, "forEach": {}, "reduce": {},
	"find": {}, "some": {}, "every": {},
}

var genericFunctionNames = map[string]struct{}{
	"handle": {}, "process": {}, "run": {}, "execute": {}, "dostuff": {},
	"dosomething": {}, "doit": {}, "dowork": {}, "handledata": {},
	"handlestuff": {}, "handleit": {}, "processdata": {}, "processitem": {},
	"processitems": {}, "processstuff": {}, "helper": {}, "myfunction": {},
	"func": {}, "foo": {}, "bar": {}, "baz": {}, "temp": {},
}

// Prefixes stripped from a callee name when proposing a variable name
var (
	accessorPrefixes = []string{"get", "fetch"}
	verbPrefixes     = []string{"get", "fetch", "load", "read", "find", "create", "build", "parse", "compute", "calculate"}
)

// NamingDetector reports generic identifiers and mixed naming conventions
type NamingDetector struct{}

// NewNamingDetector creates a naming detector
func NewNamingDetector() *NamingDetector {
	return &NamingDetector{}
}

func (d *NamingDetector) ID() string { return NamingDetectorID }

func (d *NamingDetector) Patterns() []domain.PatternType {
	return []domain.PatternType{
		domain.PatternGenericVariableName,
		domain.PatternGenericFunctionName,
		domain.PatternInconsistentNaming,
	}
}

func (d *NamingDetector) Languages() []domain.Language { return bothLanguages }

// binding is one declared variable name in source order
type binding struct {
	name  *parser.Node
	owner *parser.Node
}

func (d *NamingDetector) Analyze(source, path string, settings *Settings) ([]domain.PatternRecord, error) {
	ast, err := parseSource(source, path)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = DefaultSettings()
	}

	var patterns []domain.PatternRecord
	var declared []binding

	ast.Walk(func(n *parser.Node) bool {
		switch n.Type {
		case parser.NodeVariableDeclarator:
			nameNode := n.ChildByField("name")
			if nameNode == nil {
				return true
			}
			switch nameNode.Type {
			case parser.NodeIdentifier:
				declared = append(declared, binding{name: nameNode, owner: n})
				if !isLoopHeaderDeclarator(n) {
					if p, ok := d.checkVariable(nameNode, n, path, settings); ok {
						patterns = append(patterns, p)
					}
				}
			case parser.NodeArrayPattern:
				for _, id := range patternIdentifiers(nameNode) {
					declared = append(declared, binding{name: id, owner: n})
					if len([]rune(id.Name)) == 1 || isLoopHeaderDeclarator(n) {
						continue
					}
					if p, ok := d.checkVariable(id, n, path, settings); ok {
						patterns = append(patterns, p)
					}
				}
			}

		case parser.NodeForInStatement, parser.NodeForOfStatement:
			// Loop bindings are exempt from the generic check but still
			// carry a convention
			if left := n.ChildByField("left"); left != nil && n.Kind != "" {
				for _, id := range patternIdentifiers(left) {
					declared = append(declared, binding{name: id, owner: n})
				}
			}

		case parser.NodeCatchClause:
			if param := n.ChildByField("parameter"); param != nil && param.Type == parser.NodeIdentifier {
				declared = append(declared, binding{name: param, owner: n})
				if !isErrorBindingName(param.Name) {
					if p, ok := d.checkVariable(param, n, path, settings); ok {
						patterns = append(patterns, p)
					}
				}
			}
		}

		if n.IsFunction() {
			patterns = append(patterns, d.checkParameters(n, path, settings)...)
			if p, ok := d.checkFunctionName(n, path); ok {
				patterns = append(patterns, p)
			}
		}
		return true
	})

	patterns = append(patterns, d.checkConventions(declared, path)...)
	return patterns, nil
}

// isGenericName reports whether name is vague enough to flag. Coordinate
// names are always allowed.
func isGenericName(name string, settings *Settings) bool {
	if inSet(settings.CoordinateVariables, name) {
		return false
	}
	if inSet(settings.GenericNames, name) {
		return true
	}
	return len([]rune(name)) == 1 && !inSet(settings.LoopVariables, name)
}

func (d *NamingDetector) checkVariable(nameNode, owner *parser.Node, path string, settings *Settings) (domain.PatternRecord, bool) {
	name := nameNode.Name
	if !isGenericName(name, settings) {
		return domain.PatternRecord{}, false
	}

	p := newNodePattern(d.ID(), domain.PatternGenericVariableName, path, owner)
	p.Description = fmt.Sprintf("Generic variable name '%s'", name)
	p.Explanation = "Names like data, result or temp say nothing about what the value holds, " +
		"which makes the surrounding code harder to read and review."
	p.Suggestion = suggestVariableName(name, owner.ChildByField("value"))
	p.Confidence = 0.8
	if len([]rune(name)) == 1 {
		p.Confidence = 0.6
	}
	return p, true
}

func (d *NamingDetector) checkParameters(fn *parser.Node, path string, settings *Settings) []domain.PatternRecord {
	if isIterationCallback(fn) {
		return nil
	}

	var patterns []domain.PatternRecord
	for _, param := range fn.Params() {
		id := parameterIdentifier(param)
		if id == nil || !isGenericName(id.Name, settings) {
			continue
		}
		p := newNodePattern(d.ID(), domain.PatternGenericVariableName, path, param)
		p.Description = fmt.Sprintf("Generic parameter name '%s'", id.Name)
		p.Explanation = "Parameter names document what a function expects. A vague name forces " +
			"readers to trace every caller to learn what is passed in."
		p.Suggestion = fmt.Sprintf("Rename '%s' after the role the argument plays in %s", id.Name, fn.FunctionName())
		p.Confidence = 0.7
		patterns = append(patterns, p)
	}
	return patterns
}

func (d *NamingDetector) checkFunctionName(fn *parser.Node, path string) (domain.PatternRecord, bool) {
	name := fn.Name
	if name == "" && fn.Parent != nil && fn.Parent.Type == parser.NodeVariableDeclarator {
		name = fn.Parent.Name
	}
	if name == "" {
		return domain.PatternRecord{}, false
	}
	if _, ok := genericFunctionNames[strings.ToLower(name)]; !ok {
		return domain.PatternRecord{}, false
	}

	p := newNodePattern(d.ID(), domain.PatternGenericFunctionName, path, fn)
	p.Location.EndLine = p.Location.StartLine
	p.CodeSnippet = snippet(firstLine(fn.Text))
	p.Description = fmt.Sprintf("Generic function name '%s'", name)
	p.Explanation = "A function named after a vague verb hides what it does; callers have to read its body to find out."
	p.Suggestion = "Name the function after its effect, e.g. validateOrder or sendWelcomeEmail"
	p.Confidence = 0.6
	return p, true
}

func (d *NamingDetector) checkConventions(declared []binding, path string) []domain.PatternRecord {
	counts := make(map[NamingConvention]int)
	var order []NamingConvention
	conventions := make([]NamingConvention, len(declared))

	for i, b := range declared {
		c := ClassifyConvention(b.name.Name)
		conventions[i] = c
		if c == ConventionUnknown {
			continue
		}
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}
	if len(order) < 2 {
		return nil
	}

	// Ties go to the convention seen first in source order
	dominant := order[0]
	for _, c := range order[1:] {
		if counts[c] > counts[dominant] {
			dominant = c
		}
	}

	var patterns []domain.PatternRecord
	for i, b := range declared {
		c := conventions[i]
		if c == ConventionUnknown || c == dominant {
			continue
		}
		p := newNodePattern(NamingDetectorID, domain.PatternInconsistentNaming, path, b.name)
		p.CodeSnippet = snippet(firstLine(b.owner.Text))
		p.Description = fmt.Sprintf("'%s' uses %s while this file mostly uses %s", b.name.Name, c, dominant)
		p.Explanation = "Mixing naming conventions in one file makes identifiers harder to predict and search for."
		p.Suggestion = fmt.Sprintf("Rename to %s", convertName(b.name.Name, dominant))
		p.Confidence = 0.7
		patterns = append(patterns, p)
	}
	return patterns
}

// isLoopHeaderDeclarator reports whether a declarator sits in a for header
func isLoopHeaderDeclarator(declarator *parser.Node) bool {
	decl := declarator.Parent
	if decl == nil || decl.Parent == nil {
		return false
	}
	return decl.Parent.Type == parser.NodeForStatement && decl.Field == "initializer"
}

func isErrorBindingName(name string) bool {
	switch strings.ToLower(name) {
	case "e", "err", "error":
		return true
	}
	return false
}

// isIterationCallback reports whether fn is passed directly to map, filter and friends
func isIterationCallback(fn *parser.Node) bool {
	args := fn.Parent
	if args == nil || args.Type != parser.NodeArguments {
		return false
	}
	call := args.Parent
	if call == nil || call.Type != parser.NodeCallExpression {
		return false
	}
	_, ok := iterationMethods[call.CalleeName()]
	return ok
}

// patternIdentifiers returns the identifiers bound directly by a binding
// target: the identifier itself or the elements of an array pattern.
func patternIdentifiers(target *parser.Node) []*parser.Node {
	switch target.Type {
	case parser.NodeIdentifier:
		return []*parser.Node{target}
	case parser.NodeArrayPattern:
		var out []*parser.Node
		for _, el := range target.Children {
			if id := parameterIdentifier(el); id != nil {
				out = append(out, id)
			}
		}
		return out
	}
	return nil
}

// parameterIdentifier unwraps typed, defaulted and rest parameters
func parameterIdentifier(param *parser.Node) *parser.Node {
	switch param.Type {
	case parser.NodeIdentifier:
		return param
	case parser.NodeRequiredParameter, parser.NodeOptionalParameter:
		if pattern := param.ChildByField("pattern"); pattern != nil {
			return parameterIdentifier(pattern)
		}
	case parser.NodeAssignmentPattern:
		if left := param.ChildByField("left"); left != nil {
			return parameterIdentifier(left)
		}
	case parser.NodeRestPattern:
		for _, child := range param.Children {
			if child.Type == parser.NodeIdentifier {
				return child
			}
		}
	}
	return nil
}

// suggestVariableName proposes a name from the initializer when it is a
// getter call or an awaited call, otherwise a generic nudge.
func suggestVariableName(name string, init *parser.Node) string {
	nudge := fmt.Sprintf("Use a name that describes what '%s' holds, e.g. userProfile instead of data", name)
	init = init.Unparen()
	if init == nil {
		return nudge
	}

	switch init.Type {
	case parser.NodeCallExpression:
		if derived := stripPrefix(init.CalleeName(), accessorPrefixes); derived != "" {
			return fmt.Sprintf("Rename '%s' to '%s'", name, derived)
		}
	case parser.NodeAwaitExpression:
		for _, child := range init.Children {
			inner := child.Unparen()
			if inner.Type != parser.NodeCallExpression {
				continue
			}
			callee := inner.CalleeName()
			if callee == "" {
				break
			}
			if derived := stripPrefix(callee, verbPrefixes); derived != "" {
				return fmt.Sprintf("Rename '%s' to '%s'", name, derived)
			}
			return fmt.Sprintf("Rename '%s' to '%sResult'", name, callee)
		}
	}
	return nudge
}

// stripPrefix turns getUserProfile into userProfile; "" when no prefix matches
func stripPrefix(callee string, prefixes []string) string {
	for _, prefix := range prefixes {
		rest, ok := strings.CutPrefix(callee, prefix)
		if !ok || rest == "" {
			continue
		}
		r := []rune(rest)
		if !unicode.IsUpper(r[0]) {
			continue
		}
		r[0] = unicode.ToLower(r[0])
		return string(r)
	}
	return ""
}

// convertName rewrites name in the target convention
func convertName(name string, to NamingConvention) string {
	words := splitWords(name)
	if len(words) == 0 {
		return name
	}
	switch to {
	case ConventionSnakeCase:
		return strings.Join(words, "_")
	case ConventionScreamingSnake:
		return strings.ToUpper(strings.Join(words, "_"))
	case ConventionCamelCase, ConventionPascalCase:
		var sb strings.Builder
		for i, w := range words {
			if i == 0 && to == ConventionCamelCase {
				sb.WriteString(w)
				continue
			}
			sb.WriteString(strings.ToUpper(w[:1]) + w[1:])
		}
		return sb.String()
	}
	return name
}

// splitWords breaks an identifier at underscores and case humps, lower-cased
func splitWords(name string) []string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '$':
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	return words
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
