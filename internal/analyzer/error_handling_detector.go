package analyzer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/parser"
)

// ErrorHandlingDetectorID identifies the error handling detector
const ErrorHandlingDetectorID = "error-handling"

// Messages at most this many bytes longer than a generic phrase count as
// generic when they contain it
const shortMessageSlack = 10

// ErrorHandlingDetector reports swallowed errors, unprotected awaits and
// uninformative error messages
type ErrorHandlingDetector struct{}

// NewErrorHandlingDetector creates an error handling detector
func NewErrorHandlingDetector() *ErrorHandlingDetector {
	return &ErrorHandlingDetector{}
}

func (d *ErrorHandlingDetector) ID() string { return ErrorHandlingDetectorID }

func (d *ErrorHandlingDetector) Patterns() []domain.PatternType {
	return []domain.PatternType{
		domain.PatternEmptyCatchBlock,
		domain.PatternSwallowedError,
		domain.PatternMissingErrorBoundary,
		domain.PatternGenericErrorMessage,
		domain.PatternTryWithoutCatch,
	}
}

func (d *ErrorHandlingDetector) Languages() []domain.Language { return bothLanguages }

func (d *ErrorHandlingDetector) Analyze(source, path string, settings *Settings) ([]domain.PatternRecord, error) {
	ast, err := parseSource(source, path)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = DefaultSettings()
	}

	var patterns []domain.PatternRecord
	ast.Walk(func(n *parser.Node) bool {
		switch n.Type {
		case parser.NodeTryStatement:
			patterns = append(patterns, d.checkTry(n, path)...)
		case parser.NodeError:
			if p, ok := d.checkUnterminatedTry(n, path); ok {
				patterns = append(patterns, p)
			}
		case parser.NodeStringLiteral, parser.NodeTemplateLiteral:
			if p, ok := d.checkErrorMessage(n, path, settings); ok {
				patterns = append(patterns, p)
			}
		}
		if n.IsFunction() && n.Async {
			if p, ok := d.checkAsyncFunction(n, path); ok {
				patterns = append(patterns, p)
			}
		}
		return true
	})
	return patterns, nil
}

func (d *ErrorHandlingDetector) checkTry(try *parser.Node, path string) []domain.PatternRecord {
	handler := try.ChildByField("handler")
	finalizer := try.ChildByField("finalizer")

	if handler == nil && finalizer == nil {
		return []domain.PatternRecord{d.tryWithoutHandler(try, path)}
	}

	if handler == nil {
		if !hasRiskyOperation(try.Body()) {
			return nil
		}
		p := newNodePattern(d.ID(), domain.PatternTryWithoutCatch, path, try)
		p.Description = "try/finally without catch lets errors propagate"
		p.Explanation = "The try block calls code that can fail but only has a finally clause, so any " +
			"error escapes to the caller. That may be intended, but it is easy to miss."
		p.Suggestion = "Add a catch clause if the error should be handled here"
		p.Confidence = 0.5
		return []domain.PatternRecord{p}
	}

	body := handler.Body()
	if len(meaningfulStatements(body)) == 0 {
		p := newNodePattern(d.ID(), domain.PatternEmptyCatchBlock, path, handler)
		p.Description = "Empty catch block silently discards errors"
		p.Explanation = "An empty catch hides failures entirely: the program continues in an unknown " +
			"state and nothing is logged for debugging."
		p.Suggestion = "Log the error, rethrow it, or handle the failure explicitly"
		p.Confidence = 0.95
		return []domain.PatternRecord{p}
	}

	param := handler.ChildByField("parameter")
	if param == nil || param.Type != parser.NodeIdentifier {
		return nil
	}
	if referencesIdentifier(body, param.Name) {
		return nil
	}
	p := newNodePattern(d.ID(), domain.PatternSwallowedError, path, handler)
	p.Description = fmt.Sprintf("Caught error '%s' is never used", param.Name)
	p.Explanation = "The catch block runs code but never looks at the error, so the cause of the " +
		"failure is lost."
	p.Suggestion = fmt.Sprintf("Log or rethrow '%s', or pass it to your error reporter", param.Name)
	p.Confidence = 0.8
	return []domain.PatternRecord{p}
}

func (d *ErrorHandlingDetector) tryWithoutHandler(node *parser.Node, path string) domain.PatternRecord {
	p := newNodePattern(d.ID(), domain.PatternTryWithoutCatch, path, node)
	p.Severity = domain.SeverityCritical
	p.Description = "try block without catch or finally"
	p.Explanation = "A try statement needs a catch or finally clause; without one the code does not parse."
	p.Suggestion = "Add a catch clause that handles the error"
	p.Confidence = 0.95
	return p
}

// checkUnterminatedTry reports a try block that the parser could only
// recover as an error node because it has no handler
func (d *ErrorHandlingDetector) checkUnterminatedTry(node *parser.Node, path string) (domain.PatternRecord, bool) {
	if node.Ancestor(func(p *parser.Node) bool { return p.Type == parser.NodeError }) != nil {
		return domain.PatternRecord{}, false
	}
	text := strings.TrimSpace(node.Text)
	if !strings.HasPrefix(text, "try") || !strings.HasPrefix(strings.TrimSpace(text[3:]), "{") {
		return domain.PatternRecord{}, false
	}
	if strings.Contains(text, "catch") || strings.Contains(text, "finally") {
		return domain.PatternRecord{}, false
	}
	return d.tryWithoutHandler(node, path), true
}

func (d *ErrorHandlingDetector) checkAsyncFunction(fn *parser.Node, path string) (domain.PatternRecord, bool) {
	body := fn.Body()
	if body == nil {
		return domain.PatternRecord{}, false
	}

	unprotected := 0
	body.Walk(func(n *parser.Node) bool {
		if n != body && n.IsFunction() {
			return false
		}
		if n.Type == parser.NodeAwaitExpression && !insideTryBlock(n, fn) {
			unprotected++
		}
		return true
	})
	if unprotected == 0 {
		return domain.PatternRecord{}, false
	}

	name := fn.FunctionName()
	p := newNodePattern(d.ID(), domain.PatternMissingErrorBoundary, path, fn)
	p.CodeSnippet = snippet(firstLine(fn.Text))
	p.Description = fmt.Sprintf("Async function '%s' has %d await expression(s) outside try/catch", name, unprotected)
	p.Explanation = "A rejected promise inside an async function surfaces as an unhandled rejection " +
		"unless a caller catches it."
	p.Suggestion = "Wrap the awaited calls in try/catch, or document that callers must handle rejections"
	p.Confidence = 0.6
	return p, true
}

func (d *ErrorHandlingDetector) checkErrorMessage(lit *parser.Node, path string, settings *Settings) (domain.PatternRecord, bool) {
	if lit.Type == parser.NodeTemplateLiteral && hasSubstitution(lit) {
		return domain.PatternRecord{}, false
	}
	message := lit.StringValue()
	if !isGenericMessage(message, settings.GenericErrorMessages) || !inErrorContext(lit) {
		return domain.PatternRecord{}, false
	}

	p := newNodePattern(d.ID(), domain.PatternGenericErrorMessage, path, lit)
	p.Description = fmt.Sprintf("Generic error message %q", message)
	p.Explanation = "Messages like \"Something went wrong\" give no hint about what failed or why, " +
		"which slows down debugging and confuses users."
	p.Suggestion = "Say what operation failed and include the relevant identifiers"
	p.Confidence = 0.7
	return p, true
}

// isGenericMessage matches a phrase exactly, or as a substring of a message
// that is barely longer than the phrase
func isGenericMessage(message string, phrases []string) bool {
	msg := strings.ToLower(strings.TrimSpace(message))
	msg = strings.TrimRight(msg, ".!")
	if msg == "" {
		return false
	}
	for _, phrase := range phrases {
		if msg == phrase {
			return true
		}
		if len(msg) <= len(phrase)+shortMessageSlack && strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// inErrorContext reports whether a literal is thrown, passed to new <X>Error,
// Error() or reject, or appears inside a catch clause
func inErrorContext(lit *parser.Node) bool {
	parent := lit.Parent
	if parent == nil {
		return false
	}
	if parent.Type == parser.NodeThrowStatement {
		return true
	}
	if parent.Type == parser.NodeArguments && parent.Parent != nil {
		call := parent.Parent
		name := call.CalleeName()
		switch call.Type {
		case parser.NodeNewExpression:
			if strings.HasSuffix(name, "Error") {
				return true
			}
		case parser.NodeCallExpression:
			// Error("...") constructs without new; logError("...") only reports
			if name == "Error" || name == "reject" {
				return true
			}
		}
	}
	return lit.Ancestor(func(p *parser.Node) bool { return p.Type == parser.NodeCatchClause }) != nil
}

// insideTryBlock reports whether n lies in the try block (not the handler)
// of a try statement between n and fn
func insideTryBlock(n, fn *parser.Node) bool {
	for p := n; p != nil && p != fn; p = p.Parent {
		if p.Field == "body" && p.Parent != nil && p.Parent.Type == parser.NodeTryStatement {
			return true
		}
	}
	return false
}

// hasRiskyOperation reports whether a block awaits, calls or throws
func hasRiskyOperation(block *parser.Node) bool {
	found := false
	block.Walk(func(n *parser.Node) bool {
		if found {
			return false
		}
		switch n.Type {
		case parser.NodeAwaitExpression, parser.NodeCallExpression,
			parser.NodeNewExpression, parser.NodeThrowStatement:
			found = true
			return false
		}
		return true
	})
	return found
}

// meaningfulStatements drops comments and stray semicolons
func meaningfulStatements(block *parser.Node) []*parser.Node {
	var out []*parser.Node
	for _, stmt := range block.Statements() {
		if stmt.Type != parser.NodeEmptyStatement {
			out = append(out, stmt)
		}
	}
	return out
}

func referencesIdentifier(root *parser.Node, name string) bool {
	found := false
	root.Walk(func(n *parser.Node) bool {
		if found {
			return false
		}
		if n.Type == parser.NodeIdentifier && n.Name == name {
			found = true
			return false
		}
		return true
	})
	return found
}

func hasSubstitution(template *parser.Node) bool {
	for _, child := range template.Children {
		if child.Type == parser.NodeTemplateSubstitution {
			return true
		}
	}
	return false
}
