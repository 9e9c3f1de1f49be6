package analyzer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/parser"
)

// SecurityDetectorID identifies the security detector
const SecurityDetectorID = "security"

const secretMask = "****"

var (
	jwtPattern       = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}$`)
	awsKeyPattern    = regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`)
	placeholderValue = regexp.MustCompile(`(?i)(your[_-]?|xxx|example|changeme|placeholder|<[^>]*>|\*\*\*)`)

	// AND/OR alone are too common in prose to mark a string as SQL
	sqlKeyword = regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|FROM|WHERE|JOIN)\b`)

	sensitiveContext = regexp.MustCompile(`(?i)(token|secret|key|passw|auth|session|csrf|nonce|salt|hash|uuid|otp)`)
	identifierID     = regexp.MustCompile(`\b[iI][dD]\b|[a-z0-9_]Id\b|_id\b|ID\b`)
)

// Files whose names contain these fragments are fixtures or samples and are
// not scanned for secrets
var secretExemptFragments = []string{".test.", ".spec.", "__tests__/", "__mocks__/", ".config.", ".example.", ".sample.", ".fixture."}

// SecurityDetector reports hardcoded secrets and injection-prone code
type SecurityDetector struct{}

// NewSecurityDetector creates a security detector
func NewSecurityDetector() *SecurityDetector {
	return &SecurityDetector{}
}

func (d *SecurityDetector) ID() string { return SecurityDetectorID }

func (d *SecurityDetector) Patterns() []domain.PatternType {
	return []domain.PatternType{
		domain.PatternHardcodedSecret,
		domain.PatternSQLConcatenation,
		domain.PatternUnsafeEval,
		domain.PatternInsecureRandom,
		domain.PatternDangerousHTML,
	}
}

func (d *SecurityDetector) Languages() []domain.Language { return bothLanguages }

func (d *SecurityDetector) Analyze(source, path string, settings *Settings) ([]domain.PatternRecord, error) {
	ast, err := parseSource(source, path)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = DefaultSettings()
	}

	var patterns []domain.PatternRecord
	if !isSecretExempt(path) {
		patterns = append(patterns, d.scanSecrets(ast, source, path, settings)...)
	}

	// Template literals inside a reported concatenation are not reported again
	reported := make(map[*parser.Node]bool)
	ast.Walk(func(n *parser.Node) bool {
		switch n.Type {
		case parser.NodeBinaryExpression:
			if p, ok := d.checkConcatenation(n, path); ok {
				patterns = append(patterns, p)
				reported[n] = true
			}
		case parser.NodeTemplateLiteral:
			if p, ok := d.checkTemplate(n, path, reported); ok {
				patterns = append(patterns, p)
			}
		case parser.NodeCallExpression:
			patterns = append(patterns, d.checkCall(n, path)...)
		case parser.NodeNewExpression:
			if isIdentifier(n.Callee(), "Function") {
				patterns = append(patterns, d.unsafeEval(n, path, "new Function(...)"))
			}
		case parser.NodeAssignmentExpression:
			if p, ok := d.checkHTMLAssignment(n, path); ok {
				patterns = append(patterns, p)
			}
		case parser.NodeJSXAttribute:
			if len(n.Children) > 0 && n.Children[0].Name == "dangerouslySetInnerHTML" {
				patterns = append(patterns, d.dangerousHTML(n, path, "dangerouslySetInnerHTML"))
			}
		}
		return true
	})
	return patterns, nil
}

func isSecretExempt(path string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(slashed)
	for _, fragment := range secretExemptFragments {
		if strings.HasSuffix(fragment, "/") {
			if strings.Contains(slashed, fragment) {
				return true
			}
			continue
		}
		if strings.Contains(base, fragment) {
			return true
		}
	}
	return false
}

// scanSecrets runs the line-oriented secret patterns, then the literal-level
// JWT and AWS key checks on lines not already reported
func (d *SecurityDetector) scanSecrets(ast *parser.Node, source, path string, settings *Settings) []domain.PatternRecord {
	var patterns []domain.PatternRecord
	flagged := make(map[int]bool)

	for i, line := range sourceLines(source) {
		if strings.Contains(line, "process.env") || strings.Contains(line, "import.meta.env") {
			continue
		}
		for _, re := range settings.SecretPatterns {
			loc := re.FindStringSubmatchIndex(line)
			if loc == nil {
				continue
			}
			start, end := loc[0], loc[1]
			if groups := len(loc) / 2; groups > 1 && loc[2*(groups-1)] >= 0 {
				start, end = loc[2*(groups-1)], loc[2*(groups-1)+1]
			}
			value := line[start:end]
			if isEnvTemplate(value) || placeholderValue.MatchString(value) {
				continue
			}

			lineNo := i + 1
			masked := line[:start] + maskSecret(value) + line[end:]
			p := newLinePattern(d.ID(), domain.PatternHardcodedSecret, path, lineNo, lineNo, strings.TrimSpace(masked))
			p.Location.StartColumn = start + 1
			p.Location.EndColumn = end + 1
			p.Description = fmt.Sprintf("Hardcoded secret %s", maskSecret(value))
			p.Explanation = "Credentials committed to source end up in version history, builds and logs, " +
				"where anyone with read access can use them."
			p.Suggestion = "Load the value from an environment variable or a secret manager and rotate the exposed credential"
			p.Confidence = 0.85
			patterns = append(patterns, p)
			flagged[lineNo] = true
			break
		}
	}

	ast.Walk(func(n *parser.Node) bool {
		if n.Type != parser.NodeStringLiteral || flagged[n.Location.StartLine] {
			return true
		}
		value := n.StringValue()
		kind, confidence := "", 0.0
		switch {
		case awsKeyPattern.MatchString(value):
			kind, confidence = "AWS access key", 0.95
			value = awsKeyPattern.FindString(value)
		case jwtPattern.MatchString(value):
			kind, confidence = "JSON Web Token", 0.85
		default:
			return true
		}

		p := newNodePattern(d.ID(), domain.PatternHardcodedSecret, path, n)
		p.CodeSnippet = snippet(strings.Replace(n.Text, value, maskSecret(value), 1))
		p.Description = fmt.Sprintf("Hardcoded %s %s", kind, maskSecret(value))
		p.Explanation = "Tokens and cloud keys in source grant access to whoever reads the repository."
		p.Suggestion = "Move the credential to configuration outside the repository and revoke this one"
		p.Confidence = confidence
		patterns = append(patterns, p)
		flagged[n.Location.StartLine] = true
		return true
	})
	return patterns
}

// maskSecret keeps the first four characters of a secret
func maskSecret(value string) string {
	r := []rune(value)
	if len(r) <= 4 {
		return secretMask
	}
	return string(r[:4]) + secretMask
}

func isEnvTemplate(value string) bool {
	return strings.Contains(value, "${") && strings.Contains(strings.ToLower(value), "env")
}

// checkConcatenation reports the outermost "+" chain that mixes SQL text with
// non-literal operands
func (d *SecurityDetector) checkConcatenation(n *parser.Node, path string) (domain.PatternRecord, bool) {
	if n.Operator != "+" || isPlusChain(n.Parent) {
		return domain.PatternRecord{}, false
	}

	var static strings.Builder
	dynamic := false
	for _, operand := range plusOperands(n) {
		switch operand.Type {
		case parser.NodeStringLiteral:
			static.WriteString(operand.StringValue())
			static.WriteByte(' ')
		case parser.NodeNumberLiteral:
		case parser.NodeTemplateLiteral:
			static.WriteString(templateStaticText(operand))
			static.WriteByte(' ')
			if hasSubstitution(operand) {
				dynamic = true
			}
		default:
			dynamic = true
		}
	}
	if !dynamic || !looksLikeSQL(static.String()) {
		return domain.PatternRecord{}, false
	}
	return d.sqlConcatenation(n, path, "string concatenation"), true
}

func (d *SecurityDetector) checkTemplate(n *parser.Node, path string, reported map[*parser.Node]bool) (domain.PatternRecord, bool) {
	if !hasSubstitution(n) {
		return domain.PatternRecord{}, false
	}
	// Tagged templates such as sql`...` are parameterized by the tag
	if n.Parent != nil && n.Parent.Type == parser.NodeCallExpression {
		return domain.PatternRecord{}, false
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if reported[p] {
			return domain.PatternRecord{}, false
		}
	}
	if !looksLikeSQL(templateStaticText(n)) {
		return domain.PatternRecord{}, false
	}
	return d.sqlConcatenation(n, path, "template literal"), true
}

func (d *SecurityDetector) sqlConcatenation(n *parser.Node, path, how string) domain.PatternRecord {
	p := newNodePattern(d.ID(), domain.PatternSQLConcatenation, path, n)
	p.Description = fmt.Sprintf("SQL query built with %s", how)
	p.Explanation = "Splicing values into SQL text allows SQL injection when any of them comes from user input."
	p.Suggestion = "Use parameterized queries or your query builder's placeholders"
	p.Confidence = 0.8
	return p
}

// looksLikeSQL reports whether text carries an SQL keyword other than AND/OR
func looksLikeSQL(text string) bool {
	return sqlKeyword.MatchString(text)
}

func isPlusChain(n *parser.Node) bool {
	return n != nil && n.Type == parser.NodeBinaryExpression && n.Operator == "+"
}

// plusOperands flattens a + b + c into its leaf operands
func plusOperands(n *parser.Node) []*parser.Node {
	if !isPlusChain(n) {
		return []*parser.Node{n.Unparen()}
	}
	var out []*parser.Node
	for _, child := range n.Children {
		if child.Type == parser.NodeComment {
			continue
		}
		out = append(out, plusOperands(child.Unparen())...)
	}
	return out
}

// templateStaticText returns a template literal's text with substitutions blanked
func templateStaticText(n *parser.Node) string {
	text := n.Text
	for i := len(n.Children) - 1; i >= 0; i-- {
		sub := n.Children[i]
		if sub.Type != parser.NodeTemplateSubstitution {
			continue
		}
		if idx := strings.LastIndex(text, sub.Text); idx >= 0 {
			text = text[:idx] + " " + text[idx+len(sub.Text):]
		}
	}
	return strings.Trim(text, "`")
}

func (d *SecurityDetector) checkCall(call *parser.Node, path string) []domain.PatternRecord {
	callee := call.Callee()
	if callee == nil {
		return nil
	}
	name := call.CalleeName()

	switch {
	case name == "eval" && isGlobalCallee(callee):
		return []domain.PatternRecord{d.unsafeEval(call, path, "eval()")}

	case name == "Function" && isGlobalCallee(callee):
		return []domain.PatternRecord{d.unsafeEval(call, path, "Function(...)")}

	case (name == "setTimeout" || name == "setInterval") && isGlobalCallee(callee):
		args := call.Arguments()
		if len(args) == 0 {
			return nil
		}
		first := args[0].Unparen()
		if first.Type != parser.NodeStringLiteral && first.Type != parser.NodeTemplateLiteral {
			return nil
		}
		p := newNodePattern(d.ID(), domain.PatternUnsafeEval, path, call)
		p.Severity = domain.SeverityWarning
		p.Description = fmt.Sprintf("%s called with a string argument", name)
		p.Explanation = "Passing a string to setTimeout or setInterval evaluates it as code, like eval."
		p.Suggestion = "Pass a function instead of a string"
		p.Confidence = 0.9
		return []domain.PatternRecord{p}

	case name == "random" && isMemberOf(callee, "Math"):
		if p, ok := d.checkInsecureRandom(call, path); ok {
			return []domain.PatternRecord{p}
		}

	case (name == "write" || name == "writeln") && isMemberOf(callee, "document"):
		return []domain.PatternRecord{d.dangerousHTML(call, path, "document."+name+"()")}
	}
	return nil
}

func (d *SecurityDetector) unsafeEval(n *parser.Node, path, what string) domain.PatternRecord {
	p := newNodePattern(d.ID(), domain.PatternUnsafeEval, path, n)
	p.Description = fmt.Sprintf("Dynamic code execution via %s", what)
	p.Explanation = "Evaluating strings as code lets anyone who controls the string run arbitrary code, " +
		"and defeats static analysis and CSP."
	p.Suggestion = "Replace dynamic evaluation with explicit logic, a lookup table or JSON.parse"
	p.Confidence = 0.95
	return p
}

func (d *SecurityDetector) checkInsecureRandom(call *parser.Node, path string) (domain.PatternRecord, bool) {
	ctx := randomContext(call)
	if ctx == nil {
		return domain.PatternRecord{}, false
	}
	if !sensitiveContext.MatchString(ctx.Text) && !identifierID.MatchString(ctx.Text) {
		return domain.PatternRecord{}, false
	}

	p := newNodePattern(d.ID(), domain.PatternInsecureRandom, path, call)
	p.CodeSnippet = snippet(ctx.Text)
	p.Description = "Math.random() used for a security-sensitive value"
	p.Explanation = "Math.random() is predictable; tokens, IDs and secrets built from it can be guessed."
	p.Suggestion = "Use crypto.getRandomValues() or crypto.randomUUID() instead"
	p.Confidence = 0.7
	return p, true
}

// randomContext returns the declaration, assignment, property or statement
// that consumes the value, falling back to the grandparent expression
func randomContext(call *parser.Node) *parser.Node {
	depth := 0
	for p := call.Parent; p != nil && depth < 6; p = p.Parent {
		switch p.Type {
		case parser.NodeVariableDeclarator, parser.NodeAssignmentExpression,
			parser.NodeProperty, parser.NodeReturnStatement, parser.NodeExpressionStatement,
			parser.NodeJSXAttribute:
			return p
		}
		if p.IsFunction() || p.IsStatement() {
			break
		}
		depth++
	}
	if call.Parent != nil && call.Parent.Parent != nil {
		return call.Parent.Parent
	}
	return call.Parent
}

func (d *SecurityDetector) checkHTMLAssignment(n *parser.Node, path string) (domain.PatternRecord, bool) {
	left := n.ChildByField("left")
	if left == nil || left.Type != parser.NodeMemberExpression {
		return domain.PatternRecord{}, false
	}
	prop := left.ChildByField("property")
	if prop == nil || (prop.Name != "innerHTML" && prop.Name != "outerHTML") {
		return domain.PatternRecord{}, false
	}
	right := n.ChildByField("right").Unparen()
	if right != nil && right.Type == parser.NodeStringLiteral {
		return domain.PatternRecord{}, false
	}
	return d.dangerousHTML(n, path, prop.Name+" assignment"), true
}

func (d *SecurityDetector) dangerousHTML(n *parser.Node, path, what string) domain.PatternRecord {
	p := newNodePattern(d.ID(), domain.PatternDangerousHTML, path, n)
	p.Description = fmt.Sprintf("Raw HTML injection via %s", what)
	p.Explanation = "Writing unsanitized HTML into the page enables cross-site scripting when the markup contains user data."
	p.Suggestion = "Use textContent, a templating layer that escapes output, or sanitize with DOMPurify"
	p.Confidence = 0.75
	return p
}

// isGlobalCallee accepts foo and window.foo / globalThis.foo / self.foo
func isGlobalCallee(callee *parser.Node) bool {
	switch callee.Type {
	case parser.NodeIdentifier:
		return true
	case parser.NodeMemberExpression:
		return isMemberOf(callee, "window") || isMemberOf(callee, "globalThis") || isMemberOf(callee, "self")
	}
	return false
}

func isMemberOf(callee *parser.Node, object string) bool {
	if callee.Type != parser.NodeMemberExpression {
		return false
	}
	return isIdentifier(callee.ChildByField("object"), object)
}

func isIdentifier(n *parser.Node, name string) bool {
	return n != nil && n.Type == parser.NodeIdentifier && n.Name == name
}
