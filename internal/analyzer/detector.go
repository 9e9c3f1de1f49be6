package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/parser"
)

// Detector finds one family of patterns in a single file. Implementations
// keep no state between calls and may be invoked concurrently.
type Detector interface {
	// ID is the stable detector identifier stamped on every record
	ID() string
	// Patterns lists the pattern types this detector can report
	Patterns() []domain.PatternType
	// Languages lists the languages this detector understands
	Languages() []domain.Language
	// Analyze inspects source and returns records in discovery order
	Analyze(source, path string, settings *Settings) ([]domain.PatternRecord, error)
}

// Default thresholds used when settings leave them at zero
const (
	DefaultComplexityWarning  = 10
	DefaultComplexityCritical = 20
	DefaultMaxNestingDepth    = 4
	DefaultMaxFunctionLines   = 50
)

var builtinGenericNames = []string{
	"data", "result", "results", "temp", "tmp", "item", "obj", "arr",
	"val", "value", "info", "stuff", "thing", "things", "foo", "bar",
	"baz", "ret", "retval", "misc", "whatever",
}

var builtinLoopVariables = []string{"i", "j", "k", "n", "m"}

var builtinCoordinateVariables = []string{"x", "y", "z", "w"}

var builtinGenericErrorMessages = []string{
	"an error occurred",
	"error occurred",
	"something went wrong",
	"something bad happened",
	"failed",
	"error",
	"oops",
	"unknown error",
	"unexpected error",
	"an unexpected error occurred",
	"operation failed",
	"request failed",
	"internal error",
	"try again later",
}

// The first capture group of an assignment pattern is the key, the last is the value
var builtinSecretPatterns = []string{
	"(?i)(api[_-]?key|apikey|secret|password|passwd|pwd|token|auth[_-]?key|private[_-]?key|access[_-]?key|client[_-]?secret)\\w*[\"']?\\s*[:=]\\s*[\"'`]([^\"'`\\s]{8,})[\"'`]",
	"-----BEGIN (?:RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY(?: BLOCK)?-----",
	"(?i)bearer\\s+([a-z0-9\\-._~+/]{20,}=*)",
}

// Settings is the immutable, merged view of detector configuration. It is
// built once per invocation by ResolveSettings and shared by every detector.
type Settings struct {
	GenericNames         map[string]struct{}
	LoopVariables        map[string]struct{}
	CoordinateVariables  map[string]struct{}
	GenericErrorMessages []string
	SecretPatterns       []*regexp.Regexp

	ComplexityWarning  int
	ComplexityCritical int
	MaxNestingDepth    int
	MaxFunctionLines   int
}

// ResolveSettings merges user extensions with the built-in defaults and
// compiles secret patterns. An invalid user regex is reported here.
func ResolveSettings(user domain.DetectorSettings) (*Settings, error) {
	s := &Settings{
		GenericNames:         toSet(builtinGenericNames, user.GenericNames),
		LoopVariables:        toSet(builtinLoopVariables, user.LoopVariables),
		CoordinateVariables:  toSet(builtinCoordinateVariables, user.CoordinateVariables),
		GenericErrorMessages: mergeLower(builtinGenericErrorMessages, user.GenericErrorMessages),
		ComplexityWarning:    orDefault(user.ComplexityWarning, DefaultComplexityWarning),
		ComplexityCritical:   orDefault(user.ComplexityCritical, DefaultComplexityCritical),
		MaxNestingDepth:      orDefault(user.MaxNestingDepth, DefaultMaxNestingDepth),
		MaxFunctionLines:     orDefault(user.MaxFunctionLines, DefaultMaxFunctionLines),
	}

	if s.ComplexityCritical < s.ComplexityWarning {
		return nil, fmt.Errorf("complexity critical threshold (%d) must not be below warning threshold (%d)",
			s.ComplexityCritical, s.ComplexityWarning)
	}

	seen := make(map[string]struct{})
	for _, expr := range append(append([]string{}, builtinSecretPatterns...), user.SecretPatterns...) {
		if _, dup := seen[expr]; dup {
			continue
		}
		seen[expr] = struct{}{}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid secret pattern %q: %w", expr, err)
		}
		s.SecretPatterns = append(s.SecretPatterns, re)
	}

	return s, nil
}

// DefaultSettings returns the built-in settings with no user extensions
func DefaultSettings() *Settings {
	s, err := ResolveSettings(domain.DetectorSettings{})
	if err != nil {
		// Built-in patterns always compile
		panic(err)
	}
	return s
}

func toSet(builtin, extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(builtin)+len(extra))
	for _, v := range mergeLower(builtin, extra) {
		set[v] = struct{}{}
	}
	return set
}

func mergeLower(builtin, extra []string) []string {
	seen := make(map[string]struct{}, len(builtin)+len(extra))
	out := make([]string, 0, len(builtin)+len(extra))
	for _, list := range [][]string{builtin, extra} {
		for _, v := range list {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func inSet(set map[string]struct{}, name string) bool {
	_, ok := set[strings.ToLower(name)]
	return ok
}

const (
	maxSnippetLines = 3
	maxSnippetWidth = 120
)

// newPatternID builds "<detector>-<file>-<line>-<nonce>"; the nonce keeps IDs
// unique when one line carries several records.
func newPatternID(detectorID, path string, line int) string {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%d-%s", detectorID, path, line, nonce)
}

// newNodePattern creates a record located at an AST node
func newNodePattern(detectorID string, patternType domain.PatternType, path string, node *parser.Node) domain.PatternRecord {
	return domain.PatternRecord{
		ID:       newPatternID(detectorID, path, node.Location.StartLine),
		Type:     patternType,
		Severity: patternType.DefaultSeverity(),
		Location: domain.Location{
			File:        path,
			StartLine:   node.Location.StartLine,
			EndLine:     node.Location.EndLine,
			StartColumn: node.Location.StartCol + 1,
			EndColumn:   node.Location.EndCol + 1,
		},
		CodeSnippet: snippet(node.Text),
		DetectorID:  detectorID,
	}
}

// newLinePattern creates a record spanning whole source lines
func newLinePattern(detectorID string, patternType domain.PatternType, path string, startLine, endLine int, text string) domain.PatternRecord {
	return domain.PatternRecord{
		ID:       newPatternID(detectorID, path, startLine),
		Type:     patternType,
		Severity: patternType.DefaultSeverity(),
		Location: domain.Location{
			File:      path,
			StartLine: startLine,
			EndLine:   endLine,
		},
		CodeSnippet: snippet(text),
		DetectorID:  detectorID,
	}
}

// snippet keeps the first few lines of text, each cut to a display width
func snippet(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > maxSnippetLines {
		lines = append(lines[:maxSnippetLines], "...")
	}
	for i, line := range lines {
		lines[i] = runewidth.Truncate(strings.TrimRight(line, "\r"), maxSnippetWidth, "...")
	}
	return strings.Join(lines, "\n")
}

// sourceLines splits source into lines without trailing carriage returns
func sourceLines(source string) []string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}

// parseSource parses with the shared parser workspace
func parseSource(source, path string) (*parser.Node, error) {
	ast, err := parser.ParseForLanguage(path, []byte(source))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return ast, nil
}

// collect returns every node in ast matching one of the types, in source order
func collect(ast *parser.Node, types ...parser.NodeType) []*parser.Node {
	var out []*parser.Node
	ast.Walk(func(n *parser.Node) bool {
		for _, t := range types {
			if n.Type == t {
				out = append(out, n)
				break
			}
		}
		return true
	})
	return out
}

// functionNodes returns every function-like node in source order
func functionNodes(ast *parser.Node) []*parser.Node {
	var out []*parser.Node
	ast.Walk(func(n *parser.Node) bool {
		if n.IsFunction() {
			out = append(out, n)
		}
		return true
	})
	return out
}
