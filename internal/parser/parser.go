package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser wraps tree-sitter parser for JavaScript/TypeScript
type Parser struct {
	parser   *sitter.Parser
	language *sitter.Language
	isTS     bool
	isTSX    bool
}

// NewParser creates a new JavaScript parser
func NewParser() *Parser {
	parser := sitter.NewParser()
	lang := javascript.GetLanguage()
	parser.SetLanguage(lang)

	return &Parser{
		parser:   parser,
		language: lang,
		isTS:     false,
	}
}

// NewTypeScriptParser creates a new TypeScript parser. Angle-bracket type
// assertions parse; JSX does not.
func NewTypeScriptParser() *Parser {
	parser := sitter.NewParser()
	lang := typescript.GetLanguage()
	parser.SetLanguage(lang)

	return &Parser{
		parser:   parser,
		language: lang,
		isTS:     true,
	}
}

// NewTSXParser creates a new TypeScript parser with JSX support
func NewTSXParser() *Parser {
	parser := sitter.NewParser()
	lang := tsx.GetLanguage()
	parser.SetLanguage(lang)

	return &Parser{
		parser:   parser,
		language: lang,
		isTS:     true,
		isTSX:    true,
	}
}

// ParseFile parses a JavaScript/TypeScript file. The returned AST does not
// reference the tree-sitter tree, which is released before returning.
func (p *Parser) ParseFile(filename string, source []byte) (*Node, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse file %s: %v", filename, err)
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode == nil {
		return nil, fmt.Errorf("no root node in parse tree for %s", filename)
	}

	builder := NewASTBuilder(filename, source)
	return builder.Build(rootNode), nil
}

// ParseString parses JavaScript/TypeScript source code from a string
func (p *Parser) ParseString(source string) (*Node, error) {
	return p.ParseFile("<input>", []byte(source))
}

// IsTypeScript returns true if this parser is configured for TypeScript
func (p *Parser) IsTypeScript() bool {
	return p.isTS
}

// IsTSX returns true if this parser accepts JSX inside TypeScript
func (p *Parser) IsTSX() bool {
	return p.isTSX
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// IsTypeScriptPath reports whether the file extension selects the TypeScript grammar
func IsTypeScriptPath(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ts", ".tsx", ".mts", ".cts":
		return true
	}
	return false
}

// IsTSXPath reports whether the file needs the TSX grammar
func IsTSXPath(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".tsx"
}

// Workspace hands out parsers to concurrent callers. A parser is owned by
// exactly one caller between Acquire and Release.
type Workspace struct {
	jsParsers  sync.Pool
	tsParsers  sync.Pool
	tsxParsers sync.Pool
}

// NewWorkspace creates an empty parser workspace
func NewWorkspace() *Workspace {
	return &Workspace{
		jsParsers:  sync.Pool{New: func() any { return NewParser() }},
		tsParsers:  sync.Pool{New: func() any { return NewTypeScriptParser() }},
		tsxParsers: sync.Pool{New: func() any { return NewTSXParser() }},
	}
}

// Acquire returns a parser for the file's language: TSX for .tsx, plain
// TypeScript for .ts/.mts/.cts and JavaScript (with JSX) otherwise
func (w *Workspace) Acquire(filename string) *Parser {
	if IsTSXPath(filename) {
		return w.tsxParsers.Get().(*Parser)
	}
	if IsTypeScriptPath(filename) {
		return w.tsParsers.Get().(*Parser)
	}
	return w.jsParsers.Get().(*Parser)
}

// Release returns a parser to the workspace
func (w *Workspace) Release(p *Parser) {
	if p == nil {
		return
	}
	switch {
	case p.isTSX:
		w.tsxParsers.Put(p)
		return
	case p.isTS:
		w.tsParsers.Put(p)
		return
	}
	w.jsParsers.Put(p)
}

// Parse parses source with a pooled parser, releasing it on every exit path
func (w *Workspace) Parse(filename string, source []byte) (*Node, error) {
	p := w.Acquire(filename)
	defer w.Release(p)
	return p.ParseFile(filename, source)
}

var defaultWorkspace = NewWorkspace()

// ParseForLanguage selects the JavaScript or TypeScript grammar from the file
// extension and parses with the shared workspace
func ParseForLanguage(filename string, source []byte) (*Node, error) {
	return defaultWorkspace.Parse(filename, source)
}
