package parser

import (
	"fmt"
	"strings"
)

// NodeType represents the type of AST node
type NodeType string

// JavaScript/TypeScript AST node types
const (
	// Program and structure
	NodeProgram NodeType = "Program"
	NodeComment NodeType = "Comment"
	NodeError   NodeType = "ERROR"

	// Function declarations
	NodeFunction           NodeType = "FunctionDeclaration"
	NodeFunctionExpression NodeType = "FunctionExpression"
	NodeArrowFunction      NodeType = "ArrowFunctionExpression"
	NodeGeneratorFunction  NodeType = "GeneratorFunctionDeclaration"
	NodeMethodDefinition   NodeType = "MethodDefinition"
	NodeFormalParameters   NodeType = "FormalParameters"
	NodeRequiredParameter  NodeType = "RequiredParameter"
	NodeOptionalParameter  NodeType = "OptionalParameter"

	// Class declarations
	NodeClass     NodeType = "ClassDeclaration"
	NodeClassBody NodeType = "ClassBody"

	// Variable declarations
	NodeVariableDeclaration NodeType = "VariableDeclaration"
	NodeVariableDeclarator  NodeType = "VariableDeclarator"
	NodeIdentifier          NodeType = "Identifier"
	NodePropertyIdentifier  NodeType = "PropertyIdentifier"
	NodeShorthandPattern    NodeType = "ShorthandPropertyPattern"

	// Destructuring patterns
	NodeArrayPattern      NodeType = "ArrayPattern"
	NodeObjectPattern     NodeType = "ObjectPattern"
	NodeAssignmentPattern NodeType = "AssignmentPattern"
	NodeRestPattern       NodeType = "RestPattern"

	// Control flow statements
	NodeIfStatement       NodeType = "IfStatement"
	NodeElseClause        NodeType = "ElseClause"
	NodeSwitchStatement   NodeType = "SwitchStatement"
	NodeSwitchBody        NodeType = "SwitchBody"
	NodeCaseClause        NodeType = "SwitchCase"
	NodeDefaultClause     NodeType = "SwitchDefault"
	NodeForStatement      NodeType = "ForStatement"
	NodeForInStatement    NodeType = "ForInStatement"
	NodeForOfStatement    NodeType = "ForOfStatement"
	NodeWhileStatement    NodeType = "WhileStatement"
	NodeDoWhileStatement  NodeType = "DoWhileStatement"
	NodeBreakStatement    NodeType = "BreakStatement"
	NodeContinueStatement NodeType = "ContinueStatement"
	NodeReturnStatement   NodeType = "ReturnStatement"
	NodeThrowStatement    NodeType = "ThrowStatement"

	// Exception handling
	NodeTryStatement  NodeType = "TryStatement"
	NodeCatchClause   NodeType = "CatchClause"
	NodeFinallyClause NodeType = "FinallyClause"

	// Expressions
	NodeCallExpression          NodeType = "CallExpression"
	NodeArguments               NodeType = "Arguments"
	NodeMemberExpression        NodeType = "MemberExpression"
	NodeSubscriptExpression     NodeType = "SubscriptExpression"
	NodeBinaryExpression        NodeType = "BinaryExpression"
	NodeLogicalExpression       NodeType = "LogicalExpression"
	NodeUnaryExpression         NodeType = "UnaryExpression"
	NodeConditionalExpression   NodeType = "ConditionalExpression"
	NodeAssignmentExpression    NodeType = "AssignmentExpression"
	NodeAugmentedAssignment     NodeType = "AugmentedAssignmentExpression"
	NodeUpdateExpression        NodeType = "UpdateExpression"
	NodeNewExpression           NodeType = "NewExpression"
	NodeAwaitExpression         NodeType = "AwaitExpression"
	NodeYieldExpression         NodeType = "YieldExpression"
	NodeParenthesizedExpression NodeType = "ParenthesizedExpression"
	NodeSpreadElement           NodeType = "SpreadElement"
	NodeTemplateLiteral         NodeType = "TemplateLiteral"
	NodeTemplateSubstitution    NodeType = "TemplateSubstitution"

	// Literals
	NodeStringLiteral    NodeType = "StringLiteral"
	NodeNumberLiteral    NodeType = "NumberLiteral"
	NodeBooleanLiteral   NodeType = "BooleanLiteral"
	NodeNullLiteral      NodeType = "NullLiteral"
	NodeRegExpLiteral    NodeType = "RegExpLiteral"
	NodeArrayExpression  NodeType = "ArrayExpression"
	NodeObjectExpression NodeType = "ObjectExpression"
	NodeProperty         NodeType = "Property"

	// Module system
	NodeImportDeclaration NodeType = "ImportDeclaration"
	NodeExportDeclaration NodeType = "ExportDeclaration"

	// Other statements
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodeBlockStatement      NodeType = "BlockStatement"
	NodeEmptyStatement      NodeType = "EmptyStatement"
	NodeLabeledStatement    NodeType = "LabeledStatement"

	// JSX
	NodeJSXAttribute NodeType = "JSXAttribute"
)

// Location represents the position of a node in the source code.
// Lines are 1-based, columns 0-based.
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// String returns a string representation of the location
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// Node represents an AST node. Every node except the root has a Parent,
// and Field names the grammar field it occupies under that parent.
type Node struct {
	Type     NodeType
	Children []*Node
	Parent   *Node
	Field    string
	Location Location

	// Text is the exact source text spanned by the node
	Text string

	// Name is set for identifiers, functions, methods, classes and declarators
	Name string

	// Operator is set for binary, logical, unary, update, assignment and for-in/of nodes
	Operator string

	// Kind is var, let or const for declarations and for-in/of headers
	Kind string

	Async     bool
	Generator bool

	// TSType is the raw tree-sitter node type
	TSType string
}

// NewNode creates a new AST node
func NewNode(nodeType NodeType) *Node {
	return &Node{
		Type:     nodeType,
		Children: []*Node{},
	}
}

// AddChild adds a child node under the given field name
func (n *Node) AddChild(child *Node, field string) {
	if child == nil {
		return
	}
	child.Parent = n
	child.Field = field
	n.Children = append(n.Children, child)
}

// Walk traverses the AST depth-first and calls the visitor function for each node.
// If the visitor returns false, traversal of that branch is stopped.
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}
	if !visitor(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(visitor)
	}
}

// Descendants returns every node below n (excluding n) in pre-order
func (n *Node) Descendants() []*Node {
	var out []*Node
	n.Walk(func(d *Node) bool {
		if d != n {
			out = append(out, d)
		}
		return true
	})
	return out
}

// ChildByField returns the first child stored under the field name
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Field == field {
			return child
		}
	}
	return nil
}

// ChildrenByField returns every child stored under the field name
func (n *Node) ChildrenByField(field string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, child := range n.Children {
		if child.Field == field {
			out = append(out, child)
		}
	}
	return out
}

// Body returns the body child of functions, loops, catch/finally clauses and try statements
func (n *Node) Body() *Node {
	return n.ChildByField("body")
}

// Statements returns the non-comment children of a block
func (n *Node) Statements() []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, child := range n.Children {
		if child.Type != NodeComment {
			out = append(out, child)
		}
	}
	return out
}

// Params returns the parameter nodes of a function-like node
func (n *Node) Params() []*Node {
	if single := n.ChildByField("parameter"); single != nil && n.Type == NodeArrowFunction {
		return []*Node{single}
	}
	params := n.ChildByField("parameters")
	if params == nil {
		return nil
	}
	return params.Statements()
}

// Callee returns the function of a call expression or the constructor of a new expression
func (n *Node) Callee() *Node {
	switch n.Type {
	case NodeCallExpression:
		return n.ChildByField("function")
	case NodeNewExpression:
		return n.ChildByField("constructor")
	}
	return nil
}

// Arguments returns the argument expressions of a call or new expression
func (n *Node) Arguments() []*Node {
	args := n.ChildByField("arguments")
	if args == nil || args.Type != NodeArguments {
		return nil
	}
	return args.Statements()
}

// CalleeName returns the simple name of a call target: the identifier for
// foo(), the property for a.b.foo(), or "" when it cannot be determined.
func (n *Node) CalleeName() string {
	callee := n.Callee()
	if callee == nil {
		return ""
	}
	switch callee.Type {
	case NodeIdentifier:
		return callee.Name
	case NodeMemberExpression:
		if prop := callee.ChildByField("property"); prop != nil {
			return prop.Name
		}
	}
	return ""
}

// Ancestor returns the closest ancestor satisfying pred, or nil
func (n *Node) Ancestor(pred func(*Node) bool) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if pred(p) {
			return p
		}
	}
	return nil
}

// EnclosingFunction returns the closest function-like ancestor
func (n *Node) EnclosingFunction() *Node {
	return n.Ancestor(func(p *Node) bool { return p.IsFunction() })
}

// IsDescendantOf reports whether n lies inside ancestor
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Unparen strips any parenthesized expression wrappers
func (n *Node) Unparen() *Node {
	for n != nil && n.Type == NodeParenthesizedExpression {
		inner := n.Statements()
		if len(inner) == 0 {
			return n
		}
		n = inner[0]
	}
	return n
}

// StringValue returns the contents of a string literal without its quotes
func (n *Node) StringValue() string {
	if n == nil {
		return ""
	}
	text := n.Text
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return text[1 : len(text)-1]
		}
	}
	return text
}

// String returns a string representation of the node
func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s(%s) at %s", n.Type, n.Name, n.Location)
	}
	return fmt.Sprintf("%s at %s", n.Type, n.Location)
}

// IsStatement returns true if the node is a statement
func (n *Node) IsStatement() bool {
	switch n.Type {
	case NodeIfStatement, NodeSwitchStatement,
		NodeForStatement, NodeForInStatement, NodeForOfStatement,
		NodeWhileStatement, NodeDoWhileStatement,
		NodeTryStatement, NodeReturnStatement, NodeThrowStatement,
		NodeBreakStatement, NodeContinueStatement,
		NodeVariableDeclaration, NodeFunction,
		NodeExpressionStatement, NodeBlockStatement:
		return true
	}
	return false
}

// IsFunction returns true if the node is a function
func (n *Node) IsFunction() bool {
	switch n.Type {
	case NodeFunction, NodeArrowFunction, NodeGeneratorFunction,
		NodeFunctionExpression, NodeMethodDefinition:
		return true
	}
	return false
}

// IsLoop returns true for for, for-in, for-of, while and do-while statements
func (n *Node) IsLoop() bool {
	switch n.Type {
	case NodeForStatement, NodeForInStatement, NodeForOfStatement,
		NodeWhileStatement, NodeDoWhileStatement:
		return true
	}
	return false
}

// FunctionName returns a display name for a function-like node, falling back
// to the variable or property it is assigned to.
func (n *Node) FunctionName() string {
	if n.Name != "" {
		return n.Name
	}
	if p := n.Parent; p != nil {
		switch p.Type {
		case NodeVariableDeclarator, NodeProperty:
			if p.Name != "" {
				return p.Name
			}
		case NodeAssignmentExpression:
			if left := p.ChildByField("left"); left != nil {
				return strings.TrimSpace(left.Text)
			}
		}
	}
	return "<anonymous>"
}
