package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ASTBuilder builds our internal AST from tree-sitter CST
type ASTBuilder struct {
	filename string
	source   []byte
	text     string
}

// NewASTBuilder creates a new AST builder
func NewASTBuilder(filename string, source []byte) *ASTBuilder {
	return &ASTBuilder{
		filename: filename,
		source:   source,
		text:     string(source),
	}
}

// Build builds the AST from a tree-sitter node
func (b *ASTBuilder) Build(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}
	return b.buildNode(tsNode)
}

// buildNode converts a tree-sitter node and its named children. Anonymous
// tokens (punctuation, keywords) are folded into Operator/Kind/Async fields.
func (b *ASTBuilder) buildNode(tsNode *sitter.Node) *Node {
	node := NewNode(b.mapNodeType(tsNode))
	node.TSType = tsNode.Type()
	node.Location = b.getLocation(tsNode)
	node.Text = b.content(tsNode)

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil || !child.IsNamed() || child.IsMissing() {
			continue
		}
		node.AddChild(b.buildNode(child), tsNode.FieldNameForChild(i))
	}

	b.decorate(node, tsNode)
	return node
}

// mapNodeType maps tree-sitter node types to our AST node types
func (b *ASTBuilder) mapNodeType(tsNode *sitter.Node) NodeType {
	switch tsNode.Type() {
	case "program":
		return NodeProgram
	case "comment", "html_comment":
		return NodeComment
	case "ERROR":
		return NodeError
	case "function_declaration":
		return NodeFunction
	case "function_expression", "function", "generator_function":
		return NodeFunctionExpression
	case "arrow_function":
		return NodeArrowFunction
	case "generator_function_declaration":
		return NodeGeneratorFunction
	case "method_definition":
		return NodeMethodDefinition
	case "formal_parameters":
		return NodeFormalParameters
	case "required_parameter":
		return NodeRequiredParameter
	case "optional_parameter":
		return NodeOptionalParameter
	case "class_declaration", "class", "abstract_class_declaration":
		return NodeClass
	case "class_body":
		return NodeClassBody
	case "variable_declaration", "lexical_declaration":
		return NodeVariableDeclaration
	case "variable_declarator":
		return NodeVariableDeclarator
	case "identifier", "shorthand_property_identifier":
		return NodeIdentifier
	case "property_identifier", "private_property_identifier":
		return NodePropertyIdentifier
	case "shorthand_property_identifier_pattern":
		return NodeShorthandPattern
	case "array_pattern":
		return NodeArrayPattern
	case "object_pattern":
		return NodeObjectPattern
	case "assignment_pattern":
		return NodeAssignmentPattern
	case "rest_pattern":
		return NodeRestPattern
	case "if_statement":
		return NodeIfStatement
	case "else_clause":
		return NodeElseClause
	case "switch_statement":
		return NodeSwitchStatement
	case "switch_body":
		return NodeSwitchBody
	case "switch_case":
		return NodeCaseClause
	case "switch_default":
		return NodeDefaultClause
	case "for_statement":
		return NodeForStatement
	case "for_in_statement":
		// tree-sitter uses for_in_statement for both for-in and for-of
		if op := tsNode.ChildByFieldName("operator"); op != nil && b.content(op) == "of" {
			return NodeForOfStatement
		}
		return NodeForInStatement
	case "while_statement":
		return NodeWhileStatement
	case "do_statement":
		return NodeDoWhileStatement
	case "break_statement":
		return NodeBreakStatement
	case "continue_statement":
		return NodeContinueStatement
	case "return_statement":
		return NodeReturnStatement
	case "throw_statement":
		return NodeThrowStatement
	case "try_statement":
		return NodeTryStatement
	case "catch_clause":
		return NodeCatchClause
	case "finally_clause":
		return NodeFinallyClause
	case "call_expression":
		return NodeCallExpression
	case "arguments":
		return NodeArguments
	case "member_expression":
		return NodeMemberExpression
	case "subscript_expression":
		return NodeSubscriptExpression
	case "binary_expression":
		if op := tsNode.ChildByFieldName("operator"); op != nil && isLogicalOperator(b.content(op)) {
			return NodeLogicalExpression
		}
		return NodeBinaryExpression
	case "unary_expression":
		return NodeUnaryExpression
	case "ternary_expression", "conditional_expression":
		return NodeConditionalExpression
	case "assignment_expression":
		return NodeAssignmentExpression
	case "augmented_assignment_expression":
		return NodeAugmentedAssignment
	case "update_expression":
		return NodeUpdateExpression
	case "new_expression":
		return NodeNewExpression
	case "await_expression":
		return NodeAwaitExpression
	case "yield_expression":
		return NodeYieldExpression
	case "parenthesized_expression":
		return NodeParenthesizedExpression
	case "spread_element":
		return NodeSpreadElement
	case "template_string":
		return NodeTemplateLiteral
	case "template_substitution":
		return NodeTemplateSubstitution
	case "string":
		return NodeStringLiteral
	case "number":
		return NodeNumberLiteral
	case "true", "false":
		return NodeBooleanLiteral
	case "null":
		return NodeNullLiteral
	case "regex":
		return NodeRegExpLiteral
	case "array":
		return NodeArrayExpression
	case "object":
		return NodeObjectExpression
	case "pair":
		return NodeProperty
	case "import_statement":
		return NodeImportDeclaration
	case "export_statement":
		return NodeExportDeclaration
	case "expression_statement":
		return NodeExpressionStatement
	case "statement_block":
		return NodeBlockStatement
	case "empty_statement":
		return NodeEmptyStatement
	case "labeled_statement":
		return NodeLabeledStatement
	case "jsx_attribute":
		return NodeJSXAttribute
	default:
		// Unknown nodes keep their tree-sitter type
		return NodeType(tsNode.Type())
	}
}

// decorate fills the convenience fields that depend on anonymous tokens
func (b *ASTBuilder) decorate(node *Node, tsNode *sitter.Node) {
	switch node.Type {
	case NodeFunction, NodeFunctionExpression, NodeArrowFunction,
		NodeGeneratorFunction, NodeMethodDefinition:
		if nameNode := tsNode.ChildByFieldName("name"); nameNode != nil {
			node.Name = b.content(nameNode)
		}
		for i := 0; i < int(tsNode.ChildCount()); i++ {
			child := tsNode.Child(i)
			if child == nil || child.IsNamed() {
				continue
			}
			switch child.Type() {
			case "async":
				node.Async = true
			case "*":
				node.Generator = true
			}
		}
		if strings.Contains(tsNode.Type(), "generator") {
			node.Generator = true
		}

	case NodeClass:
		if nameNode := tsNode.ChildByFieldName("name"); nameNode != nil {
			node.Name = b.content(nameNode)
		}

	case NodeVariableDeclaration:
		node.Kind = "var"
		if kindNode := tsNode.ChildByFieldName("kind"); kindNode != nil {
			node.Kind = b.content(kindNode)
		} else if tsNode.ChildCount() > 0 {
			if first := tsNode.Child(0); first != nil {
				if kind := b.content(first); kind == "let" || kind == "const" {
					node.Kind = kind
				}
			}
		}

	case NodeVariableDeclarator:
		if nameNode := node.ChildByField("name"); nameNode != nil && nameNode.Type == NodeIdentifier {
			node.Name = nameNode.Name
		}

	case NodeRequiredParameter, NodeOptionalParameter:
		if pattern := node.ChildByField("pattern"); pattern != nil && pattern.Type == NodeIdentifier {
			node.Name = pattern.Name
		}

	case NodeIdentifier, NodePropertyIdentifier, NodeShorthandPattern:
		node.Name = node.Text

	case NodeProperty:
		if key := node.ChildByField("key"); key != nil {
			node.Name = key.StringValue()
		}

	case NodeForInStatement, NodeForOfStatement:
		if op := tsNode.ChildByFieldName("operator"); op != nil {
			node.Operator = b.content(op)
		}
		if kindNode := tsNode.ChildByFieldName("kind"); kindNode != nil {
			node.Kind = b.content(kindNode)
		}

	case NodeBinaryExpression, NodeLogicalExpression, NodeUnaryExpression,
		NodeUpdateExpression, NodeAssignmentExpression, NodeAugmentedAssignment:
		if op := tsNode.ChildByFieldName("operator"); op != nil {
			node.Operator = b.content(op)
		} else if node.Type == NodeAssignmentExpression {
			node.Operator = "="
		}
	}
}

// getLocation extracts location information from a tree-sitter node
func (b *ASTBuilder) getLocation(tsNode *sitter.Node) Location {
	return Location{
		File:      b.filename,
		StartLine: int(tsNode.StartPoint().Row) + 1,
		StartCol:  int(tsNode.StartPoint().Column),
		EndLine:   int(tsNode.EndPoint().Row) + 1,
		EndCol:    int(tsNode.EndPoint().Column),
	}
}

// content slices the shared source string so nodes do not copy text
func (b *ASTBuilder) content(tsNode *sitter.Node) string {
	start, end := int(tsNode.StartByte()), int(tsNode.EndByte())
	if start < 0 || end > len(b.text) || start > end {
		return ""
	}
	return b.text[start:end]
}

func isLogicalOperator(op string) bool {
	return op == "&&" || op == "||" || op == "??"
}
