// File: nodes.go
// Title: Syntax Tree Node Definitions
// Description: Defines the node shape produced by the parser. Nodes carry
//              a string type tag (part of the wire contract), an optional
//              literal value, ordered children and a back-reference to the
//              originating token. Nodes are built fresh per parse and are
//              never mutated afterwards.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-14
// Modified: 2026-08-14
//
// Change History:
// - 2026-08-14 v0.1.0: Initial node definitions

package ast

import (
	"fmt"
	"strings"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/token"
)

// Kind is the string type tag of a node. Consumers match on these exact
// values.
type Kind string

const (
	KindProgram        Kind = "Program"
	KindAssignment     Kind = "Assignment"
	KindIdentifier     Kind = "Identifier"
	KindIntegerLiteral Kind = "IntegerLiteral"
	KindFloatLiteral   Kind = "FloatLiteral"
	KindStringLiteral  Kind = "StringLiteral"
	KindBooleanLiteral Kind = "BooleanLiteral"
	KindNoneLiteral    Kind = "NoneLiteral"
)

// Node is a single syntax tree node. Literal values keep the source text
// verbatim; no numeric conversion happens during parsing.
type Node struct {
	Type     Kind         `json:"type"`
	Value    string       `json:"value,omitempty"`
	Children []*Node      `json:"children,omitempty"`
	Token    *token.Token `json:"token,omitempty"`
}

// NewProgram creates the synthetic root node holding the ordered list of
// recognized top-level statements
func NewProgram(statements []*Node) *Node {
	return &Node{
		Type:     KindProgram,
		Children: statements,
	}
}

// NewAssignment creates an assignment statement node. The value is the
// assignment target text; the single child is the right-hand expression.
func NewAssignment(target token.Token, expr *Node) *Node {
	tok := target
	return &Node{
		Type:     KindAssignment,
		Value:    target.Value,
		Children: []*Node{expr},
		Token:    &tok,
	}
}

// NewLeaf creates a leaf expression node tagged by kind, storing the
// literal source text verbatim plus its token back-reference
func NewLeaf(kind Kind, tok token.Token) *Node {
	t := tok
	return &Node{
		Type:  kind,
		Value: tok.Value,
		Token: &t,
	}
}

// LeafKind maps an expression token type to the node kind wrapping it.
// The boolean result is false for token types that cannot form a primary
// expression.
func LeafKind(typ token.Type) (Kind, bool) {
	switch typ {
	case token.Identifier:
		return KindIdentifier, true
	case token.Integer:
		return KindIntegerLiteral, true
	case token.Float:
		return KindFloatLiteral, true
	case token.String:
		return KindStringLiteral, true
	case token.Boolean:
		return KindBooleanLiteral, true
	case token.None:
		return KindNoneLiteral, true
	default:
		return "", false
	}
}

// StatementCount returns the number of direct statements under a Program
// node; zero for any other node
func (n *Node) StatementCount() int {
	if n == nil || n.Type != KindProgram {
		return 0
	}
	return len(n.Children)
}

// String renders a compact single-line representation, useful in logs and
// test failure messages
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Type {
	case KindProgram:
		parts := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			parts = append(parts, c.String())
		}
		return fmt.Sprintf("Program(%s)", strings.Join(parts, "; "))
	case KindAssignment:
		return fmt.Sprintf("%s = %s", n.Value, n.Children[0].String())
	default:
		return fmt.Sprintf("%s(%s)", n.Type, n.Value)
	}
}
