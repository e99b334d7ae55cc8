// File: token.go
// Title: Lexical Token Definitions
// Description: Defines the closed token type enumeration, the Token value
//              produced by the scanner, the embedded lexical-error detail
//              carried by error tokens, and the shared diagnostic shape
//              used by both the lexical and the syntactic error channels.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-14
// Modified: 2026-08-14
//
// Change History:
// - 2026-08-14 v0.1.0: Initial token definitions

package token

import "fmt"

// Type identifies the kind of a lexical token. The String form of each
// type is part of the wire contract; consumers match on these tags.
type Type int

const (
	// Special tokens
	EOF Type = iota
	Error

	// Layout and trivia
	Newline
	Comment

	// Identifiers and literals
	Identifier
	Keyword
	Integer
	Float
	String
	Boolean
	None

	// Operators
	Operator
	Assign
	CompoundAssign
	Arrow

	// Delimiters
	LeftParen
	RightParen
	LeftBracket
	RightBracket
	LeftBrace
	RightBrace
	Comma
	Colon
	Dot
	Semicolon
)

// String returns the wire tag for the token type
func (t Type) String() string {
	switch t {
	case EOF:
		return "EOF"
	case Error:
		return "ERROR"
	case Newline:
		return "NEWLINE"
	case Comment:
		return "COMMENT"
	case Identifier:
		return "IDENTIFIER"
	case Keyword:
		return "KEYWORD"
	case Integer:
		return "INTEGER"
	case Float:
		return "FLOAT"
	case String:
		return "STRING"
	case Boolean:
		return "BOOLEAN"
	case None:
		return "NONE"
	case Operator:
		return "OPERATOR"
	case Assign:
		return "ASSIGN"
	case CompoundAssign:
		return "COMPOUND_ASSIGN"
	case Arrow:
		return "ARROW"
	case LeftParen:
		return "LPAREN"
	case RightParen:
		return "RPAREN"
	case LeftBracket:
		return "LBRACKET"
	case RightBracket:
		return "RBRACKET"
	case LeftBrace:
		return "LBRACE"
	case RightBrace:
		return "RBRACE"
	case Comma:
		return "COMMA"
	case Colon:
		return "COLON"
	case Dot:
		return "DOT"
	case Semicolon:
		return "SEMICOLON"
	default:
		return "UNKNOWN"
	}
}

// MarshalText serializes the type as its wire tag
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// LexicalDetail carries the error information embedded in an Error token
type LexicalDetail struct {
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// Token is an atomic lexical unit with exact source position information.
// Tokens are immutable once produced by a scan. The synthetic EOF token
// has an empty value and no source span.
type Token struct {
	Type   Type           `json:"type"`
	Value  string         `json:"value"`
	Line   int            `json:"line"`   // 1-based
	Column int            `json:"column"` // 1-based
	Offset int            `json:"offset"` // 0-based byte offset
	Err    *LexicalDetail `json:"error,omitempty"`
}

// String returns a compact representation for logs and error messages
func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "EOF"
	case Error:
		return fmt.Sprintf("ERROR(%q)", t.Value)
	default:
		return fmt.Sprintf("%s(%s)", t.Type.String(), t.Value)
	}
}

// Diagnostic is the shared shape of lexical and syntactic findings. The
// two channels are never merged; each analysis returns separate ordered
// lists of this type.
type Diagnostic struct {
	Message    string `json:"message"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	Token      Token  `json:"token"`
	Suggestion string `json:"suggestion"`
}

// AsDiagnostic converts an error token into the shared diagnostic shape,
// reusing the embedded lexical detail
func (t Token) AsDiagnostic() Diagnostic {
	d := Diagnostic{
		Message:    "lexical error",
		Line:       t.Line,
		Column:     t.Column,
		Token:      t,
		Suggestion: "",
	}
	if t.Err != nil {
		d.Message = t.Err.Message
		d.Suggestion = t.Err.Suggestion
	}
	return d
}
