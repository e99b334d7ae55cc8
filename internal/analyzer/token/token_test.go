// File: token_test.go
// Title: Token Package Unit Tests
// Description: Tests for token type tags, reserved word classification and
//              the conversion of error tokens into diagnostics.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-14
// Modified: 2026-08-14
//
// Change History:
// - 2026-08-14 v0.1.0: Initial token tests

package token

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{EOF, "EOF"},
		{Error, "ERROR"},
		{Newline, "NEWLINE"},
		{Comment, "COMMENT"},
		{Identifier, "IDENTIFIER"},
		{Keyword, "KEYWORD"},
		{Integer, "INTEGER"},
		{Float, "FLOAT"},
		{String, "STRING"},
		{Boolean, "BOOLEAN"},
		{None, "NONE"},
		{Operator, "OPERATOR"},
		{Assign, "ASSIGN"},
		{CompoundAssign, "COMPOUND_ASSIGN"},
		{Arrow, "ARROW"},
		{LeftParen, "LPAREN"},
		{Semicolon, "SEMICOLON"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("Type(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestToken_JSONTags(t *testing.T) {
	tok := Token{Type: Identifier, Value: "count", Line: 2, Column: 5, Offset: 10}

	data, err := json.Marshal(tok)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	s := string(data)
	for _, want := range []string{`"type":"IDENTIFIER"`, `"value":"count"`, `"line":2`, `"column":5`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s missing %s", s, want)
		}
	}
	if strings.Contains(s, `"error"`) {
		t.Errorf("JSON %s should omit empty error detail", s)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		ident string
		want  Type
	}{
		{"True", Boolean},
		{"False", Boolean},
		{"None", None},
		{"class", Keyword},
		{"for", Keyword},
		{"yield", Keyword},
		{"async", Keyword},
		{"true", Identifier}, // case sensitive
		{"none", Identifier},
		{"counter", Identifier},
		{"_private", Identifier},
	}

	for _, tt := range tests {
		if got := Classify(tt.ident); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.ident, got, tt.want)
		}
	}
}

func TestReservedWordSet(t *testing.T) {
	if got := ReservedCount(); got != 35 {
		t.Errorf("ReservedCount() = %d, want 35", got)
	}

	for _, word := range []string{"True", "False", "None", "lambda", "nonlocal", "await"} {
		if !IsReserved(word) {
			t.Errorf("IsReserved(%q) = false, want true", word)
		}
	}
	if IsReserved("print") {
		t.Error("IsReserved(\"print\") = true, want false")
	}
}

func TestToken_AsDiagnostic(t *testing.T) {
	tok := Token{
		Type:   Error,
		Value:  "$",
		Line:   3,
		Column: 7,
		Err: &LexicalDetail{
			Message:    "unrecognized character '$'",
			Suggestion: "remove or replace this character",
		},
	}

	d := tok.AsDiagnostic()
	if d.Message != "unrecognized character '$'" {
		t.Errorf("Message = %q", d.Message)
	}
	if d.Line != 3 || d.Column != 7 {
		t.Errorf("position = %d:%d, want 3:7", d.Line, d.Column)
	}
	if d.Suggestion == "" {
		t.Error("expected a remediation suggestion")
	}
	if d.Token.Value != "$" {
		t.Errorf("offending token = %q, want \"$\"", d.Token.Value)
	}
}
