// File: parser_test.go
// Title: Parser Unit Tests
// Description: Tests for the restricted statement parser: assignment and
//              expression derivations, identifier validation, literal
//              target rejection, panic-mode recovery and the tree/diagnostic
//              contract.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-14
// Modified: 2026-08-14
//
// Change History:
// - 2026-08-14 v0.1.0: Initial parser test suite

package parser

import (
	"strings"
	"testing"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/ast"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/lexer"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/token"
)

// parse runs the full scan-then-parse pipeline, which is how every caller
// uses the parser in practice
func parse(t *testing.T, source string) (*ast.Node, []token.Diagnostic) {
	t.Helper()
	tokens, _ := lexer.Tokenize(source)
	return New(Options{}).Parse(tokens)
}

func TestParse_Assignments(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantStmts int
		wantDiags int
		check     func(t *testing.T, tree *ast.Node, diags []token.Diagnostic)
	}{
		{
			name:      "single assignment",
			source:    "x = 1",
			wantStmts: 1,
			check: func(t *testing.T, tree *ast.Node, _ []token.Diagnostic) {
				stmt := tree.Children[0]
				if stmt.Type != ast.KindAssignment || stmt.Value != "x" {
					t.Errorf("statement = %s, want Assignment(x)", stmt)
				}
				if len(stmt.Children) != 1 || stmt.Children[0].Type != ast.KindIntegerLiteral {
					t.Errorf("right side = %v, want IntegerLiteral", stmt.Children)
				}
			},
		},
		{
			name:      "multiple assignments keep source order",
			source:    "a = 1\nb = 2.5\nc = 'three'\nd = True\ne = None",
			wantStmts: 5,
			check: func(t *testing.T, tree *ast.Node, _ []token.Diagnostic) {
				wantTargets := []string{"a", "b", "c", "d", "e"}
				wantKinds := []ast.Kind{
					ast.KindIntegerLiteral, ast.KindFloatLiteral, ast.KindStringLiteral,
					ast.KindBooleanLiteral, ast.KindNoneLiteral,
				}
				for i, stmt := range tree.Children {
					if stmt.Value != wantTargets[i] {
						t.Errorf("statement %d target = %q, want %q", i, stmt.Value, wantTargets[i])
					}
					if stmt.Children[0].Type != wantKinds[i] {
						t.Errorf("statement %d value kind = %s, want %s", i, stmt.Children[0].Type, wantKinds[i])
					}
				}
			},
		},
		{
			name:      "identifier right side",
			source:    "alias = original",
			wantStmts: 1,
			check: func(t *testing.T, tree *ast.Node, _ []token.Diagnostic) {
				if rhs := tree.Children[0].Children[0]; rhs.Type != ast.KindIdentifier || rhs.Value != "original" {
					t.Errorf("right side = %s, want Identifier(original)", rhs)
				}
			},
		},
		{
			name:      "bare expression statements",
			source:    "42\n'hello'\nname",
			wantStmts: 3,
		},
		{
			name:      "comments and blank lines ignored",
			source:    "# header\n\nx = 1  # trailing\n\n# footer",
			wantStmts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, diags := parse(t, tt.source)
			if len(diags) != tt.wantDiags {
				t.Fatalf("diagnostics = %v, want %d", diags, tt.wantDiags)
			}
			if got := tree.StatementCount(); got != tt.wantStmts {
				t.Fatalf("statements = %d, want %d (tree %s)", got, tt.wantStmts, tree)
			}
			if tt.check != nil {
				tt.check(t, tree, diags)
			}
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, source := range []string{"", "\n\n", "# only a comment\n"} {
		tree, diags := parse(t, source)
		if tree != nil {
			t.Errorf("Parse(%q) tree = %s, want nil", source, tree)
		}
		if len(diags) != 0 {
			t.Errorf("Parse(%q) diagnostics = %v, want none", source, diags)
		}
	}
}

func TestParse_Diagnostics(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		wantStmts   int
		wantMessage string
		check       func(t *testing.T, tree *ast.Node, diags []token.Diagnostic)
	}{
		{
			name:        "literal assignment target",
			source:      "1 = 2",
			wantStmts:   1, // recovery resumes at "2", which stands alone
			wantMessage: "cannot assign to a literal",
			check: func(t *testing.T, tree *ast.Node, _ []token.Diagnostic) {
				for _, stmt := range tree.Children {
					if stmt.Type == ast.KindAssignment {
						t.Errorf("tree contains an Assignment node for a literal target: %s", stmt)
					}
				}
			},
		},
		{
			name:        "missing right side",
			source:      "x = 1\ny = ",
			wantStmts:   1,
			wantMessage: "expected a valid expression",
			check: func(t *testing.T, tree *ast.Node, _ []token.Diagnostic) {
				if tree.Children[0].Value != "x" {
					t.Errorf("surviving statement = %s, want the x assignment", tree.Children[0])
				}
			},
		},
		{
			name:        "keyword starting a statement",
			source:      "class = 5",
			wantStmts:   1, // recovery resumes at "5"
			wantMessage: "keyword 'class' used incorrectly in this context",
		},
		{
			name:        "keyword as right side",
			source:      "x = class",
			wantStmts:   0,
			wantMessage: "expected a valid expression",
		},
		{
			name:        "operator starting a statement",
			source:      "+ 1\nx = 2",
			wantStmts:   2, // recovery resumes at "1", which stands alone
			wantMessage: "expected a declaration or expression",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, diags := parse(t, tt.source)
			if len(diags) != 1 {
				t.Fatalf("diagnostics = %v, want exactly one", diags)
			}
			if diags[0].Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", diags[0].Message, tt.wantMessage)
			}
			if diags[0].Suggestion == "" {
				t.Error("expected a remediation suggestion")
			}
			if got := tree.StatementCount(); got != tt.wantStmts {
				t.Fatalf("statements = %d, want %d (tree %s)", got, tt.wantStmts, tree)
			}
			if tt.check != nil {
				tt.check(t, tree, diags)
			}
		})
	}
}

func TestParse_InvalidIdentifierShapeStillBuildsNode(t *testing.T) {
	// a digit-leading target is diagnosed but the assignment itself is kept
	tree, diags := parse(t, "2x = 5")

	if len(diags) != 1 || diags[0].Message != "identifier cannot start with a digit" {
		t.Fatalf("diagnostics = %v, want the digit-start message", diags)
	}
	if tree.StatementCount() != 1 {
		t.Fatalf("statements = %d, want 1 (tree %s)", tree.StatementCount(), tree)
	}
	stmt := tree.Children[0]
	if stmt.Type != ast.KindAssignment || stmt.Value != "2x" {
		t.Errorf("statement = %s, want Assignment(2x)", stmt)
	}
}

func TestParse_ErrorTokensBecomeDiagnostics(t *testing.T) {
	// the scanner's error token is consumed without aborting the parse
	tree, diags := parse(t, "$\nx = 1")

	if tree.StatementCount() != 1 {
		t.Fatalf("statements = %d, want 1 (tree %s)", tree.StatementCount(), tree)
	}
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one", diags)
	}
	if diags[0].Token.Value != "$" || diags[0].Line != 1 {
		t.Errorf("diagnostic = %+v, want the $ token at line 1", diags[0])
	}
}

func TestParse_RecoveryResumesAtNextStatement(t *testing.T) {
	// one bad statement per bad line, later statements unaffected
	source := strings.Join([]string{
		"a = 1",
		"class = oops",
		"b = 2",
		"3 = fail",
		"c = 3",
	}, "\n")

	tree, diags := parse(t, source)

	targets := make([]string, 0, 3)
	for _, stmt := range tree.Children {
		if stmt.Type == ast.KindAssignment {
			targets = append(targets, stmt.Value)
		}
	}
	for _, want := range []string{"a", "b", "c"} {
		found := false
		for _, got := range targets {
			if got == want {
				found = true
			}
		}
		if !found {
			t.Errorf("assignment %q lost during recovery (targets %v)", want, targets)
		}
	}
	if len(diags) < 2 {
		t.Errorf("diagnostics = %v, want at least one per bad statement", diags)
	}
}

func TestIdentifierIssue(t *testing.T) {
	tests := []struct {
		text        string
		wantMessage string
		wantFound   bool
	}{
		{"valid_name", "", false},
		{"_private", "", false},
		{"name2", "", false},
		{"2x", "identifier cannot start with a digit", true},
		{"9lives", "identifier cannot start with a digit", true},
		{"class", "reserved word 'class' used as identifier", true},
		{"for", "reserved word 'for' used as identifier", true},
		{"True", "reserved word 'True' used as identifier", true},
	}

	for _, tt := range tests {
		message, suggestion, found := identifierIssue(tt.text)
		if found != tt.wantFound {
			t.Errorf("identifierIssue(%q) found = %v, want %v", tt.text, found, tt.wantFound)
			continue
		}
		if message != tt.wantMessage {
			t.Errorf("identifierIssue(%q) message = %q, want %q", tt.text, message, tt.wantMessage)
		}
		if found && suggestion == "" {
			t.Errorf("identifierIssue(%q): expected a suggestion", tt.text)
		}
	}
}
