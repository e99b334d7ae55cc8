// File: parser.go
// Title: Recursive Descent Parser
// Description: Implements the parsing phase of source analysis. Consumes
//              the token stream produced by the lexer, derives the two
//              recognized statement shapes (assignment and bare expression
//              statement), validates identifiers semantically, and
//              resynchronizes after hard failures using panic-mode
//              recovery. Statement derivation communicates through an
//              explicit result type; no raised failure is ever used for
//              control transfer.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-14
// Modified: 2026-08-14
//
// Change History:
// - 2026-08-14 v0.1.0: Initial parser implementation

package parser

import (
	"fmt"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/ast"
	"github.com/AnderBEz/thuCompiler/internal/analyzer/token"
	"github.com/AnderBEz/thuCompiler/pkg/core/logging"
)

// Parser derives syntax trees from token streams. A Parser carries only
// configuration; every Parse call runs against its own cursor and
// diagnostic accumulator and may proceed concurrently with others.
type Parser struct {
	logger *logging.Logger
}

// Options configures parser behavior
type Options struct {
	Logger *logging.Logger
}

// New creates a parser with the given options
func New(opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = logging.New("parser")
	}
	return &Parser{logger: logger}
}

// Parse consumes a token sequence and returns the Program node together
// with the ordered list of syntactic diagnostics. The tree is nil exactly
// when zero statements were derived; an all-error input yields a nil tree
// and a non-empty diagnostic list.
func (p *Parser) Parse(tokens []token.Token) (*ast.Node, []token.Diagnostic) {
	s := &state{tokens: prepare(tokens)}

	var statements []*ast.Node
	for {
		s.skipNewlines()
		if s.current().Type == token.EOF {
			break
		}

		res := s.parseStatement()
		switch res.outcome {
		case stmtOK:
			statements = append(statements, res.node)
		case stmtFailed:
			s.errs = append(s.errs, res.diag)
			s.recoverStatement()
		case stmtSkipped:
			// a lexical error token was reported and consumed; the
			// loop continues without recovery
		}
	}

	p.logger.Debug("parse completed",
		"statements", len(statements),
		"diagnostics", len(s.errs),
	)

	if len(statements) == 0 {
		return nil, s.errs
	}
	return ast.NewProgram(statements), s.errs
}

// prepare drops trivia tokens up front. Comment tokens never reach
// statement derivation; error tokens are retained so they can be reported
// in statement position. The sequence is normalized to end in EOF.
func prepare(tokens []token.Token) []token.Token {
	out := make([]token.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Type == token.Comment {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 || out[len(out)-1].Type != token.EOF {
		out = append(out, token.Token{Type: token.EOF, Line: 1, Column: 1})
	}
	return out
}

// state is the per-call cursor and diagnostic accumulator
type state struct {
	tokens []token.Token
	pos    int
	errs   []token.Diagnostic
}

// stmtOutcome tags the result of one statement derivation
type stmtOutcome int

const (
	stmtOK      stmtOutcome = iota // node derived
	stmtSkipped                    // token consumed, nothing derived, no recovery
	stmtFailed                     // hard failure, recovery required
)

// stmtResult is the explicit result type returned from statement
// derivation: success carries a node, failure carries the diagnostic.
type stmtResult struct {
	outcome stmtOutcome
	node    *ast.Node
	diag    token.Diagnostic
}

func success(node *ast.Node) stmtResult {
	return stmtResult{outcome: stmtOK, node: node}
}

func skipped() stmtResult {
	return stmtResult{outcome: stmtSkipped}
}

func failure(tok token.Token, message, suggestion string) stmtResult {
	return stmtResult{
		outcome: stmtFailed,
		diag: token.Diagnostic{
			Message:    message,
			Line:       tok.Line,
			Column:     tok.Column,
			Token:      tok,
			Suggestion: suggestion,
		},
	}
}

// parseStatement derives exactly one top-level statement
func (s *state) parseStatement() stmtResult {
	cur := s.current()

	switch {
	case cur.Type == token.Error:
		// surface the embedded lexical detail in statement position
		s.advance()
		s.errs = append(s.errs, cur.AsDiagnostic())
		return skipped()

	case cur.Type == token.Keyword:
		return failure(cur,
			fmt.Sprintf("keyword '%s' used incorrectly in this context", cur.Value),
			"keywords cannot start a statement here; use a variable name or literal")

	case cur.Type == token.Identifier && s.peek().Type == token.Assign:
		return s.parseAssignment()

	case isExpressionStart(cur.Type):
		return s.parseExpressionStatement()

	default:
		return failure(cur,
			"expected a declaration or expression",
			"start the statement with a variable name or a literal value")
	}
}

// parseAssignment derives `identifier = expression`. The two-token
// lookahead in parseStatement committed to this shape without consuming
// anything.
func (s *state) parseAssignment() stmtResult {
	target := s.current()
	s.validateIdentifier(target)
	s.advance() // identifier
	s.advance() // '='

	expr, diag := s.parsePrimary()
	if diag != nil {
		return stmtResult{outcome: stmtFailed, diag: *diag}
	}
	return success(ast.NewAssignment(target, expr))
}

// parseExpressionStatement derives a bare single-expression statement and
// guards against a literal appearing as an assignment target.
func (s *state) parseExpressionStatement() stmtResult {
	cur := s.current()
	if cur.Type == token.Identifier {
		s.validateIdentifier(cur)
	}

	expr, diag := s.parsePrimary()
	if diag != nil {
		return stmtResult{outcome: stmtFailed, diag: *diag}
	}

	if s.current().Type == token.Assign {
		return failure(s.current(),
			"cannot assign to a literal",
			"the left side of an assignment must be a variable name")
	}
	return success(expr)
}

// parsePrimary consumes exactly one expression token and wraps it as a
// leaf node. There is no operator, grouping or collection support.
func (s *state) parsePrimary() (*ast.Node, *token.Diagnostic) {
	cur := s.current()
	kind, ok := ast.LeafKind(cur.Type)
	if !ok {
		return nil, &token.Diagnostic{
			Message:    "expected a valid expression",
			Line:       cur.Line,
			Column:     cur.Column,
			Token:      cur,
			Suggestion: "provide a variable name or a literal value",
		}
	}
	s.advance()
	return ast.NewLeaf(kind, cur), nil
}

// validateIdentifier runs the semantic identifier checks. It never aborts
// derivation; a finding only appends a diagnostic and the identifier text
// is used unchanged.
func (s *state) validateIdentifier(tok token.Token) {
	msg, suggestion, found := identifierIssue(tok.Value)
	if !found {
		return
	}
	s.errs = append(s.errs, token.Diagnostic{
		Message:    msg,
		Line:       tok.Line,
		Column:     tok.Column,
		Token:      tok,
		Suggestion: suggestion,
	})
}

// identifierIssue checks an identifier's shape. Checks run in order and
// the first match wins.
func identifierIssue(text string) (message, suggestion string, found bool) {
	if len(text) > 0 && text[0] >= '0' && text[0] <= '9' {
		return "identifier cannot start with a digit",
			"identifiers must begin with a letter or underscore", true
	}
	if token.IsReserved(text) {
		return fmt.Sprintf("reserved word '%s' used as identifier", text),
			"choose a name that is not a reserved word", true
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		valid := c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
		if !valid || (i == 0 && '0' <= c && c <= '9') {
			return "invalid characters in identifier",
				"use only letters, digits and underscores, starting with a letter or underscore", true
		}
	}
	return "", "", false
}

// recoverStatement implements panic-mode resynchronization: the trigger
// token is consumed unconditionally, then tokens are discarded until a
// safe restart boundary. The cursor strictly advances, so the loop
// terminates on the EOF-terminated sequence.
func (s *state) recoverStatement() {
	justConsumed := s.consume()
	for {
		if justConsumed.Type == token.Newline {
			return
		}
		cur := s.current()
		switch {
		case cur.Type == token.EOF:
			return
		case cur.Type == token.Error:
			justConsumed = s.consume()
		case cur.Type == token.Identifier && s.peek().Type == token.Assign:
			return
		case isExpressionStart(cur.Type):
			return
		default:
			justConsumed = s.consume()
		}
	}
}

// isExpressionStart reports whether a token type can begin a primary
// expression
func isExpressionStart(typ token.Type) bool {
	switch typ {
	case token.Identifier, token.Integer, token.Float, token.String, token.Boolean, token.None:
		return true
	}
	return false
}

// Cursor helpers

func (s *state) current() token.Token {
	if s.pos >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[s.pos]
}

func (s *state) peek() token.Token {
	if s.pos+1 >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[s.pos+1]
}

func (s *state) advance() {
	if s.pos < len(s.tokens)-1 {
		s.pos++
	}
}

func (s *state) consume() token.Token {
	t := s.current()
	s.advance()
	return t
}

func (s *state) skipNewlines() {
	for s.current().Type == token.Newline {
		s.advance()
	}
}
