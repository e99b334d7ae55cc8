// File: lexer.go
// Title: Pattern-Table Lexical Analyzer
// Description: Implements the scanning phase of source analysis. Converts
//              raw source text into an ordered token stream plus a separate
//              list of lexical-error tokens. Scanning is driven by a fixed
//              priority table of (matcher, consumer) rules evaluated
//              strictly in order; the first rule matching a non-empty
//              prefix wins.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-14
// Modified: 2026-08-14
//
// Change History:
// - 2026-08-14 v0.1.0: Initial lexer implementation

package lexer

import (
	"fmt"

	"github.com/AnderBEz/thuCompiler/internal/analyzer/token"
)

// Lexer scans one input string. It is single use; Tokenize consumes the
// whole input in one call and keeps no state between calls.
type Lexer struct {
	input  string
	pos    int // byte offset of the next unread character
	line   int // 1-based line of the next unread character
	column int // 1-based column of the next unread character

	tokens []token.Token
	errs   []token.Token
}

// Tokenize scans the complete source text and returns the ordered token
// sequence (terminated by exactly one EOF token) together with the ordered
// list of error-tagged tokens. Error tokens appear in both sequences.
func Tokenize(source string) ([]token.Token, []token.Token) {
	lx := &Lexer{
		input:  source,
		line:   1,
		column: 1,
	}
	lx.run()
	return lx.tokens, lx.errs
}

// rule couples a prefix matcher with its consumer. The table below is
// evaluated strictly top to bottom; ordering is load-bearing (**= before
// *= before *, -> before -).
type rule struct {
	name    string
	match   func(src string) int
	consume func(lx *Lexer, lexeme string, line, column, offset int)
}

var rules = []rule{
	{"whitespace", matchWhitespace, consumeNothing},
	{"newline", matchNewline, consumeType(token.Newline)},
	{"comment", matchComment, consumeType(token.Comment)},
	{"triple-string", matchTripleString, consumeType(token.String)},
	{"string", matchString, consumeString},
	{"float", matchFloat, consumeType(token.Float)},
	{"integer", matchInteger, consumeType(token.Integer)},
	{"compound-assign", matchCompoundAssign, consumeType(token.CompoundAssign)},
	{"arrow", matchExact("->"), consumeType(token.Arrow)},
	{"operator", matchOperator, consumeType(token.Operator)},
	{"word-operator", matchWordOperator, consumeType(token.Operator)},
	{"assign", matchExact("="), consumeType(token.Assign)},
	{"division", matchExact("/"), consumeType(token.Operator)},
	{"lparen", matchExact("("), consumeType(token.LeftParen)},
	{"rparen", matchExact(")"), consumeType(token.RightParen)},
	{"lbracket", matchExact("["), consumeType(token.LeftBracket)},
	{"rbracket", matchExact("]"), consumeType(token.RightBracket)},
	{"lbrace", matchExact("{"), consumeType(token.LeftBrace)},
	{"rbrace", matchExact("}"), consumeType(token.RightBrace)},
	{"comma", matchExact(","), consumeType(token.Comma)},
	{"colon", matchExact(":"), consumeType(token.Colon)},
	{"dot", matchExact("."), consumeType(token.Dot)},
	{"semicolon", matchExact(";"), consumeType(token.Semicolon)},
	{"identifier", matchIdentifier, consumeIdentifier},
}

// run drives the scan loop until the input is exhausted, then appends the
// synthetic EOF token.
func (lx *Lexer) run() {
	for lx.pos < len(lx.input) {
		rest := lx.input[lx.pos:]
		line, column, offset := lx.line, lx.column, lx.pos

		matched := false
		for _, r := range rules {
			n := r.match(rest)
			if n <= 0 {
				continue
			}
			lexeme := rest[:n]
			lx.advance(lexeme)
			r.consume(lx, lexeme, line, column, offset)
			matched = true
			break
		}

		if !matched {
			lexeme := rest[:1]
			lx.advance(lexeme)
			lx.emitError(lexeme, line, column, offset,
				fmt.Sprintf("unrecognized character %q", lexeme),
				"remove or replace this character")
		}
	}

	lx.tokens = append(lx.tokens, token.Token{
		Type:   token.EOF,
		Value:  "",
		Line:   lx.line,
		Column: lx.column,
		Offset: len(lx.input),
	})
}

// advance updates the position counters for every consumed byte. A newline
// increments the line and resets the column to 1; anything else increments
// the column. Diagnostics depend on this being exact.
func (lx *Lexer) advance(lexeme string) {
	for i := 0; i < len(lexeme); i++ {
		if lexeme[i] == '\n' {
			lx.line++
			lx.column = 1
		} else {
			lx.column++
		}
	}
	lx.pos += len(lexeme)
}

func (lx *Lexer) emit(typ token.Type, lexeme string, line, column, offset int) {
	lx.tokens = append(lx.tokens, token.Token{
		Type:   typ,
		Value:  lexeme,
		Line:   line,
		Column: column,
		Offset: offset,
	})
}

func (lx *Lexer) emitError(lexeme string, line, column, offset int, message, suggestion string) {
	tok := token.Token{
		Type:   token.Error,
		Value:  lexeme,
		Line:   line,
		Column: column,
		Offset: offset,
		Err: &token.LexicalDetail{
			Message:    message,
			Suggestion: suggestion,
		},
	}
	lx.tokens = append(lx.tokens, tok)
	lx.errs = append(lx.errs, tok)
}

// Consumers

func consumeNothing(lx *Lexer, lexeme string, line, column, offset int) {}

func consumeType(typ token.Type) func(lx *Lexer, lexeme string, line, column, offset int) {
	return func(lx *Lexer, lexeme string, line, column, offset int) {
		lx.emit(typ, lexeme, line, column, offset)
	}
}

// consumeIdentifier reclassifies the matched text against the reserved
// word tables before emitting.
func consumeIdentifier(lx *Lexer, lexeme string, line, column, offset int) {
	lx.emit(token.Classify(lexeme), lexeme, line, column, offset)
}

// consumeString validates a single/double-quoted match before accepting
// it. Validation failures produce an error token instead of a string
// token; the matched span is consumed either way.
func consumeString(lx *Lexer, lexeme string, line, column, offset int) {
	if detail := validateString(lexeme); detail != nil {
		lx.emitError(lexeme, line, column, offset, detail.Message, detail.Suggestion)
		return
	}
	lx.emit(token.String, lexeme, line, column, offset)
}

// validateString rejects unterminated strings (missing close, or opening
// and closing quote characters that differ) and disallowed escapes.
func validateString(lexeme string) *token.LexicalDetail {
	open := lexeme[0]
	last := lexeme[len(lexeme)-1]
	terminated := len(lexeme) >= 2 && (last == '\'' || last == '"') && !escapedAt(lexeme, len(lexeme)-1)

	if !terminated || last != open {
		return &token.LexicalDetail{
			Message:    "unterminated string literal",
			Suggestion: fmt.Sprintf("close the string with a matching %c quote", open),
		}
	}

	body := lexeme[1 : len(lexeme)-1]
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' {
			continue
		}
		if i+1 >= len(body) {
			break
		}
		next := body[i+1]
		if !allowedEscape(next) {
			return &token.LexicalDetail{
				Message:    fmt.Sprintf("invalid escape sequence '\\%c'", next),
				Suggestion: `use one of the supported escapes: \' \" \\ \n \t \r \b \f \v \0`,
			}
		}
		i++ // skip the escaped character
	}
	return nil
}

// allowedEscape reports whether c may follow a backslash inside a
// single/double-quoted string
func allowedEscape(c byte) bool {
	switch c {
	case '\'', '"', '\\', 'n', 't', 'r', 'b', 'f', 'v', '0':
		return true
	}
	return false
}

// escapedAt reports whether the byte at index i is preceded by an odd run
// of backslashes
func escapedAt(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
