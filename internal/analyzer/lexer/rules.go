// File: rules.go
// Title: Lexical Rule Matchers
// Description: Prefix matchers backing the fixed-priority rule table.
//              Every matcher returns the length of the matched prefix in
//              bytes, or zero when the rule does not apply at the current
//              position. Matchers never consume input themselves.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-14
// Modified: 2026-08-14
//
// Change History:
// - 2026-08-14 v0.1.0: Initial matcher implementations

package lexer

import "strings"

// matchExact returns a matcher for a fixed literal
func matchExact(lit string) func(string) int {
	return func(src string) int {
		if strings.HasPrefix(src, lit) {
			return len(lit)
		}
		return 0
	}
}

// matchWhitespace matches a run of spaces and tabs. Whitespace is
// recognized but yields no token.
func matchWhitespace(src string) int {
	n := 0
	for n < len(src) && (src[n] == ' ' || src[n] == '\t') {
		n++
	}
	return n
}

// matchNewline matches \n or \r\n
func matchNewline(src string) int {
	if strings.HasPrefix(src, "\r\n") {
		return 2
	}
	if len(src) > 0 && src[0] == '\n' {
		return 1
	}
	return 0
}

// matchComment matches a line comment up to (not including) the newline
func matchComment(src string) int {
	if len(src) == 0 || src[0] != '#' {
		return 0
	}
	n := 1
	for n < len(src) && src[n] != '\n' {
		n++
	}
	return n
}

// matchTripleString matches a triple-quoted string, delimited by three
// single or three double quotes, including embedded newlines. An
// unterminated triple quote does not match at all; the opening quotes
// then fall through to the single/double-quoted string rule.
func matchTripleString(src string) int {
	var delim string
	switch {
	case strings.HasPrefix(src, `'''`):
		delim = `'''`
	case strings.HasPrefix(src, `"""`):
		delim = `"""`
	default:
		return 0
	}

	i := 3
	for i < len(src) {
		if src[i] == '\\' {
			i += 2
			continue
		}
		if strings.HasPrefix(src[i:], delim) {
			return i + 3
		}
		i++
	}
	return 0
}

// matchString matches from an opening quote up to and including the next
// unescaped quote character of either kind, or up to the end of the line
// when no close is found. Quote mismatch and escape validation happen in
// the consumer.
func matchString(src string) int {
	if len(src) == 0 || (src[0] != '\'' && src[0] != '"') {
		return 0
	}

	i := 1
	for i < len(src) {
		c := src[i]
		if c == '\\' && i+1 < len(src) {
			i += 2
			continue
		}
		if c == '\'' || c == '"' {
			return i + 1
		}
		if c == '\n' {
			return i
		}
		i++
	}
	return i
}

// matchFloat matches the two float forms, digits.digits first, then
// .digits. A number immediately followed by an identifier character does
// not match; the whole word then reaches the identifier rule so the
// parser can diagnose its shape.
func matchFloat(src string) int {
	intPart := countDigits(src, 0)
	if intPart > 0 && intPart < len(src) && src[intPart] == '.' {
		fracPart := countDigits(src, intPart+1)
		if fracPart > 0 {
			return numberLen(src, intPart+1+fracPart)
		}
		return 0
	}
	if len(src) > 0 && src[0] == '.' {
		fracPart := countDigits(src, 1)
		if fracPart > 0 {
			return numberLen(src, 1+fracPart)
		}
	}
	return 0
}

// matchInteger matches the four radix forms: hex, octal, binary, decimal
func matchInteger(src string) int {
	if len(src) >= 2 && src[0] == '0' {
		switch src[1] {
		case 'x', 'X':
			if n := countWhere(src, 2, isHexDigit); n > 0 {
				return numberLen(src, 2+n)
			}
		case 'o', 'O':
			if n := countWhere(src, 2, isOctalDigit); n > 0 {
				return numberLen(src, 2+n)
			}
		case 'b', 'B':
			if n := countWhere(src, 2, isBinaryDigit); n > 0 {
				return numberLen(src, 2+n)
			}
		}
	}
	return numberLen(src, countDigits(src, 0))
}

// numberLen rejects a numeric match that runs directly into a letter or
// underscore
func numberLen(src string, n int) int {
	if n > 0 && n < len(src) && isIdentStart(src[n]) {
		return 0
	}
	return n
}

// compoundAssignOps is ordered longest-first so that **= wins over *=
var compoundAssignOps = []string{
	"**=", "//=", "<<=", ">>=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
}

func matchCompoundAssign(src string) int {
	for _, op := range compoundAssignOps {
		if strings.HasPrefix(src, op) {
			return len(op)
		}
	}
	return 0
}

// symbolicOps is ordered longest-first. Division and simple assignment
// have their own later rules and are deliberately absent here.
var symbolicOps = []string{
	"**", "//", "<<", ">>", "==", "!=", "<=", ">=",
	"<", ">", "+", "-", "*", "%", "&", "|", "^", "~",
}

func matchOperator(src string) int {
	for _, op := range symbolicOps {
		if strings.HasPrefix(src, op) {
			return len(op)
		}
	}
	return 0
}

// wordOps are the logical, identity and membership operators. A match
// requires an identifier boundary so that e.g. "android" stays an
// identifier.
var wordOps = []string{"and", "or", "not", "in", "is"}

func matchWordOperator(src string) int {
	for _, op := range wordOps {
		if !strings.HasPrefix(src, op) {
			continue
		}
		if len(src) == len(op) || !isIdentChar(src[len(op)]) {
			return len(op)
		}
	}
	return 0
}

// matchIdentifier matches a maximal run of word characters. Digit-leading
// words (e.g. "2x") reach this rule because the number rules refuse them;
// the parser diagnoses their shape during identifier validation.
func matchIdentifier(src string) int {
	n := 0
	for n < len(src) && isIdentChar(src[n]) {
		n++
	}
	return n
}

// Character class helpers

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDecimalDigit(c)
}

func isDecimalDigit(c byte) bool { return '0' <= c && c <= '9' }
func isOctalDigit(c byte) bool   { return '0' <= c && c <= '7' }
func isBinaryDigit(c byte) bool  { return c == '0' || c == '1' }
func isHexDigit(c byte) bool {
	return isDecimalDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func countDigits(s string, from int) int {
	return countWhere(s, from, isDecimalDigit)
}

func countWhere(s string, from int, pred func(byte) bool) int {
	n := 0
	for from+n < len(s) && pred(s[from+n]) {
		n++
	}
	return n
}
