// File: keywords.go
// Title: Reserved Word Tables
// Description: Constant lookup tables for the 35 reserved words of the
//              analyzed grammar, split into three disjoint sets (booleans,
//              the none literal, keywords). Generic identifiers matched by
//              the scanner are reclassified against these tables.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-14
// Modified: 2026-08-14
//
// Change History:
// - 2026-08-14 v0.1.0: Initial reserved word tables

package token

// booleanWords and noneWord are checked before the keyword table so that
// True/False/None never surface as KEYWORD tokens.
var booleanWords = map[string]struct{}{
	"True":  {},
	"False": {},
}

const noneWord = "None"

// keywordWords holds the remaining reserved words
var keywordWords = map[string]struct{}{
	"and":      {},
	"as":       {},
	"assert":   {},
	"async":    {},
	"await":    {},
	"break":    {},
	"class":    {},
	"continue": {},
	"def":      {},
	"del":      {},
	"elif":     {},
	"else":     {},
	"except":   {},
	"finally":  {},
	"for":      {},
	"from":     {},
	"global":   {},
	"if":       {},
	"import":   {},
	"in":       {},
	"is":       {},
	"lambda":   {},
	"nonlocal": {},
	"not":      {},
	"or":       {},
	"pass":     {},
	"raise":    {},
	"return":   {},
	"try":      {},
	"while":    {},
	"with":     {},
	"yield":    {},
}

// Classify maps a matched identifier to its final token type
func Classify(ident string) Type {
	if _, ok := booleanWords[ident]; ok {
		return Boolean
	}
	if ident == noneWord {
		return None
	}
	if _, ok := keywordWords[ident]; ok {
		return Keyword
	}
	return Identifier
}

// IsReserved reports whether the text is one of the 35 reserved words
func IsReserved(s string) bool {
	if _, ok := booleanWords[s]; ok {
		return true
	}
	if s == noneWord {
		return true
	}
	_, ok := keywordWords[s]
	return ok
}

// ReservedCount returns the size of the reserved word set
func ReservedCount() int {
	return len(booleanWords) + 1 + len(keywordWords)
}
