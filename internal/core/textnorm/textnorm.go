// Package textnorm holds the shared text cleanup helpers used by the
// correction stages: input normalization, punctuation and whitespace
// tightening, and case-pattern preservation for word replacements
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces       = regexp.MustCompile(`\s+`)
	reSpaceBefore  = regexp.MustCompile(`\s+([.,!?;:])`)
	rePunctSpacing = regexp.MustCompile(`\s*([!?.,;:])\s*`)
)

// Preprocess normalizes input before a stage pass: Unicode NFC, whitespace
// collapsed to single spaces, surrounding whitespace trimmed
func Preprocess(s string) string {
	s = norm.NFC.String(s)
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TightenPunct removes whitespace immediately before closing punctuation
func TightenPunct(s string) string {
	return reSpaceBefore.ReplaceAllString(s, "$1")
}

// CollapseSpaces folds runs of whitespace into single spaces
func CollapseSpaces(s string) string {
	return reSpaces.ReplaceAllString(s, " ")
}

// Clean tightens punctuation, collapses whitespace and trims the result
func Clean(s string) string {
	return strings.TrimSpace(CollapseSpaces(TightenPunct(s)))
}

// NormalizePunctSpacing rewrites every punctuation mark to have no space
// before it and exactly one after, then trims
func NormalizePunctSpacing(s string) string {
	s = rePunctSpacing.ReplaceAllString(s, "$1 ")
	return strings.TrimSpace(CollapseSpaces(s))
}

// MatchCase reshapes repl to follow old's casing pattern: all-capital words
// stay all-capital, first-letter-capital words stay capitalized, everything
// else is passed through as given
func MatchCase(old, repl string) string {
	if old == "" || repl == "" {
		return repl
	}
	if len(old) > 1 && old == strings.ToUpper(old) && strings.ContainsFunc(old, unicode.IsLetter) {
		return strings.ToUpper(repl)
	}
	if unicode.IsUpper([]rune(old)[0]) {
		return Capitalize(repl)
	}
	return repl
}

// Capitalize upcases the first rune of s
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// EndsTerminal reports whether s ends with sentence-final punctuation
func EndsTerminal(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}
