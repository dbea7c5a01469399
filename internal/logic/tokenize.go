package logic

import (
	"regexp"
	"strings"
)

// MinInterestTokenLength is the shortest token the interest extractor keeps.
const MinInterestTokenLength = 3

// nonWord matches runs of characters outside [A-Za-z0-9_]. Text that is not
// ASCII therefore splits apart entirely, which is why Japanese input is
// translated before tokenizing.
var nonWord = regexp.MustCompile(`\W+`)

// TokenSet is a set of normalized word tokens.
type TokenSet map[string]struct{}

// Has reports whether tok is in the set.
func (s TokenSet) Has(tok string) bool {
	_, ok := s[tok]
	return ok
}

// Tokens lowercases text and splits it on non-word runs, dropping empty
// tokens and tokens shorter than minLen. Order and duplicates are kept.
func Tokens(text string, minLen int) []string {
	parts := nonWord.Split(strings.ToLower(text), -1)
	out := parts[:0]
	for _, p := range parts {
		if p == "" || len(p) < minLen {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Tokenize returns the distinct tokens of text.
func Tokenize(text string) TokenSet {
	toks := Tokens(text, 0)
	set := make(TokenSet, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}
