package rag

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slovakLetters survive normalization even when a decomposition is unavailable.
const slovakLetters = "áäčďéíĺľňóôŕšťúýž"

func isCombiningMark(r rune) bool {
	return r >= 0x0300 && r <= 0x036f
}

// foldDiacritics decomposes text (NFD) and drops combining diacritical marks.
func foldDiacritics(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isCombiningMark)))
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// Normalize lowercases text, folds diacritics, replaces everything outside
// [a-z0-9], whitespace and the Slovak letters with a space, collapses
// whitespace runs and trims the result. It never fails.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	folded := foldDiacritics(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case strings.ContainsRune(slovakLetters, r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
