package rag

import (
	"strings"
	"unicode/utf8"
)

const (
	minKeywordLength = 3
	maxKeywords      = 15
)

// ExtractKeywords splits normalized text into content-bearing tokens: tokens
// shorter than three runes and stopwords are dropped, and at most 15 tokens are
// kept in their original order.
func (t *Tables) ExtractKeywords(normalized string) []string {
	words := strings.Fields(normalized)
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < minKeywordLength || t.IsStopword(w) {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// ExtractBigrams returns every adjacent word pair of normalized text except
// pairs made of two stopwords.
func (t *Tables) ExtractBigrams(normalized string) []string {
	words := strings.Fields(normalized)
	if len(words) < 2 {
		return nil
	}
	bigrams := make([]string, 0, len(words)-1)
	for i := 0; i < len(words)-1; i++ {
		if t.IsStopword(words[i]) && t.IsStopword(words[i+1]) {
			continue
		}
		bigrams = append(bigrams, words[i]+" "+words[i+1])
	}
	return bigrams
}

// Expand grows tokens by one level of the synonym table. A token matching a
// canonical term or any of its variants pulls in the term and all variants.
// The result is deduplicated and keeps first-seen order.
func (t *Tables) Expand(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	expanded := make([]string, 0, len(tokens))
	add := func(w string) {
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		expanded = append(expanded, w)
	}

	for _, tok := range tokens {
		add(tok)
	}
	for _, tok := range tokens {
		for _, group := range t.Synonyms {
			if group.Canonical != tok && !contains(group.Variants, tok) {
				continue
			}
			add(group.Canonical)
			for _, v := range group.Variants {
				add(v)
			}
		}
	}
	return expanded
}

// IsSimilar is the cheap typo check used as a keyword-match fallback. It is a
// positional mismatch count, not an edit distance: strings whose rune lengths
// differ by more than two never match, containment always matches, and
// otherwise at most two positions may differ.
func IsSimilar(a, b string) bool {
	if a == b {
		return true
	}
	ra, rb := []rune(a), []rune(b)
	if abs(len(ra)-len(rb)) > 2 {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	maxLen := max(len(ra), len(rb))
	changes := 0
	for i := 0; i < maxLen; i++ {
		if i >= len(ra) || i >= len(rb) || ra[i] != rb[i] {
			changes++
		}
		if changes > 2 {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
