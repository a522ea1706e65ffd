package rag

import (
	"regexp"
	"strconv"
	"strings"
)

// PriceRange is an optional price bound pair extracted from a query.
type PriceRange struct {
	Min *float64 `json:"min_price,omitempty"`
	Max *float64 `json:"max_price,omitempty"`
}

// pricePatterns are tried in priority order: between, under, over, plain range.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:od|medzi|between|from)\s*(\d+)\s*(?:do|a|and|to)\s*(\d+)`),
	regexp.MustCompile(`\b(?:do|pod|under|below|max)\s*(\d+)`),
	regexp.MustCompile(`\b(?:od|nad|over|above|min)\s*(\d+)`),
	regexp.MustCompile(`(\d+)\s*-\s*(\d+)`),
}

// upperBoundWords mark a single-number clause as a maximum.
var upperBoundWords = []string{"do", "pod", "under", "below", "max"}

var sizeNumberPattern = regexp.MustCompile(`\b(\d{2,3})\b`)

// DetectIntent returns the first intent whose pattern occurs in the
// normalized query, walking the intent table in declaration order.
func (t *Tables) DetectIntent(query string) Intent {
	return Intent(firstMatch(t.Intents, Normalize(query)))
}

// DetectCategory applies the same first-match rule to the category table.
func (t *Tables) DetectCategory(query string) string {
	return firstMatch(t.Categories, Normalize(query))
}

// IsProductQuery reports whether the query mentions any product signal.
func (t *Tables) IsProductQuery(query string) bool {
	normalized := Normalize(query)
	for _, kw := range t.ProductSignals {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// ExtractPriceRange returns the first price clause found in the query, or nil.
func (t *Tables) ExtractPriceRange(query string) *PriceRange {
	normalized := Normalize(query)
	// The plain range needs the dash, which normalization removes.
	raw := strings.ToLower(query)

	for i, pattern := range pricePatterns {
		subject := normalized
		if i == len(pricePatterns)-1 {
			subject = raw
		}
		match := pattern.FindStringSubmatch(subject)
		if match == nil {
			continue
		}
		first, ok := parsePrice(match[1])
		if !ok {
			continue
		}
		if len(match) > 2 && match[2] != "" {
			second, ok := parsePrice(match[2])
			if ok {
				return &PriceRange{Min: &first, Max: &second}
			}
		}
		if clauseHasUpperBound(match[0]) {
			return &PriceRange{Max: &first}
		}
		return &PriceRange{Min: &first}
	}
	return nil
}

// ExtractSize returns a clothing size token (upper-cased) or a two/three digit
// numeric size, or "" when the query names none.
func (t *Tables) ExtractSize(query string) string {
	words := strings.Fields(Normalize(query))
	for _, size := range t.Sizes {
		if contains(words, size) {
			return strings.ToUpper(size)
		}
	}
	if m := sizeNumberPattern.FindString(query); m != "" {
		return m
	}
	return ""
}

// ExtractColor returns the canonical colour named in the query, or "".
func (t *Tables) ExtractColor(query string) string {
	return firstMatch(t.Colors, Normalize(query))
}

func firstMatch(groups []PatternGroup, normalized string) string {
	if normalized == "" {
		return ""
	}
	for _, g := range groups {
		for _, p := range g.Patterns {
			if strings.Contains(normalized, p) {
				return g.Name
			}
		}
	}
	return ""
}

func clauseHasUpperBound(clause string) bool {
	for _, w := range upperBoundWords {
		if strings.HasPrefix(clause, w) {
			return true
		}
	}
	return false
}

func parsePrice(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
