package rag

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeywords(t *testing.T) {
	tables := DefaultTables()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain", "kolko stoji nausnice", []string{"kolko", "stoji", "nausnice"}},
		{"stopwords and short tokens", "mate nausnice do 20 eur", []string{"nausnice", "eur"}},
		{"only stopwords", "a je to", []string{}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tables.ExtractKeywords(tt.input))
		})
	}
}

func TestExtractKeywordsInvariants(t *testing.T) {
	tables := DefaultTables()

	words := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		words = append(words, fmt.Sprintf("slovo%02d", i))
	}
	long := tables.ExtractKeywords(strings.Join(words, " "))
	require.Len(t, long, 15)
	assert.Equal(t, "slovo00", long[0])
	assert.Equal(t, "slovo14", long[14])

	queries := []string{
		"Máte skladom čierne náušnice do 20 eur?",
		"ako sa starat o sperky",
		"je to na mna pre vas",
	}
	for _, q := range queries {
		for _, kw := range tables.ExtractKeywords(Normalize(q)) {
			assert.Greater(t, utf8.RuneCountInString(kw), 2, "token %q from %q", kw, q)
			assert.False(t, tables.IsStopword(kw), "stopword %q from %q", kw, q)
		}
	}
}

func TestExtractBigrams(t *testing.T) {
	tables := DefaultTables()

	assert.Nil(t, tables.ExtractBigrams("nausnice"))
	assert.Equal(t, []string{"je nausnice"}, tables.ExtractBigrams("a je nausnice"))
	assert.Equal(t,
		[]string{"doprava zdarma", "zdarma nad", "nad 50"},
		tables.ExtractBigrams("doprava zdarma nad 50"))
}

func TestExpand(t *testing.T) {
	tables := DefaultTables()

	expanded := tables.Expand([]string{"cena"})
	for _, want := range []string{"cena", "eur", "euro", "kolko", "stoji", "price"} {
		assert.Contains(t, expanded, want)
	}

	// A variant pulls in its canonical term and siblings.
	fromVariant := tables.Expand([]string{"eur"})
	assert.Contains(t, fromVariant, "cena")
	assert.Contains(t, fromVariant, "cennik")

	// Unknown tokens pass through untouched.
	assert.Equal(t, []string{"xyzxyz"}, tables.Expand([]string{"xyzxyz"}))

	// Output is deduplicated.
	dup := tables.Expand([]string{"cena", "kolko"})
	seen := map[string]bool{}
	for _, w := range dup {
		assert.False(t, seen[w], "duplicate %q", w)
		seen[w] = true
	}
}

func TestExpandIsOneLevel(t *testing.T) {
	tables := NewTables(nil,
		[]SynonymGroup{
			{Canonical: "alpha", Variants: []string{"beta"}},
			{Canonical: "beta", Variants: []string{"gamma"}},
			{Canonical: "gamma", Variants: []string{"delta"}},
		},
		nil, nil, nil, nil, nil)

	got := tables.Expand([]string{"alpha"})
	assert.ElementsMatch(t, []string{"alpha", "beta"}, got)
}

func TestIsSimilar(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"nausnice", "nausnice", true},
		{"nausnice", "nausnica", true},
		{"cena", "ceny", true},
		{"sperk", "sperky", true},
		{"abc", "abcdef", false},
		{"abcd", "wxyz", false},
		{"abcde", "bcdea", false},
		{"kolko", "kolka", true},
		{"dorucenie", "doruceni", true},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSimilar(tt.a, tt.b))
			assert.Equal(t, tt.want, IsSimilar(tt.b, tt.a))
		})
	}
}
