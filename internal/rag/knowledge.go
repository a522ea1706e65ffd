package rag

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	keywordMatchScore  = 6.0
	titleMatchScore    = 4.0
	contentPerHit      = 1.5
	contentMaxScore    = 4.0
	bigramTextScore    = 5.0
	bigramKeywordScore = 6.0
	fullQueryScore     = 8.0
	categoryScore      = 3.0
	numberScore        = 3.0

	// DefaultKnowledgeResults is the knowledge search cut-off.
	DefaultKnowledgeResults = 3
)

var numberPattern = regexp.MustCompile(`\d+`)

// normalizedEntry caches the normalized fields of a knowledge entry.
type normalizedEntry struct {
	title    string
	content  string
	keywords []string
}

func normalizeEntry(e KnowledgeEntry) normalizedEntry {
	keywords := make([]string, 0, len(e.Keywords))
	for _, k := range e.Keywords {
		keywords = append(keywords, Normalize(k))
	}
	return normalizedEntry{
		title:    Normalize(e.Title),
		content:  Normalize(e.Content),
		keywords: keywords,
	}
}

// scoreKnowledge adds up every signal linking an entry to the query.
// expanded and bigrams come from the normalized query fullQuery, whose
// detected category is queryCategory.
func scoreKnowledge(entry KnowledgeEntry, n normalizedEntry, expanded, bigrams []string, fullQuery, queryCategory string) float64 {
	var score float64

	for _, word := range expanded {
		for _, kw := range n.keywords {
			if strings.Contains(kw, word) || strings.Contains(word, kw) || IsSimilar(word, kw) {
				score += keywordMatchScore
				break
			}
		}
		if strings.Contains(n.title, word) {
			score += titleMatchScore
		}
		if hits := strings.Count(n.content, word); hits > 0 {
			score += math.Min(float64(hits)*contentPerHit, contentMaxScore)
		}
	}

	for _, bigram := range bigrams {
		if strings.Contains(n.content, bigram) || strings.Contains(n.title, bigram) {
			score += bigramTextScore
		}
		for _, kw := range n.keywords {
			if strings.Contains(kw, bigram) {
				score += bigramKeywordScore
			}
		}
	}

	if strings.Contains(n.content, fullQuery) || strings.Contains(n.title, fullQuery) {
		score += fullQueryScore
	}

	if queryCategory != "" && queryCategory == entry.Category {
		score += categoryScore
	}

	for _, num := range numberPattern.FindAllString(fullQuery, -1) {
		if strings.Contains(n.content, num) {
			score += numberScore
		}
	}

	return score
}

// rankKnowledge scores every entry, drops zero scores and keeps the best
// maxResults. Equal scores keep knowledge base order.
func rankKnowledge(entries []KnowledgeEntry, normalized []normalizedEntry, a QueryAnalysis, maxResults int) []Scored[KnowledgeEntry] {
	if len(a.Keywords) == 0 && len(a.Bigrams) == 0 {
		return nil
	}
	if maxResults <= 0 {
		maxResults = DefaultKnowledgeResults
	}

	results := make([]Scored[KnowledgeEntry], 0, len(entries))
	for i, entry := range entries {
		score := scoreKnowledge(entry, normalized[i], a.Expanded, a.Bigrams, a.Normalized, a.Category)
		if score > 0 {
			results = append(results, Scored[KnowledgeEntry]{Item: entry, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}
