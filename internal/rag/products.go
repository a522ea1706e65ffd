package rag

import (
	"sort"
	"strings"
)

const (
	productTitleScore       = 10.0
	productTitlePrefixScore = 5.0
	productTypeScore        = 7.0
	productTagsScore        = 6.0
	productVendorScore      = 5.0
	productDescScore        = 3.0
	productFullQueryScore   = 15.0
	productAvailableScore   = 2.0
	productDiscountScore    = 1.0

	// DefaultProductResults is the product search cut-off.
	DefaultProductResults = 5
)

func scoreProduct(p ProductRecord, expanded []string, fullQuery string) float64 {
	title := Normalize(p.Title)
	productType := Normalize(p.ProductType)
	tags := Normalize(strings.Join(p.Tags, " "))
	vendor := Normalize(p.Vendor)
	description := Normalize(p.Description)

	var score float64
	for _, word := range expanded {
		if strings.Contains(title, word) {
			score += productTitleScore
			if strings.HasPrefix(title, word) {
				score += productTitlePrefixScore
			}
		}
		if strings.Contains(productType, word) {
			score += productTypeScore
		}
		if strings.Contains(tags, word) {
			score += productTagsScore
		}
		if strings.Contains(vendor, word) {
			score += productVendorScore
		}
		if strings.Contains(description, word) {
			score += productDescScore
		}
	}

	if fullQuery != "" && strings.Contains(title, fullQuery) {
		score += productFullQueryScore
	}

	// Availability and discount only break ties between matches.
	if score == 0 {
		return 0
	}
	if p.Available {
		score += productAvailableScore
	}
	if p.HasDiscount {
		score += productDiscountScore
	}
	return score
}

// rankProducts scores every product against the analysed query, drops
// non-matching ones and keeps the best maxResults in stable order. A query
// without keywords can still match through the full-query title bonus.
func rankProducts(products []ProductRecord, a QueryAnalysis, maxResults int) []Scored[ProductRecord] {
	if len(products) == 0 || a.Normalized == "" {
		return nil
	}
	if maxResults <= 0 {
		maxResults = DefaultProductResults
	}

	results := make([]Scored[ProductRecord], 0, len(products))
	for _, p := range products {
		if score := scoreProduct(p, a.Expanded, a.Normalized); score > 0 {
			results = append(results, Scored[ProductRecord]{Item: p, Score: score})
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
