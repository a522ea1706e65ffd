package rag

import (
	"sort"
	"strings"
)

// ProductFilter holds exact predicates applied conjunctively. Nil pointers and
// empty strings impose no constraint.
type ProductFilter struct {
	Available   *bool    `json:"available,omitempty"`
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	HasDiscount bool     `json:"has_discount,omitempty"`
	ProductType string   `json:"product_type,omitempty"`
	Vendor      string   `json:"vendor,omitempty"`
}

// RecommendCriteria selects sort-based recommendations. When several flags are
// set they apply in field order, each one reshaping the previous result.
type RecommendCriteria struct {
	Best       bool `json:"best,omitempty"`
	Cheapest   bool `json:"cheapest,omitempty"`
	Discounted bool `json:"discounted,omitempty"`
	Newest     bool `json:"newest,omitempty"`
	Limit      int  `json:"limit,omitempty"`
}

// DefaultRecommendLimit caps Recommend when Limit is unset.
const DefaultRecommendLimit = 5

// FilterProducts returns the products satisfying every set predicate. Price
// bounds are inclusive; type and vendor match on normalized substrings.
func FilterProducts(products []ProductRecord, f ProductFilter) []ProductRecord {
	productType := Normalize(f.ProductType)
	vendor := Normalize(f.Vendor)

	filtered := make([]ProductRecord, 0, len(products))
	for _, p := range products {
		if f.Available != nil && p.Available != *f.Available {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		if f.HasDiscount && !p.HasDiscount {
			continue
		}
		if productType != "" && !strings.Contains(Normalize(p.ProductType), productType) {
			continue
		}
		if vendor != "" && !strings.Contains(Normalize(p.Vendor), vendor) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// Recommend selects products by the given criteria and truncates to the limit.
func Recommend(products []ProductRecord, c RecommendCriteria) []ProductRecord {
	list := append([]ProductRecord(nil), products...)

	if c.Best {
		list = keep(list, func(p ProductRecord) bool { return p.Available })
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].TotalInventory > list[j].TotalInventory
		})
	}
	if c.Cheapest {
		list = keep(list, func(p ProductRecord) bool { return p.Available && p.Price > 0 })
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Price < list[j].Price
		})
	}
	if c.Discounted {
		list = keep(list, func(p ProductRecord) bool { return p.Available && p.HasDiscount })
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].DiscountPercentage > list[j].DiscountPercentage
		})
	}
	if c.Newest {
		list = keep(list, func(p ProductRecord) bool { return p.Available })
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
	}

	limit := c.Limit
	if limit <= 0 {
		limit = DefaultRecommendLimit
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}

func keep(products []ProductRecord, pred func(ProductRecord) bool) []ProductRecord {
	out := products[:0]
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
