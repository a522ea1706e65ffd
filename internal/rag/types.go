package rag

import "time"

// KnowledgeEntry is one static FAQ/topic record of the support knowledge base.
type KnowledgeEntry struct {
	ID       string   `json:"id" yaml:"id"`
	Category string   `json:"category" yaml:"category"`
	Title    string   `json:"title" yaml:"title"`
	Content  string   `json:"content" yaml:"content"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Variant is one purchasable option of a product.
type Variant struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	SKU            string  `json:"sku,omitempty"`
	Price          float64 `json:"price"`
	CompareAtPrice float64 `json:"compare_at_price,omitempty"`
	Available      bool    `json:"available"`
	Inventory      int     `json:"inventory_quantity"`
}

// ProductRecord is a provider-agnostic catalog item. The engine only reads it.
type ProductRecord struct {
	ID                 string    `json:"id"`
	Handle             string    `json:"handle,omitempty"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	ProductType        string    `json:"product_type"`
	Vendor             string    `json:"vendor"`
	Tags               []string  `json:"tags"`
	Price              float64   `json:"price"`
	CompareAtPrice     float64   `json:"compare_at_price"`
	Currency           string    `json:"currency,omitempty"`
	HasDiscount        bool      `json:"has_discount"`
	DiscountPercentage int       `json:"discount_percentage"`
	Available          bool      `json:"available"`
	TotalInventory     int       `json:"total_inventory"`
	Variants           []Variant `json:"variants"`
	Image              string    `json:"image,omitempty"`
	Colors             []string  `json:"colors,omitempty"`
	AvailabilityText   string    `json:"availability,omitempty"`
	InfoTexts          []string  `json:"info_texts,omitempty"`
	URL                string    `json:"url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ApplyPricing derives HasDiscount and DiscountPercentage from the two prices.
func (p *ProductRecord) ApplyPricing() {
	p.HasDiscount = p.CompareAtPrice > p.Price
	p.DiscountPercentage = 0
	if p.HasDiscount && p.CompareAtPrice > 0 {
		p.DiscountPercentage = int(roundHalfUp((1 - p.Price/p.CompareAtPrice) * 100))
	}
}

// Scored is an item annotated with its relevance score. Zero means "not shown".
type Scored[T any] struct {
	Item  T       `json:"item"`
	Score float64 `json:"relevance_score"`
}

// Items strips the scores off a ranked list.
func Items[T any](ranked []Scored[T]) []T {
	out := make([]T, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Item)
	}
	return out
}

func roundHalfUp(v float64) float64 {
	if v < 0 {
		return -roundHalfUp(-v)
	}
	return float64(int64(v + 0.5))
}
