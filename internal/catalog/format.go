package catalog

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"klema-chatbot/internal/rag"
)

const defaultCurrency = "EUR"

// colorOptionNames are product option names whose values are colours.
var colorOptionNames = []string{"farba", "color", "colour"}

type shopifyProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Handle      string           `json:"handle"`
	BodyHTML    string           `json:"body_html"`
	ProductType string           `json:"product_type"`
	Vendor      string           `json:"vendor"`
	Tags        string           `json:"tags"`
	Variants    []shopifyVariant `json:"variants"`
	Options     []shopifyOption  `json:"options"`
	Images      []shopifyImage   `json:"images"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type shopifyVariant struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	SKU               string  `json:"sku"`
	Price             string  `json:"price"`
	CompareAtPrice    *string `json:"compare_at_price"`
	InventoryQuantity int     `json:"inventory_quantity"`
	InventoryPolicy   string  `json:"inventory_policy"`
	InventoryItemID   int64   `json:"inventory_item_id"`
	Available         *bool   `json:"available"`
}

type shopifyOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type shopifyImage struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

type shopifyLocation struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type shopifyPriceRule struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	ValueType       string     `json:"value_type"`
	Value           string     `json:"value"`
	TargetType      string     `json:"target_type"`
	TargetSelection string     `json:"target_selection"`
	StartsAt        time.Time  `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
	UsageLimit      *int       `json:"usage_limit"`
}

type shopifyCollection struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Handle        string        `json:"handle"`
	BodyHTML      string        `json:"body_html"`
	Image         *shopifyImage `json:"image"`
	ProductsCount int           `json:"products_count"`
}

// InventoryLevel is the stock of one inventory item at one location.
type InventoryLevel struct {
	InventoryItemID int64  `json:"inventory_item_id"`
	LocationID      int64  `json:"location_id"`
	Available       int    `json:"available"`
	UpdatedAt       string `json:"updated_at,omitempty"`
	LocationName    string `json:"location_name,omitempty"`
}

// PriceRule is a Shopify discount rule with its codes.
type PriceRule struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	ValueType       string     `json:"value_type"`
	Value           string     `json:"value"`
	TargetType      string     `json:"target_type"`
	TargetSelection string     `json:"target_selection"`
	StartsAt        time.Time  `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	UsageLimit      *int       `json:"usage_limit,omitempty"`
	Active          bool       `json:"active"`
	DiscountCodes   []string   `json:"discount_codes,omitempty"`
}

// Collection is a custom or smart product collection.
type Collection struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Handle        string `json:"handle"`
	Description   string `json:"description"`
	Image         string `json:"image,omitempty"`
	ProductsCount int    `json:"products_count"`
}

// Collections groups both collection kinds.
type Collections struct {
	Custom []Collection `json:"custom_collections"`
	Smart  []Collection `json:"smart_collections"`
}

// VariantAvailability is the stock view of one variant.
type VariantAvailability struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	SKU             string  `json:"sku"`
	Price           float64 `json:"price"`
	Available       int     `json:"available"`
	InventoryPolicy string  `json:"inventory_policy"`
	InStock         bool    `json:"in_stock"`
}

// ProductAvailability is a product with its inventory levels.
type ProductAvailability struct {
	Product   rag.ProductRecord     `json:"product"`
	Inventory []InventoryLevel      `json:"inventory"`
	Variants  []VariantAvailability `json:"variants_availability"`
}

// FullCatalog is everything the assistant needs from the shop in one document.
type FullCatalog struct {
	Products      []rag.ProductRecord `json:"products"`
	Collections   Collections         `json:"collections"`
	Discounts     []PriceRule         `json:"discounts"`
	TotalProducts int                 `json:"total_products"`
	FetchedAt     time.Time           `json:"fetched_at"`
}

func formatProducts(raw []shopifyProduct) []rag.ProductRecord {
	products := make([]rag.ProductRecord, 0, len(raw))
	for _, p := range raw {
		products = append(products, formatProduct(p))
	}
	return products
}

// formatProduct normalizes a Shopify product. Prices come from the first
// variant; the product is available when any variant is.
func formatProduct(p shopifyProduct) rag.ProductRecord {
	var mainVariant shopifyVariant
	if len(p.Variants) > 0 {
		mainVariant = p.Variants[0]
	}

	rec := rag.ProductRecord{
		ID:          strconv.FormatInt(p.ID, 10),
		Handle:      p.Handle,
		Title:       p.Title,
		Description: StripHTML(p.BodyHTML),
		ProductType: p.ProductType,
		Vendor:      p.Vendor,
		Tags:        splitTags(p.Tags),
		Price:       parseMoney(mainVariant.Price),
		Currency:    defaultCurrency,
		Variants:    make([]rag.Variant, 0, len(p.Variants)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if mainVariant.CompareAtPrice != nil {
		rec.CompareAtPrice = parseMoney(*mainVariant.CompareAtPrice)
	}
	rec.ApplyPricing()

	for _, v := range p.Variants {
		available := variantAvailable(v)
		if available {
			rec.Available = true
		}
		rec.TotalInventory += v.InventoryQuantity
		variant := rag.Variant{
			ID:        strconv.FormatInt(v.ID, 10),
			Title:     v.Title,
			SKU:       v.SKU,
			Price:     parseMoney(v.Price),
			Available: available,
			Inventory: v.InventoryQuantity,
		}
		if v.CompareAtPrice != nil {
			variant.CompareAtPrice = parseMoney(*v.CompareAtPrice)
		}
		rec.Variants = append(rec.Variants, variant)
	}

	if len(p.Images) > 0 {
		rec.Image = p.Images[0].Src
	}
	if p.Handle != "" {
		rec.URL = "/products/" + p.Handle
	}
	for _, o := range p.Options {
		name := rag.Normalize(o.Name)
		for _, c := range colorOptionNames {
			if name == c {
				rec.Colors = append(rec.Colors, o.Values...)
			}
		}
	}
	return rec
}

func variantAvailable(v shopifyVariant) bool {
	if v.Available != nil && !*v.Available {
		return false
	}
	return v.InventoryQuantity > 0 || v.InventoryPolicy == "continue"
}

func formatPriceRule(r shopifyPriceRule, now time.Time) PriceRule {
	return PriceRule{
		ID:              r.ID,
		Title:           r.Title,
		ValueType:       r.ValueType,
		Value:           r.Value,
		TargetType:      r.TargetType,
		TargetSelection: r.TargetSelection,
		StartsAt:        r.StartsAt,
		EndsAt:          r.EndsAt,
		UsageLimit:      r.UsageLimit,
		Active:          !r.StartsAt.After(now) && (r.EndsAt == nil || !r.EndsAt.Before(now)),
	}
}

func formatCollections(raw []shopifyCollection) []Collection {
	out := make([]Collection, 0, len(raw))
	for _, c := range raw {
		col := Collection{
			ID:            c.ID,
			Title:         c.Title,
			Handle:        c.Handle,
			Description:   StripHTML(c.BodyHTML),
			ProductsCount: c.ProductsCount,
		}
		if c.Image != nil {
			col.Image = c.Image.Src
		}
		out = append(out, col)
	}
	return out
}

func splitTags(tags string) []string {
	out := []string{}
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseMoney reads a decimal amount, accepting a comma separator. Invalid
// input yields 0.
func parseMoney(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// StripHTML returns the text content of an HTML fragment with whitespace
// collapsed. Entities are decoded.
func StripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	z := html.NewTokenizer(strings.NewReader(fragment))
	var parts []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
		case html.TextToken:
			parts = append(parts, string(z.Text()))
		}
	}
}
