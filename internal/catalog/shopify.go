package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"klema-chatbot/internal/contextutil"
	"klema-chatbot/internal/rag"
)

const (
	// DefaultAPIVersion is the Shopify Admin API version used when none is configured.
	DefaultAPIVersion = "2024-01"
	// DefaultProductLimit is the page size of GetProducts when none is requested.
	DefaultProductLimit = 50
	// MaxProductLimit is the largest page Shopify serves.
	MaxProductLimit = 250

	fanOutLimit = 4
)

// ShopifyConfig holds Shopify Admin API connection settings.
type ShopifyConfig struct {
	// StoreURL is the shop host (e.g. "klema.myshopify.com") or a full base URL.
	StoreURL    string
	AccessToken string
	APIVersion  string
	HTTPClient  *http.Client
}

// ShopifyClient reads products, inventory, discounts and collections from the
// Shopify Admin REST API and normalizes products into rag.ProductRecord.
type ShopifyClient struct {
	baseURL string
	token   string
	client  *http.Client
	now     func() time.Time
}

// NewShopifyClient creates a client. It returns ErrNotConfigured when the store
// URL or the access token is missing.
func NewShopifyClient(cfg ShopifyConfig) (*ShopifyClient, error) {
	if cfg.StoreURL == "" || cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: Shopify credentials not configured", ErrNotConfigured)
	}
	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	store := strings.TrimRight(cfg.StoreURL, "/")
	if !strings.HasPrefix(store, "http://") && !strings.HasPrefix(store, "https://") {
		store = "https://" + store
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ShopifyClient{
		baseURL: fmt.Sprintf("%s/admin/api/%s/", store, version),
		token:   cfg.AccessToken,
		client:  client,
		now:     time.Now,
	}, nil
}

// fetch performs an authenticated GET and decodes the JSON body into out.
func (c *ShopifyClient) fetch(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: Shopify API error %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", ErrUpstream, endpoint, err)
	}
	return nil
}

// Products returns the full active catalog page. It satisfies Provider.
func (c *ShopifyClient) Products(ctx context.Context) ([]rag.ProductRecord, error) {
	return c.GetProducts(ctx, MaxProductLimit)
}

// GetProducts lists active products. limit <= 0 uses DefaultProductLimit.
func (c *ShopifyClient) GetProducts(ctx context.Context, limit int) ([]rag.ProductRecord, error) {
	if limit <= 0 {
		limit = DefaultProductLimit
	}
	if limit > MaxProductLimit {
		limit = MaxProductLimit
	}
	var resp struct {
		Products []shopifyProduct `json:"products"`
	}
	if err := c.fetch(ctx, fmt.Sprintf("products.json?limit=%d&status=active", limit), &resp); err != nil {
		return nil, err
	}
	return formatProducts(resp.Products), nil
}

// SearchProducts filters the active catalog locally. The Admin API has no
// full-text search, so title, description, tags, type and vendor are matched
// as normalized substrings.
func (c *ShopifyClient) SearchProducts(ctx context.Context, query string) ([]rag.ProductRecord, error) {
	products, err := c.GetProducts(ctx, MaxProductLimit)
	if err != nil {
		return nil, err
	}
	needle := rag.Normalize(query)
	if needle == "" {
		return products, nil
	}
	matched := make([]rag.ProductRecord, 0, len(products))
	for _, p := range products {
		fields := []string{p.Title, p.Description, strings.Join(p.Tags, " "), p.ProductType, p.Vendor}
		for _, f := range fields {
			if strings.Contains(rag.Normalize(f), needle) {
				matched = append(matched, p)
				break
			}
		}
	}
	return matched, nil
}

// GetProduct returns one product by its numeric id.
func (c *ShopifyClient) GetProduct(ctx context.Context, productID string) (rag.ProductRecord, error) {
	p, err := c.getRawProduct(ctx, productID)
	if err != nil {
		return rag.ProductRecord{}, err
	}
	return formatProduct(p), nil
}

func (c *ShopifyClient) getRawProduct(ctx context.Context, productID string) (shopifyProduct, error) {
	if _, err := strconv.ParseInt(productID, 10, 64); err != nil {
		return shopifyProduct{}, fmt.Errorf("%w: invalid product id %q", ErrNotFound, productID)
	}
	var resp struct {
		Product shopifyProduct `json:"product"`
	}
	if err := c.fetch(ctx, "products/"+productID+".json", &resp); err != nil {
		return shopifyProduct{}, err
	}
	return resp.Product, nil
}

// GetInventory returns the inventory levels of every location, each annotated
// with its location name.
func (c *ShopifyClient) GetInventory(ctx context.Context) ([]InventoryLevel, error) {
	var locs struct {
		Locations []shopifyLocation `json:"locations"`
	}
	if err := c.fetch(ctx, "locations.json", &locs); err != nil {
		return nil, err
	}

	perLocation := make([][]InventoryLevel, len(locs.Locations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, loc := range locs.Locations {
		g.Go(func() error {
			var resp struct {
				InventoryLevels []InventoryLevel `json:"inventory_levels"`
			}
			endpoint := fmt.Sprintf("inventory_levels.json?location_ids=%d&limit=%d", loc.ID, MaxProductLimit)
			if err := c.fetch(gctx, endpoint, &resp); err != nil {
				return err
			}
			for j := range resp.InventoryLevels {
				resp.InventoryLevels[j].LocationName = loc.Name
			}
			perLocation[i] = resp.InventoryLevels
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	levels := make([]InventoryLevel, 0)
	for _, l := range perLocation {
		levels = append(levels, l...)
	}
	return levels, nil
}

// GetDiscounts returns price rules with their discount codes. A rule whose
// codes cannot be fetched is returned without codes.
func (c *ShopifyClient) GetDiscounts(ctx context.Context) ([]PriceRule, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var resp struct {
		PriceRules []shopifyPriceRule `json:"price_rules"`
	}
	if err := c.fetch(ctx, "price_rules.json", &resp); err != nil {
		return nil, err
	}

	now := c.now()
	rules := make([]PriceRule, len(resp.PriceRules))
	var g errgroup.Group
	g.SetLimit(fanOutLimit)
	for i, raw := range resp.PriceRules {
		rules[i] = formatPriceRule(raw, now)
		g.Go(func() error {
			var codes struct {
				DiscountCodes []struct {
					Code string `json:"code"`
				} `json:"discount_codes"`
			}
			if err := c.fetch(ctx, fmt.Sprintf("price_rules/%d/discount_codes.json", raw.ID), &codes); err != nil {
				logger.WarnContext(ctx, "could not fetch discount codes", "price_rule_id", raw.ID, "error", err)
				return nil
			}
			list := make([]string, 0, len(codes.DiscountCodes))
			for _, dc := range codes.DiscountCodes {
				list = append(list, dc.Code)
			}
			rules[i].DiscountCodes = list
			return nil
		})
	}
	_ = g.Wait()
	return rules, nil
}

// GetCollections returns custom and smart collections.
func (c *ShopifyClient) GetCollections(ctx context.Context) (Collections, error) {
	var custom, smart struct {
		Custom []shopifyCollection `json:"custom_collections"`
		Smart  []shopifyCollection `json:"smart_collections"`
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.fetch(gctx, "custom_collections.json", &custom) })
	g.Go(func() error { return c.fetch(gctx, "smart_collections.json", &smart) })
	if err := g.Wait(); err != nil {
		return Collections{}, err
	}
	return Collections{
		Custom: formatCollections(custom.Custom),
		Smart:  formatCollections(smart.Smart),
	}, nil
}

// GetProductAvailability returns a product with per-variant stock. Missing
// inventory levels fall back to the variant's own quantity.
func (c *ShopifyClient) GetProductAvailability(ctx context.Context, productID string) (ProductAvailability, error) {
	logger := contextutil.LoggerFromContext(ctx)

	raw, err := c.getRawProduct(ctx, productID)
	if err != nil {
		return ProductAvailability{}, err
	}

	itemIDs := make([]string, 0, len(raw.Variants))
	for _, v := range raw.Variants {
		itemIDs = append(itemIDs, strconv.FormatInt(v.InventoryItemID, 10))
	}

	levels := make([]InventoryLevel, 0)
	if len(itemIDs) > 0 {
		var resp struct {
			InventoryLevels []InventoryLevel `json:"inventory_levels"`
		}
		endpoint := "inventory_levels.json?inventory_item_ids=" + url.QueryEscape(strings.Join(itemIDs, ","))
		if err := c.fetch(ctx, endpoint, &resp); err != nil {
			logger.WarnContext(ctx, "could not fetch inventory levels", "product_id", productID, "error", err)
		} else {
			levels = resp.InventoryLevels
		}
	}

	variants := make([]VariantAvailability, 0, len(raw.Variants))
	for _, v := range raw.Variants {
		va := VariantAvailability{
			ID:              v.ID,
			Title:           v.Title,
			SKU:             v.SKU,
			Price:           parseMoney(v.Price),
			Available:       v.InventoryQuantity,
			InventoryPolicy: v.InventoryPolicy,
		}
		inStock := v.InventoryQuantity > 0
		for _, l := range levels {
			if l.InventoryItemID == v.InventoryItemID {
				va.Available = l.Available
				inStock = l.Available > 0
				break
			}
		}
		va.InStock = v.InventoryPolicy == "continue" || inStock
		variants = append(variants, va)
	}

	return ProductAvailability{
		Product:   formatProduct(raw),
		Inventory: levels,
		Variants:  variants,
	}, nil
}

// FullCatalog fetches products, collections and discounts concurrently.
// Only the product listing is required; the other parts degrade to empty.
func (c *ShopifyClient) FullCatalog(ctx context.Context) (FullCatalog, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var (
		products    []rag.ProductRecord
		collections = Collections{Custom: []Collection{}, Smart: []Collection{}}
		discounts   = []PriceRule{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.GetProducts(gctx, MaxProductLimit)
		if err != nil {
			return err
		}
		products = p
		return nil
	})
	g.Go(func() error {
		col, err := c.GetCollections(gctx)
		if err != nil {
			logger.WarnContext(ctx, "could not fetch collections", "error", err)
			return nil
		}
		collections = col
		return nil
	})
	g.Go(func() error {
		d, err := c.GetDiscounts(gctx)
		if err != nil {
			logger.WarnContext(ctx, "could not fetch discounts", "error", err)
			return nil
		}
		discounts = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return FullCatalog{}, err
	}

	return FullCatalog{
		Products:      products,
		Collections:   collections,
		Discounts:     discounts,
		TotalProducts: len(products),
		FetchedAt:     c.now().UTC(),
	}, nil
}
