package handlers

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_shop_catalog.go -package=mocks klema-chatbot/internal/handlers ShopCatalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"klema-chatbot/internal/catalog"
	"klema-chatbot/internal/contextutil"
	"klema-chatbot/internal/rag"
)

// ShopCatalog is the shop backend the catalog proxy forwards to.
type ShopCatalog interface {
	GetProducts(ctx context.Context, limit int) ([]rag.ProductRecord, error)
	SearchProducts(ctx context.Context, query string) ([]rag.ProductRecord, error)
	GetProduct(ctx context.Context, productID string) (rag.ProductRecord, error)
	GetInventory(ctx context.Context) ([]catalog.InventoryLevel, error)
	GetDiscounts(ctx context.Context) ([]catalog.PriceRule, error)
	GetCollections(ctx context.Context) (catalog.Collections, error)
	GetProductAvailability(ctx context.Context, productID string) (catalog.ProductAvailability, error)
	FullCatalog(ctx context.Context) (catalog.FullCatalog, error)
}

// Catalog proxy actions.
const (
	actionGetProducts            = "getProducts"
	actionSearchProducts         = "searchProducts"
	actionGetProduct             = "getProduct"
	actionGetInventory           = "getInventory"
	actionGetDiscounts           = "getDiscounts"
	actionGetCollections         = "getCollections"
	actionGetProductAvailability = "getProductAvailability"
	actionGetFullCatalog         = "getFullCatalog"
)

var shopActions = []string{
	actionGetProducts,
	actionSearchProducts,
	actionGetProduct,
	actionGetInventory,
	actionGetDiscounts,
	actionGetCollections,
	actionGetProductAvailability,
	actionGetFullCatalog,
}

// ShopifyHandler proxies catalog reads to the shop for the storefront widget.
type ShopifyHandler struct {
	shop ShopCatalog
}

// NewShopifyHandler creates a new ShopifyHandler. A nil shop means the
// credentials are missing and every action fails.
func NewShopifyHandler(shop ShopCatalog) *ShopifyHandler {
	return &ShopifyHandler{shop: shop}
}

// ShopifyRequest carries the action and its parameters, read from the JSON
// body for POST and from the query string for GET.
type ShopifyRequest struct {
	Action    string      `json:"action"`
	Query     string      `json:"query,omitempty"`
	ProductID string      `json:"productId,omitempty"`
	Limit     json.Number `json:"limit,omitempty"`
}

// ShopifyResponse wraps the data of a successful action.
type ShopifyResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ServeHTTP handles GET and POST requests.
func (h *ShopifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if methodNotAllowed(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if h.shop == nil {
		logger.ErrorContext(ctx, "missing Shopify credentials")
		writeError(w, http.StatusInternalServerError, "Shopify credentials not configured")
		return
	}

	req, err := parseShopifyRequest(r)
	if err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	data, err := h.dispatch(ctx, req)
	if err != nil {
		var badReq badRequestError
		switch {
		case errors.As(err, &badReq):
			writeError(w, http.StatusBadRequest, badReq.msg)
		case errors.Is(err, catalog.ErrNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Product not found", Details: err.Error()})
		case errors.Is(err, catalog.ErrNotConfigured):
			writeError(w, http.StatusInternalServerError, "Shopify credentials not configured")
		default:
			logger.ErrorContext(ctx, "Shopify API error", "action", req.Action, "error", err)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch from Shopify", Details: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, ShopifyResponse{Success: true, Data: data})
}

type badRequestError struct {
	msg string
}

func (e badRequestError) Error() string {
	return e.msg
}

func (h *ShopifyHandler) dispatch(ctx context.Context, req ShopifyRequest) (any, error) {
	switch req.Action {
	case actionGetProducts:
		limit, err := req.limit()
		if err != nil {
			return nil, err
		}
		return h.shop.GetProducts(ctx, limit)
	case actionSearchProducts:
		return h.shop.SearchProducts(ctx, req.Query)
	case actionGetProduct:
		if req.ProductID == "" {
			return nil, badRequestError{msg: "productId is required for getProduct"}
		}
		return h.shop.GetProduct(ctx, req.ProductID)
	case actionGetInventory:
		return h.shop.GetInventory(ctx)
	case actionGetDiscounts:
		return h.shop.GetDiscounts(ctx)
	case actionGetCollections:
		return h.shop.GetCollections(ctx)
	case actionGetProductAvailability:
		if req.ProductID == "" {
			return nil, badRequestError{msg: "productId is required for getProductAvailability"}
		}
		return h.shop.GetProductAvailability(ctx, req.ProductID)
	case actionGetFullCatalog:
		return h.shop.FullCatalog(ctx)
	default:
		return nil, badRequestError{msg: "Invalid action. Use: " + strings.Join(shopActions, ", ")}
	}
}

func (req ShopifyRequest) limit() (int, error) {
	if req.Limit == "" {
		return catalog.DefaultProductLimit, nil
	}
	n, err := strconv.Atoi(req.Limit.String())
	if err != nil || n <= 0 {
		return 0, badRequestError{msg: fmt.Sprintf("invalid limit %q", req.Limit)}
	}
	return n, nil
}

func parseShopifyRequest(r *http.Request) (ShopifyRequest, error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		return ShopifyRequest{
			Action:    q.Get("action"),
			Query:     q.Get("query"),
			ProductID: q.Get("productId"),
			Limit:     json.Number(q.Get("limit")),
		}, nil
	}
	var req ShopifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ShopifyRequest{}, err
	}
	return req, nil
}
