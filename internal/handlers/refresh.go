package handlers

import (
	"context"
	"net/http"
	"time"

	"klema-chatbot/internal/contextutil"
	"klema-chatbot/internal/rag"
)

// CatalogRefresher drops a cached product snapshot and reloads it.
type CatalogRefresher interface {
	Refresh(ctx context.Context)
	Products(ctx context.Context) ([]rag.ProductRecord, error)
}

// RefreshHandler handles HTTP requests for reloading the product catalog.
type RefreshHandler struct {
	catalog CatalogRefresher
	timeout time.Duration
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(catalog CatalogRefresher) *RefreshHandler {
	return &RefreshHandler{
		catalog: catalog,
		timeout: 2 * time.Minute,
	}
}

// RefreshResponse represents the response from the refresh endpoint.
type RefreshResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP invalidates the cached catalog and warms it again in the
// background. It answers 202 before the reload finishes.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	logger.InfoContext(ctx, "catalog refresh triggered via API")
	h.catalog.Refresh(ctx)

	// The reload must outlive the request.
	go func() {
		reloadCtx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		products, err := h.catalog.Products(reloadCtx)
		if err != nil {
			logger.ErrorContext(reloadCtx, "catalog reload failed", "error", err)
			return
		}
		logger.InfoContext(reloadCtx, "catalog reloaded", "products", len(products))
	}()

	writeJSON(w, http.StatusAccepted, RefreshResponse{
		Message: "Catalog refresh started. Check server logs for progress.",
		Status:  "accepted",
	})
}
