package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"klema-chatbot/internal/catalog"
	"klema-chatbot/internal/contextutil"
)

// Pinger checks a backing store connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	db                 Pinger
	products           catalog.Provider
	llmConfigured      bool
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. products may be nil when no
// catalog is configured.
func NewHealthHandler(db Pinger, products catalog.Provider, llmConfigured bool) *HealthHandler {
	return &HealthHandler{
		db:                 db,
		products:           products,
		llmConfigured:      llmConfigured,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// Returns 200 OK if healthy, 503 Service Unavailable if degraded or unhealthy.
// A database failure makes the service unhealthy; a catalog failure only
// degrades it, since answers still work from the knowledge base.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string
	status := "healthy"

	if h.checkDatabase(checkCtx, logger) {
		checks["database"] = "ok"
	} else {
		checks["database"] = "error"
		issues = append(issues, "database_unavailable")
		status = "unhealthy"
	}

	switch count, ok := h.checkCatalog(checkCtx, logger); {
	case h.products == nil:
		checks["catalog"] = "not_configured"
	case ok:
		checks["catalog"] = "ok"
		checks["catalog_products"] = strconv.Itoa(count)
	default:
		checks["catalog"] = "error"
		issues = append(issues, "catalog_unavailable")
		if status == "healthy" {
			status = "degraded"
		}
	}

	// The LLM is not called here to keep the check cheap.
	if h.llmConfigured {
		checks["llm"] = "configured"
	} else {
		checks["llm"] = "not_configured"
	}

	httpStatus := http.StatusOK
	if len(issues) > 0 {
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}

// checkDatabase checks if the database is accessible.
func (h *HealthHandler) checkDatabase(ctx context.Context, logger *slog.Logger) bool {
	if err := h.db.Ping(ctx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		return false
	}
	return true
}

// checkCatalog loads the product snapshot and reports its size.
func (h *HealthHandler) checkCatalog(ctx context.Context, logger *slog.Logger) (int, bool) {
	if h.products == nil {
		return 0, false
	}
	products, err := h.products.Products(ctx)
	if err != nil {
		logger.WarnContext(ctx, "catalog health check failed", "error", err)
		return 0, false
	}
	return len(products), true
}
