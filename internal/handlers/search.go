package handlers

import (
	"encoding/json"
	"net/http"

	"klema-chatbot/internal/contextutil"
	"klema-chatbot/internal/service"
)

// SearchHandler runs retrieval without answer generation.
type SearchHandler struct {
	askService service.AskService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(askService service.AskService) *SearchHandler {
	return &SearchHandler{askService: askService}
}

// ServeHTTP returns the query analysis, ranked knowledge, ranked products and
// the assembled context.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	var req service.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	retrieval, err := h.askService.Search(ctx, req)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to search")
		return
	}

	logger.DebugContext(ctx, "search completed",
		"knowledge_results", len(retrieval.Knowledge),
		"product_results", len(retrieval.Products))
	writeJSON(w, http.StatusOK, retrieval)
}
