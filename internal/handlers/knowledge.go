package handlers

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"klema-chatbot/internal/contextutil"
	"klema-chatbot/internal/rag"
)

// KnowledgeBase is the read side of the support knowledge base.
type KnowledgeBase interface {
	Knowledge() []rag.KnowledgeEntry
	KnowledgeByID(id string) (rag.KnowledgeEntry, bool)
	Categories() []string
	ContextByCategory(category string) string
}

// KnowledgeHandler serves the knowledge base.
type KnowledgeHandler struct {
	kb KnowledgeBase
}

// NewKnowledgeHandler creates a new KnowledgeHandler.
func NewKnowledgeHandler(kb KnowledgeBase) *KnowledgeHandler {
	return &KnowledgeHandler{kb: kb}
}

// KnowledgeListResponse lists knowledge entries.
type KnowledgeListResponse struct {
	Total   int                  `json:"total"`
	Entries []rag.KnowledgeEntry `json:"entries"`
}

// CategoriesResponse lists the knowledge categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// CategoryContextResponse is the rendered context of one category.
type CategoryContextResponse struct {
	Category string `json:"category"`
	Context  string `json:"context"`
}

// List handles GET /api/knowledge. An optional ?category= narrows the list.
func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.kb.Knowledge()
	if category := r.URL.Query().Get("category"); category != "" {
		entries = slices.DeleteFunc(entries, func(e rag.KnowledgeEntry) bool {
			return e.Category != category
		})
	}
	writeJSON(w, http.StatusOK, KnowledgeListResponse{Total: len(entries), Entries: entries})
}

// Get handles GET /api/knowledge/{id}.
func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	entry, ok := h.kb.KnowledgeByID(id)
	if !ok {
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "knowledge entry not found", "id", id)
		writeError(w, http.StatusNotFound, "Knowledge entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Categories handles GET /api/knowledge/categories.
func (h *KnowledgeHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories := h.kb.Categories()
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

// CategoryContext handles GET /api/knowledge/categories/{category}/context.
func (h *KnowledgeHandler) CategoryContext(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if !slices.Contains(h.kb.Categories(), category) {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, CategoryContextResponse{
		Category: category,
		Context:  h.kb.ContextByCategory(category),
	})
}
