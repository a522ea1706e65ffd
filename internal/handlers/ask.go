package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"klema-chatbot/internal/contextutil"
	"klema-chatbot/internal/llm"
	"klema-chatbot/internal/rag"
	"klema-chatbot/internal/service"
)

// AskHandler handles HTTP requests for customer questions.
type AskHandler struct {
	askService service.AskService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(askService service.AskService) *AskHandler {
	return &AskHandler{askService: askService}
}

// AskRequest represents the HTTP request payload for a question.
type AskRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history,omitempty"`
}

// AskResponse represents the HTTP response payload for a question.
type AskResponse struct {
	Reply     string            `json:"reply"`
	Intent    string            `json:"intent,omitempty"`
	Knowledge []KnowledgeSource `json:"knowledge"`
	Products  []ProductSource   `json:"products"`
}

// KnowledgeSource is a knowledge entry the answer was grounded on.
type KnowledgeSource struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Score    float64 `json:"relevance_score"`
}

// ProductSource is a product the answer may recommend.
type ProductSource struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	URL       string  `json:"url,omitempty"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
	Score     float64 `json:"relevance_score"`
}

// ServeHTTP handles HTTP requests for questions. With ?stream=true the answer
// is sent as Server-Sent Events.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	svcReq := service.AskRequest{
		Message: req.Message,
		History: req.History,
	}

	if r.URL.Query().Get("stream") == "true" {
		h.handleStreamingAsk(w, ctx, svcReq)
		return
	}

	result, err := h.askService.Ask(ctx, svcReq)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to process question")
		return
	}

	writeJSON(w, http.StatusOK, newAskResponse(result))
}

// handleStreamingAsk streams the answer using Server-Sent Events.
func (h *AskHandler) handleStreamingAsk(w http.ResponseWriter, ctx context.Context, req service.AskRequest) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Message) == "" {
		handleServiceError(w, ctx, &service.ValidationError{Field: "message", Message: "cannot be empty"}, "")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	err := h.askService.StreamAsk(ctx, req, func(chunk string) error {
		if _, err := fmt.Fprintf(w, "data: %s\n\n", sseEscape(chunk)); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "error streaming answer", "error", err)
		payload, _ := json.Marshal(ErrorResponse{Error: err.Error()})
		_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return
	}

	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// sseEscape keeps a multi-line chunk inside one event.
func sseEscape(chunk string) string {
	return strings.ReplaceAll(chunk, "\n", "\ndata: ")
}

func newAskResponse(result service.AskResult) AskResponse {
	r := result.Retrieval
	return AskResponse{
		Reply:     result.Answer,
		Intent:    string(r.Analysis.Intent),
		Knowledge: knowledgeSources(r.Knowledge),
		Products:  productSources(r.Products),
	}
}

func knowledgeSources(ranked []rag.Scored[rag.KnowledgeEntry]) []KnowledgeSource {
	out := make([]KnowledgeSource, 0, len(ranked))
	for _, k := range ranked {
		out = append(out, KnowledgeSource{
			ID:       k.Item.ID,
			Title:    k.Item.Title,
			Category: k.Item.Category,
			Score:    k.Score,
		})
	}
	return out
}

func productSources(ranked []rag.Scored[rag.ProductRecord]) []ProductSource {
	out := make([]ProductSource, 0, len(ranked))
	for _, p := range ranked {
		out = append(out, ProductSource{
			ID:        p.Item.ID,
			Title:     p.Item.Title,
			URL:       p.Item.URL,
			Image:     p.Item.Image,
			Price:     p.Item.Price,
			Available: p.Item.Available,
			Score:     p.Score,
		})
	}
	return out
}
