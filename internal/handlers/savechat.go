package handlers

import (
	"encoding/json"
	"net/http"

	"klema-chatbot/internal/contextutil"
	"klema-chatbot/internal/service"
	"klema-chatbot/internal/storage"
)

// SaveChatHandler records chat analytics events.
type SaveChatHandler struct {
	chatLog service.ChatLogService
}

// NewSaveChatHandler creates a new SaveChatHandler.
func NewSaveChatHandler(chatLog service.ChatLogService) *SaveChatHandler {
	return &SaveChatHandler{chatLog: chatLog}
}

// SaveChatResponse reports the outcome of a recorded event.
type SaveChatResponse struct {
	Success          bool             `json:"success"`
	Action           string           `json:"action"`
	Session          *storage.Session `json:"session,omitempty"`
	RecommendationID string           `json:"recommendationId,omitempty"`
	ClickID          string           `json:"clickId,omitempty"`
}

// ServeHTTP accepts POST requests only.
func (h *SaveChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	var req service.SaveChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.chatLog.SaveChat(ctx, req)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to save chat")
		return
	}

	writeJSON(w, http.StatusOK, SaveChatResponse{
		Success:          true,
		Action:           result.Action,
		Session:          result.Session,
		RecommendationID: result.RecommendationID,
		ClickID:          result.ClickID,
	})
}
