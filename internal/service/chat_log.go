package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_log_service.go -package=mocks klema-chatbot/internal/service ChatLogService

import (
	"context"
	"errors"
	"fmt"
	"time"

	"klema-chatbot/internal/contextutil"
	"klema-chatbot/internal/storage"
)

// Chat log actions accepted by SaveChat.
const (
	ActionMessage        = "message"
	ActionRecommendation = "recommendation"
	ActionClick          = "click"
	ActionEndSession     = "end_session"
)

// Results reported by SaveChat.
const (
	ResultCreated              = "created"
	ResultUpdated              = "updated"
	ResultRecommendationLogged = "recommendation_logged"
	ResultClickLogged          = "click_logged"
	ResultSessionEnded         = "session_ended"
)

// SaveChatRequest is one chat analytics event sent by the storefront widget.
// Fields beyond Action and SessionID are read depending on the action.
type SaveChatRequest struct {
	Action                   string               `json:"action"`
	SessionID                string               `json:"sessionId"`
	Website                  string               `json:"website"`
	UserID                   string               `json:"userId,omitempty"`
	UserMessage              string               `json:"userMessage,omitempty"`
	BotResponse              string               `json:"botResponse,omitempty"`
	MessageIndex             int                  `json:"messageIndex,omitempty"`
	GeoCity                  string               `json:"geoCity,omitempty"`
	EmailSubmitted           bool                 `json:"emailSubmitted,omitempty"`
	HadProductRecommendation bool                 `json:"hadProductRecommendation,omitempty"`
	HadProductClick          bool                 `json:"hadProductClick,omitempty"`
	ChatLogID                string               `json:"chatLogId,omitempty"`
	QueryText                string               `json:"queryText,omitempty"`
	Category                 string               `json:"category,omitempty"`
	Products                 []RecommendedProduct `json:"products,omitempty"`
	ProductID                string               `json:"productId,omitempty"`
	Position                 *int                 `json:"position,omitempty"`
	RecommendationID         string               `json:"recommendationId,omitempty"`
	DurationSeconds          int                  `json:"durationSeconds,omitempty"`
}

// RecommendedProduct is a product listed in a recommendation event. A missing or zero
// position defaults to the product's place in the list.
type RecommendedProduct struct {
	ProductID   string   `json:"productId"`
	ProductName string   `json:"productName,omitempty"`
	ProductURL  string   `json:"productUrl,omitempty"`
	Position    *int     `json:"position,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// SaveChatResult describes what SaveChat did.
type SaveChatResult struct {
	Action           string           `json:"action"`
	Session          *storage.Session `json:"session,omitempty"`
	RecommendationID string           `json:"recommendationId,omitempty"`
	ClickID          string           `json:"clickId,omitempty"`
}

// ChatLogService records chat sessions and product recommendation analytics.
type ChatLogService interface {
	SaveChat(ctx context.Context, req SaveChatRequest) (SaveChatResult, error)
}

type chatLogService struct {
	store storage.ChatStore
	now   func() time.Time
}

// NewChatLogService creates a new ChatLogService.
func NewChatLogService(store storage.ChatStore) ChatLogService {
	return &chatLogService{store: store, now: time.Now}
}

// SaveChat validates the event and dispatches it by action.
func (s *chatLogService) SaveChat(ctx context.Context, req SaveChatRequest) (SaveChatResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Action == "" || req.SessionID == "" {
		return SaveChatResult{}, &ValidationError{
			Field:   "action",
			Message: "action and sessionId are required",
		}
	}

	var (
		result SaveChatResult
		err    error
	)
	switch req.Action {
	case ActionMessage:
		if req.Website == "" {
			return SaveChatResult{}, &ValidationError{
				Field:   "website",
				Message: "website is required for message action",
			}
		}
		result, err = s.saveMessage(ctx, req)
	case ActionRecommendation:
		result, err = s.saveRecommendation(ctx, req)
	case ActionClick:
		if req.ProductID == "" {
			return SaveChatResult{}, &ValidationError{
				Field:   "productId",
				Message: "productId is required for click action",
			}
		}
		result, err = s.saveClick(ctx, req)
	case ActionEndSession:
		result, err = s.endSession(ctx, req)
	default:
		msg := fmt.Sprintf("Unknown action: %s. Valid actions: %s, %s, %s, %s",
			req.Action, ActionMessage, ActionRecommendation, ActionClick, ActionEndSession)
		return SaveChatResult{}, &ValidationError{Field: "action", Message: msg}
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to save chat event", "action", req.Action, "session_id", req.SessionID, "error", err)
		return SaveChatResult{}, err
	}

	logger.InfoContext(ctx, "chat event saved", "action", req.Action, "result", result.Action, "session_id", req.SessionID)
	return result, nil
}

func (s *chatLogService) saveMessage(ctx context.Context, req SaveChatRequest) (SaveChatResult, error) {
	msg := storage.Message{
		Index:     req.MessageIndex,
		User:      req.UserMessage,
		Bot:       req.BotResponse,
		Timestamp: s.now().UTC(),
	}
	flags := storage.SessionFlags{
		GeoCity:                  req.GeoCity,
		EmailSubmitted:           req.EmailSubmitted,
		HadProductRecommendation: req.HadProductRecommendation,
		HadProductClick:          req.HadProductClick,
	}

	_, err := s.store.GetSession(ctx, req.SessionID)
	switch {
	case err == nil:
		session, err := s.store.AppendMessage(ctx, req.SessionID, msg, flags)
		if err != nil {
			return SaveChatResult{}, WrapError(err, "failed to append message")
		}
		return SaveChatResult{Action: ResultUpdated, Session: session}, nil
	case errors.Is(err, storage.ErrNotFound):
	default:
		return SaveChatResult{}, WrapError(err, "failed to load session")
	}

	session := &storage.Session{
		ID:                       req.SessionID,
		Website:                  req.Website,
		UserID:                   req.UserID,
		StartedAt:                s.now().UTC(),
		TotalMessages:            1,
		Conversation:             []storage.Message{msg},
		GeoCity:                  req.GeoCity,
		EmailSubmitted:           req.EmailSubmitted,
		HadProductRecommendation: req.HadProductRecommendation,
		HadProductClick:          req.HadProductClick,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return SaveChatResult{}, WrapError(err, "failed to create session")
	}
	return SaveChatResult{Action: ResultCreated, Session: session}, nil
}

func (s *chatLogService) saveRecommendation(ctx context.Context, req SaveChatRequest) (SaveChatResult, error) {
	rec := &storage.Recommendation{
		SessionID: req.SessionID,
		ChatLogID: req.ChatLogID,
		Website:   req.Website,
		QueryText: req.QueryText,
		Category:  req.Category,
		UserID:    req.UserID,
		CreatedAt: s.now().UTC(),
		Products:  make([]storage.RecommendedProduct, 0, len(req.Products)),
	}
	for i, p := range req.Products {
		position := i + 1
		if p.Position != nil && *p.Position > 0 {
			position = *p.Position
		}
		rec.Products = append(rec.Products, storage.RecommendedProduct{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			ProductURL:  p.ProductURL,
			Position:    position,
			Price:       p.Price,
		})
	}

	if err := s.store.CreateRecommendation(ctx, rec); err != nil {
		return SaveChatResult{}, WrapError(err, "failed to log recommendation")
	}
	if err := s.store.LatchFlags(ctx, req.SessionID, storage.SessionFlags{HadProductRecommendation: true}); err != nil {
		return SaveChatResult{}, WrapError(err, "failed to flag session")
	}
	return SaveChatResult{Action: ResultRecommendationLogged, RecommendationID: rec.ID}, nil
}

func (s *chatLogService) saveClick(ctx context.Context, req SaveChatRequest) (SaveChatResult, error) {
	click := &storage.Click{
		SessionID: req.SessionID,
		ProductID: req.ProductID,
		Position:  req.Position,
		Website:   req.Website,
		UserID:    req.UserID,
		ClickedAt: s.now().UTC(),
	}
	if err := s.store.RecordClick(ctx, click, req.RecommendationID); err != nil {
		return SaveChatResult{}, WrapError(err, "failed to log click")
	}
	if err := s.store.LatchFlags(ctx, req.SessionID, storage.SessionFlags{HadProductClick: true}); err != nil {
		return SaveChatResult{}, WrapError(err, "failed to flag session")
	}
	return SaveChatResult{Action: ResultClickLogged, ClickID: click.ID}, nil
}

func (s *chatLogService) endSession(ctx context.Context, req SaveChatRequest) (SaveChatResult, error) {
	duration := req.DurationSeconds
	if duration < 0 {
		duration = 0
	}
	session, err := s.store.EndSession(ctx, req.SessionID, s.now().UTC(), duration)
	if errors.Is(err, storage.ErrNotFound) {
		return SaveChatResult{}, fmt.Errorf("session %s: %w", req.SessionID, ErrNotFound)
	}
	if err != nil {
		return SaveChatResult{}, WrapError(err, "failed to end session")
	}
	return SaveChatResult{Action: ResultSessionEnded, Session: session}, nil
}
