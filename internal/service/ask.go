package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ask_service.go -package=mocks klema-chatbot/internal/service AskService
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks klema-chatbot/internal/service LLMClient

import (
	"context"
	"strings"

	"klema-chatbot/internal/catalog"
	"klema-chatbot/internal/contextutil"
	"klema-chatbot/internal/llm"
	"klema-chatbot/internal/rag"
)

const (
	systemPrompt = `Si priateľská asistentka e-shopu Klema Earrings, ktorý predáva ručne vyrábané náušnice.
Odpovedaj po slovensky, stručne a milo. Pri otázkach na produkty odporúčaj iba produkty z poskytnutého kontextu
a uvádzaj ich cenu a odkaz. Ak odpoveď v kontexte nie je, povedz to a ponúkni kontakt na obchod.`

	questionLabel = "OTÁZKA ZÁKAZNÍKA:"

	maxHistoryMessages = 10
)

// LLMClient is the language model used to phrase answers.
type LLMClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
	StreamChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams, callback func(chunk string) error) error
}

// Retriever ranks knowledge and products for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, products []rag.ProductRecord, opts rag.RetrieveOptions) rag.Retrieval
}

// SearchRequest asks for retrieval without answer generation.
type SearchRequest struct {
	Query        string `json:"query"`
	MaxKnowledge int    `json:"maxKnowledge,omitempty"`
	MaxProducts  int    `json:"maxProducts,omitempty"`
}

// AskRequest is a customer question with optional earlier turns.
type AskRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history,omitempty"`
}

// AskResult is a generated answer and the retrieval it was grounded on.
type AskResult struct {
	Answer    string
	Retrieval rag.Retrieval
}

// AskService answers customer questions from the knowledge base and catalog.
type AskService interface {
	// Search runs retrieval only.
	Search(ctx context.Context, req SearchRequest) (rag.Retrieval, error)
	// Ask retrieves context and generates an answer.
	Ask(ctx context.Context, req AskRequest) (AskResult, error)
	// StreamAsk retrieves context and streams the answer through callback.
	StreamAsk(ctx context.Context, req AskRequest, callback func(chunk string) error) error
}

type askService struct {
	retriever Retriever
	products  catalog.Provider
	llm       LLMClient
	params    llm.ChatParams
}

// NewAskService creates a new AskService. products may be nil when no catalog
// is configured; product queries then rank an empty catalog.
func NewAskService(retriever Retriever, products catalog.Provider, llmClient LLMClient, params llm.ChatParams) AskService {
	return &askService{
		retriever: retriever,
		products:  products,
		llm:       llmClient,
		params:    params,
	}
}

// Search validates the query and runs retrieval.
func (s *askService) Search(ctx context.Context, req SearchRequest) (rag.Retrieval, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return rag.Retrieval{}, &ValidationError{
			Field:   "query",
			Message: "cannot be empty",
		}
	}
	if req.MaxKnowledge < 0 || req.MaxProducts < 0 {
		return rag.Retrieval{}, &ValidationError{
			Field:   "maxResults",
			Message: "cannot be negative",
		}
	}
	return s.retrieve(ctx, query, rag.RetrieveOptions{
		MaxKnowledge: req.MaxKnowledge,
		MaxProducts:  req.MaxProducts,
	}), nil
}

// Ask validates the question, retrieves context and generates the answer.
func (s *askService) Ask(ctx context.Context, req AskRequest) (AskResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Message)
	if question == "" {
		return AskResult{}, &ValidationError{
			Field:   "message",
			Message: "cannot be empty",
		}
	}

	retrieval := s.retrieve(ctx, question, rag.RetrieveOptions{})
	messages := buildMessages(question, req.History, retrieval.Context)

	logger.InfoContext(ctx, "generating answer",
		"question_length", len(question),
		"history", len(messages)-2,
		"context_length", len(retrieval.Context))

	answer, err := s.llm.ChatWithMessages(ctx, messages, s.params)
	if err != nil {
		logger.ErrorContext(ctx, "LLM request failed", "error", err)
		return AskResult{}, externalError(err, llm.ErrNotConfigured, "failed to get LLM response")
	}

	logger.InfoContext(ctx, "answer generated", "response_length", len(answer))
	return AskResult{Answer: answer, Retrieval: retrieval}, nil
}

// StreamAsk is Ask with the answer delivered in chunks.
func (s *askService) StreamAsk(ctx context.Context, req AskRequest, callback func(chunk string) error) error {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Message)
	if question == "" {
		return &ValidationError{
			Field:   "message",
			Message: "cannot be empty",
		}
	}

	retrieval := s.retrieve(ctx, question, rag.RetrieveOptions{})
	messages := buildMessages(question, req.History, retrieval.Context)

	logger.InfoContext(ctx, "streaming answer",
		"question_length", len(question),
		"context_length", len(retrieval.Context))

	if err := s.llm.StreamChatWithMessages(ctx, messages, s.params, callback); err != nil {
		logger.ErrorContext(ctx, "LLM stream failed", "error", err)
		return externalError(err, llm.ErrNotConfigured, "failed to stream LLM response")
	}
	return nil
}

// retrieve loads the catalog and runs the retriever. A catalog failure
// degrades to knowledge-only retrieval.
func (s *askService) retrieve(ctx context.Context, query string, opts rag.RetrieveOptions) rag.Retrieval {
	var products []rag.ProductRecord
	if s.products != nil {
		var err error
		products, err = s.products.Products(ctx)
		if err != nil {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "catalog unavailable, continuing without products", "error", err)
			products = nil
		}
	}
	return s.retriever.Retrieve(ctx, query, products, opts)
}

// buildMessages assembles the prompt. The question is sent bare when there is
// no retrieved context. History keeps only user and assistant turns.
func buildMessages(question string, history []llm.Message, retrievedContext string) []llm.Message {
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, m := range history {
		if m.Role != llm.RoleUser && m.Role != llm.RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		messages = append(messages, m)
	}

	content := question
	if retrievedContext != "" {
		content = retrievedContext + "\n\n" + questionLabel + " " + question
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: content})
}
