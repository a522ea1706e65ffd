package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	catalogmocks "klema-chatbot/internal/catalog/mocks"
	"klema-chatbot/internal/llm"
	"klema-chatbot/internal/rag"
	"klema-chatbot/internal/service"
	"klema-chatbot/internal/service/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// stubRetriever returns a fixed retrieval and records what it was given.
type stubRetriever struct {
	result   rag.Retrieval
	query    string
	products []rag.ProductRecord
	opts     rag.RetrieveOptions
	calls    int
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, products []rag.ProductRecord, opts rag.RetrieveOptions) rag.Retrieval {
	s.calls++
	s.query = query
	s.products = products
	s.opts = opts
	return s.result
}

var testProducts = []rag.ProductRecord{
	{ID: "jahodky", Title: "Jahôdky", Price: 18.9, Available: true},
}

func TestAskService_Ask(t *testing.T) {
	ctrl := gomock.NewController(t)

	retriever := &stubRetriever{result: rag.Retrieval{Context: "=== ZNALOSTI ===\n\nDoprava zdarma nad 50 €."}}
	provider := catalogmocks.NewMockProvider(ctrl)
	provider.EXPECT().Products(gomock.Any()).Return(testProducts, nil)
	llmClient := mocks.NewMockLLMClient(ctrl)
	params := llm.ChatParams{MaxTokens: 500}

	llmClient.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), params).
		DoAndReturn(func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
			if len(messages) != 2 {
				t.Fatalf("got %d messages, want 2", len(messages))
			}
			if messages[0].Role != llm.RoleSystem {
				t.Errorf("messages[0].Role = %q, want system", messages[0].Role)
			}
			user := messages[1].Content
			if !strings.HasPrefix(user, "=== ZNALOSTI ===") {
				t.Errorf("user message should start with the context, got %q", user)
			}
			if !strings.HasSuffix(user, "Koľko stojí doprava?") {
				t.Errorf("user message should end with the question, got %q", user)
			}
			return "Doprava je zdarma nad 50 €.", nil
		})

	svc := service.NewAskService(retriever, provider, llmClient, params)
	got, err := svc.Ask(context.Background(), service.AskRequest{Message: "  Koľko stojí doprava?  "})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if got.Answer != "Doprava je zdarma nad 50 €." {
		t.Errorf("Answer = %q", got.Answer)
	}
	if retriever.query != "Koľko stojí doprava?" {
		t.Errorf("retriever query = %q, want trimmed question", retriever.query)
	}
	if len(retriever.products) != 1 {
		t.Errorf("retriever got %d products, want 1", len(retriever.products))
	}
	if got.Retrieval.Context != retriever.result.Context {
		t.Error("Ask() should return the retrieval it used")
	}
}

func TestAskService_Ask_EmptyContextSendsBareQuestion(t *testing.T) {
	ctrl := gomock.NewController(t)

	llmClient := mocks.NewMockLLMClient(ctrl)
	llmClient.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
			last := messages[len(messages)-1]
			if last.Content != "Ahoj" {
				t.Errorf("user message = %q, want bare question", last.Content)
			}
			return "Dobrý deň!", nil
		})

	svc := service.NewAskService(&stubRetriever{}, nil, llmClient, llm.ChatParams{})
	if _, err := svc.Ask(context.Background(), service.AskRequest{Message: "Ahoj"}); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
}

func TestAskService_Ask_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	retriever := &stubRetriever{}
	svc := service.NewAskService(retriever, nil, mocks.NewMockLLMClient(ctrl), llm.ChatParams{})

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := svc.Ask(context.Background(), service.AskRequest{Message: msg})
		var validationErr *service.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("Ask(%q) error = %v, want ValidationError", msg, err)
			continue
		}
		if validationErr.Field != "message" {
			t.Errorf("Field = %q, want message", validationErr.Field)
		}
	}
	if retriever.calls != 0 {
		t.Errorf("retriever called %d times on invalid input", retriever.calls)
	}
}

func TestAskService_Ask_LLMError(t *testing.T) {
	ctrl := gomock.NewController(t)

	llmClient := mocks.NewMockLLMClient(ctrl)
	llmClient.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("connection refused"))

	svc := service.NewAskService(&stubRetriever{}, nil, llmClient, llm.ChatParams{})
	_, err := svc.Ask(context.Background(), service.AskRequest{Message: "Ahoj"})
	if !errors.Is(err, service.ErrExternalService) {
		t.Errorf("Ask() error = %v, want ErrExternalService", err)
	}
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Ask() error = %v, want cause kept", err)
	}
}

func TestAskService_CatalogFailureDegrades(t *testing.T) {
	ctrl := gomock.NewController(t)

	provider := catalogmocks.NewMockProvider(ctrl)
	provider.EXPECT().Products(gomock.Any()).Return(nil, errors.New("shop down"))

	retriever := &stubRetriever{}
	svc := service.NewAskService(retriever, provider, mocks.NewMockLLMClient(ctrl), llm.ChatParams{})

	if _, err := svc.Search(context.Background(), service.SearchRequest{Query: "červené náušnice"}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if retriever.calls != 1 || retriever.products != nil {
		t.Errorf("retriever calls = %d, products = %v; want one call without products", retriever.calls, retriever.products)
	}
}

func TestAskService_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := catalogmocks.NewMockProvider(ctrl)
	provider.EXPECT().Products(gomock.Any()).Return(testProducts, nil)

	retriever := &stubRetriever{result: rag.Retrieval{Context: "ctx"}}
	svc := service.NewAskService(retriever, provider, mocks.NewMockLLMClient(ctrl), llm.ChatParams{})

	got, err := svc.Search(context.Background(), service.SearchRequest{Query: "náušnice do 20 €", MaxKnowledge: 2, MaxProducts: 4})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got.Context != "ctx" {
		t.Errorf("Context = %q", got.Context)
	}
	if retriever.opts.MaxKnowledge != 2 || retriever.opts.MaxProducts != 4 {
		t.Errorf("opts = %+v, want limits forwarded", retriever.opts)
	}
}

func TestAskService_Search_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := service.NewAskService(&stubRetriever{}, nil, mocks.NewMockLLMClient(ctrl), llm.ChatParams{})

	tests := []struct {
		name string
		req  service.SearchRequest
	}{
		{"empty query", service.SearchRequest{Query: " "}},
		{"negative knowledge limit", service.SearchRequest{Query: "x", MaxKnowledge: -1}},
		{"negative product limit", service.SearchRequest{Query: "x", MaxProducts: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tt.req)
			var validationErr *service.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("Search() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestAskService_StreamAsk(t *testing.T) {
	ctrl := gomock.NewController(t)

	llmClient := mocks.NewMockLLMClient(ctrl)
	llmClient.EXPECT().
		StreamChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ []llm.Message, _ llm.ChatParams, callback func(string) error) error {
			for _, chunk := range []string{"Dobrý ", "deň!"} {
				if err := callback(chunk); err != nil {
					return err
				}
			}
			return nil
		})

	svc := service.NewAskService(&stubRetriever{}, nil, llmClient, llm.ChatParams{})

	var b strings.Builder
	err := svc.StreamAsk(context.Background(), service.AskRequest{Message: "Ahoj"}, func(chunk string) error {
		b.WriteString(chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamAsk() error = %v", err)
	}
	if b.String() != "Dobrý deň!" {
		t.Errorf("streamed %q, want %q", b.String(), "Dobrý deň!")
	}
}

func TestAskService_StreamAsk_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)

	llmClient := mocks.NewMockLLMClient(ctrl)
	llmClient.EXPECT().
		StreamChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("stream broken"))

	svc := service.NewAskService(&stubRetriever{}, nil, llmClient, llm.ChatParams{})
	noop := func(string) error { return nil }

	var validationErr *service.ValidationError
	if err := svc.StreamAsk(context.Background(), service.AskRequest{}, noop); !errors.As(err, &validationErr) {
		t.Errorf("StreamAsk(empty) error = %v, want ValidationError", err)
	}
	if err := svc.StreamAsk(context.Background(), service.AskRequest{Message: "Ahoj"}, noop); !errors.Is(err, service.ErrExternalService) {
		t.Errorf("StreamAsk() error = %v, want ErrExternalService", err)
	}
}

func TestAskService_Ask_NotConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)

	llmClient := mocks.NewMockLLMClient(ctrl)
	llmClient.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", llm.ErrNotConfigured)

	svc := service.NewAskService(&stubRetriever{}, nil, llmClient, llm.ChatParams{})
	_, err := svc.Ask(context.Background(), service.AskRequest{Message: "Ahoj"})
	if !errors.Is(err, service.ErrNotConfigured) {
		t.Errorf("Ask() error = %v, want ErrNotConfigured", err)
	}
	if errors.Is(err, service.ErrExternalService) {
		t.Error("missing configuration should not be reported as an upstream failure")
	}
}
