package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"klema-chatbot/internal/rag"
	"klema-chatbot/internal/service"
	"klema-chatbot/internal/service/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testRetrieval() rag.Retrieval {
	return rag.Retrieval{
		Analysis: rag.QueryAnalysis{Query: "červené náušnice", Intent: rag.IntentRecommend, Category: "products"},
		Knowledge: []rag.Scored[rag.KnowledgeEntry]{
			{Item: rag.KnowledgeEntry{ID: "shipping", Title: "Doprava", Category: "shipping"}, Score: 12},
		},
		Products: []rag.Scored[rag.ProductRecord]{
			{Item: rag.ProductRecord{ID: "jahodky", Title: "Jahôdky", URL: "https://klemaearrings.sk/products/jahodky", Price: 18.9, Available: true}, Score: 25},
		},
		Context: "=== PRODUKTY ===\n\n**Jahôdky** 18,90 €",
	}
}

func TestAskHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		body          string
		mockSetup     func(*mocks.MockAskService)
		wantStatus    int
		checkResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:   "successful POST request",
			method: http.MethodPost,
			body:   `{"message":"Máte červené náušnice?"}`,
			mockSetup: func(m *mocks.MockAskService) {
				m.EXPECT().
					Ask(gomock.Any(), service.AskRequest{Message: "Máte červené náušnice?"}).
					Return(service.AskResult{Answer: "Áno, Jahôdky.", Retrieval: testRetrieval()}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp AskResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if resp.Reply != "Áno, Jahôdky." || resp.Intent != "recommend" {
					t.Errorf("response = %+v", resp)
				}
				if len(resp.Knowledge) != 1 || resp.Knowledge[0].ID != "shipping" {
					t.Errorf("knowledge = %+v", resp.Knowledge)
				}
				if len(resp.Products) != 1 || resp.Products[0].Score != 25 || resp.Products[0].URL == "" {
					t.Errorf("products = %+v", resp.Products)
				}
			},
		},
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			mockSetup:  func(m *mocks.MockAskService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "invalid JSON body",
			method:     http.MethodPost,
			body:       "invalid json",
			mockSetup:  func(m *mocks.MockAskService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "validation error",
			method: http.MethodPost,
			body:   `{"message":""}`,
			mockSetup: func(m *mocks.MockAskService) {
				m.EXPECT().
					Ask(gomock.Any(), service.AskRequest{}).
					Return(service.AskResult{}, &service.ValidationError{Field: "message", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				if !strings.Contains(w.Body.String(), "Validation error: cannot be empty") {
					t.Errorf("body = %s", w.Body.String())
				}
			},
		},
		{
			name:   "service error",
			method: http.MethodPost,
			body:   `{"message":"Ahoj"}`,
			mockSetup: func(m *mocks.MockAskService) {
				m.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(service.AskResult{}, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:   "ErrExternalService",
			method: http.MethodPost,
			body:   `{"message":"Ahoj"}`,
			mockSetup: func(m *mocks.MockAskService) {
				m.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(service.AskResult{}, service.ErrExternalService)
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:   "ErrNotConfigured",
			method: http.MethodPost,
			body:   `{"message":"Ahoj"}`,
			mockSetup: func(m *mocks.MockAskService) {
				m.EXPECT().Ask(gomock.Any(), gomock.Any()).Return(service.AskResult{}, service.ErrNotConfigured)
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockAskService := mocks.NewMockAskService(ctrl)
			tt.mockSetup(mockAskService)

			handler := NewAskHandler(mockAskService)
			req := httptest.NewRequest(tt.method, "/api/ask", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestAskHandler_Streaming(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAskService := mocks.NewMockAskService(ctrl)
	mockAskService.EXPECT().
		StreamAsk(gomock.Any(), service.AskRequest{Message: "Ahoj"}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ service.AskRequest, callback func(string) error) error {
			for _, chunk := range []string{"Dobrý ", "deň\nvitajte"} {
				if err := callback(chunk); err != nil {
					return err
				}
			}
			return nil
		})

	handler := NewAskHandler(mockAskService)
	req := httptest.NewRequest(http.MethodPost, "/api/ask?stream=true", bytes.NewBufferString(`{"message":"Ahoj"}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	want := "data: Dobrý \n\ndata: deň\ndata: vitajte\n\ndata: [DONE]\n\n"
	if w.Body.String() != want {
		t.Errorf("body = %q, want %q", w.Body.String(), want)
	}
}

func TestAskHandler_StreamingErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAskService := mocks.NewMockAskService(ctrl)
	handler := NewAskHandler(mockAskService)

	// An empty question is rejected before the stream starts.
	req := httptest.NewRequest(http.MethodPost, "/api/ask?stream=true", bytes.NewBufferString(`{"message":" "}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty message status = %d, want 400", w.Code)
	}

	mockAskService.EXPECT().
		StreamAsk(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(service.ErrExternalService)

	req = httptest.NewRequest(http.MethodPost, "/api/ask?stream=true", bytes.NewBufferString(`{"message":"Ahoj"}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.HasPrefix(body, `data: {"error":`) {
		t.Errorf("body = %q, want SSE error event", body)
	}
	if strings.Contains(body, "[DONE]") {
		t.Error("failed stream should not send [DONE]")
	}
}

func TestSearchHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAskService := mocks.NewMockAskService(ctrl)
	mockAskService.EXPECT().
		Search(gomock.Any(), service.SearchRequest{Query: "červené náušnice", MaxProducts: 3}).
		Return(testRetrieval(), nil)

	handler := NewSearchHandler(mockAskService)
	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewBufferString(`{"query":"červené náušnice","maxProducts":3}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got rag.Retrieval
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Analysis.Category != "products" || len(got.Products) != 1 || got.Products[0].Score != 25 {
		t.Errorf("retrieval = %+v", got)
	}
}

func TestSearchHandler_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAskService := mocks.NewMockAskService(ctrl)
	mockAskService.EXPECT().
		Search(gomock.Any(), gomock.Any()).
		Return(rag.Retrieval{}, &service.ValidationError{Field: "query", Message: "cannot be empty"})

	handler := NewSearchHandler(mockAskService)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/search", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewBufferString(`{"query":""}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", w.Code)
	}
}
