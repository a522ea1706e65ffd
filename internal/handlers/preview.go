package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghhtml "github.com/yuin/goldmark/renderer/html"

	"klema-chatbot/internal/contextutil"
	"klema-chatbot/internal/rag"
	"klema-chatbot/internal/service"
)

// ContextPreviewHandler renders the context assembled for a query as an HTML
// page, so prompt material can be reviewed in a browser.
type ContextPreviewHandler struct {
	askService service.AskService
	markdown   goldmark.Markdown
	template   *template.Template
}

// previewPageData holds template data for rendered previews.
type previewPageData struct {
	Query     string
	Intent    string
	Category  string
	Knowledge []KnowledgeSource
	Products  []ProductSource
	Content   template.HTML
}

// ContextPreviewRequest is the POST body of a preview.
type ContextPreviewRequest struct {
	Query string `json:"query"`
}

// NewContextPreviewHandler creates a new ContextPreviewHandler.
func NewContextPreviewHandler(askService service.AskService) *ContextPreviewHandler {
	tmpl := template.Must(template.New("preview").Funcs(template.FuncMap{
		"score": func(v float64) string { return fmt.Sprintf("%g", v) },
	}).Parse(`<!DOCTYPE html>
<html lang="sk">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Kontext: {{.Query}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 900px;
      line-height: 1.6;
      background: #fdf8f5;
      color: #3b2f2f;
    }
    header {
      margin-bottom: 1.5rem;
      border-bottom: 1px solid #e8d8cf;
      padding-bottom: 1rem;
    }
    h1 {
      margin-top: 0;
      font-size: 1.6rem;
    }
    .meta {
      color: #8a7469;
      font-size: 0.95rem;
    }
    table {
      border-collapse: collapse;
      width: 100%;
      margin-bottom: 1.5rem;
    }
    th, td {
      text-align: left;
      padding: 0.35rem 0.5rem;
      border-bottom: 1px solid #eee2db;
    }
    article {
      background: #fff;
      border: 1px solid #e8d8cf;
      border-radius: 12px;
      padding: 1.5rem 2rem;
    }
    .empty {
      color: #8a7469;
      font-style: italic;
    }
  </style>
</head>
<body>
  <header>
    <h1>{{.Query}}</h1>
    <p class="meta">Zámer: {{if .Intent}}{{.Intent}}{{else}}žiadny{{end}} &middot; Kategória: {{if .Category}}{{.Category}}{{else}}žiadna{{end}}</p>
  </header>
  {{if .Knowledge}}
  <table>
    <tr><th>Znalosť</th><th>Kategória</th><th>Skóre</th></tr>
    {{range .Knowledge}}<tr><td>{{.Title}}</td><td>{{.Category}}</td><td>{{score .Score}}</td></tr>
    {{end}}
  </table>
  {{end}}
  {{if .Products}}
  <table>
    <tr><th>Produkt</th><th>Cena</th><th>Skóre</th></tr>
    {{range .Products}}<tr><td>{{if .URL}}<a href="{{.URL}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</td><td>{{printf "%.2f" .Price}} €</td><td>{{score .Score}}</td></tr>
    {{end}}
  </table>
  {{end}}
  {{if .Content}}<article>{{.Content}}</article>{{else}}<p class="empty">Pre túto otázku sa nenašiel žiadny kontext.</p>{{end}}
</body>
</html>`))

	return &ContextPreviewHandler{
		askService: askService,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Linkify,
			),
			goldmark.WithRendererOptions(
				ghhtml.WithHardWraps(),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: tmpl,
	}
}

// ServeHTTP takes the query from ?q= on GET or from the JSON body on POST.
func (h *ContextPreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if methodNotAllowed(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	query := r.URL.Query().Get("q")
	if r.Method == http.MethodPost {
		var req ContextPreviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WarnContext(ctx, "invalid request body", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		query = req.Query
	}

	retrieval, err := h.askService.Search(ctx, service.SearchRequest{Query: query})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to build context")
		return
	}

	content, err := h.renderMarkdown(retrieval.Context)
	if err != nil {
		logger.ErrorContext(ctx, "failed to render context", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render context")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, newPreviewPage(retrieval, content)); err != nil {
		logger.ErrorContext(ctx, "failed to execute preview template", "error", err)
	}
}

func newPreviewPage(r rag.Retrieval, content string) previewPageData {
	return previewPageData{
		Query:     r.Analysis.Query,
		Intent:    string(r.Analysis.Intent),
		Category:  r.Analysis.Category,
		Knowledge: knowledgeSources(r.Knowledge),
		Products:  productSources(r.Products),
		Content:   template.HTML(content),
	}
}

// renderMarkdown converts context to HTML. Raw HTML in the context, such as
// text copied from product pages, is omitted.
func (h *ContextPreviewHandler) renderMarkdown(content string) (string, error) {
	if content == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
