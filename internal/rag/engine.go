package rag

import (
	"context"
	"log/slog"

	"klema-chatbot/internal/contextutil"
)

// QueryAnalysis holds every signal derived from one query. It depends only on
// the query string and the engine's tables.
type QueryAnalysis struct {
	Query          string      `json:"query"`
	Normalized     string      `json:"normalized"`
	Keywords       []string    `json:"keywords"`
	Bigrams        []string    `json:"bigrams"`
	Expanded       []string    `json:"expanded"`
	Intent         Intent      `json:"intent,omitempty"`
	Category       string      `json:"category,omitempty"`
	IsProductQuery bool        `json:"is_product_query"`
	PriceRange     *PriceRange `json:"price_range,omitempty"`
	Size           string      `json:"size,omitempty"`
	Color          string      `json:"color,omitempty"`
}

// Options configures an Engine. Zero values fall back to the defaults.
type Options struct {
	Tables       *Tables
	MaxKnowledge int
	MaxProducts  int
	Logger       *slog.Logger
}

// Engine ranks knowledge entries and products against free-text queries.
// It is read-only after construction and safe for concurrent use.
type Engine struct {
	tables       *Tables
	entries      []KnowledgeEntry
	normalized   []normalizedEntry
	maxKnowledge int
	maxProducts  int
	logger       *slog.Logger
}

// NewEngine builds an engine over a fixed knowledge base.
func NewEngine(kb []KnowledgeEntry, opts Options) *Engine {
	tables := opts.Tables
	if tables == nil {
		tables = DefaultTables()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxKnowledge := opts.MaxKnowledge
	if maxKnowledge <= 0 {
		maxKnowledge = DefaultKnowledgeResults
	}
	maxProducts := opts.MaxProducts
	if maxProducts <= 0 {
		maxProducts = DefaultProductResults
	}

	entries := append([]KnowledgeEntry(nil), kb...)
	normalized := make([]normalizedEntry, len(entries))
	for i, e := range entries {
		normalized[i] = normalizeEntry(e)
	}

	return &Engine{
		tables:       tables,
		entries:      entries,
		normalized:   normalized,
		maxKnowledge: maxKnowledge,
		maxProducts:  maxProducts,
		logger:       logger,
	}
}

// Tables returns the lookup tables the engine scores with.
func (e *Engine) Tables() *Tables {
	return e.tables
}

// Analyze derives every query signal in one pass.
func (e *Engine) Analyze(query string) QueryAnalysis {
	t := e.tables
	normalized := Normalize(query)
	keywords := t.ExtractKeywords(normalized)
	return QueryAnalysis{
		Query:          query,
		Normalized:     normalized,
		Keywords:       keywords,
		Bigrams:        t.ExtractBigrams(normalized),
		Expanded:       t.Expand(keywords),
		Intent:         t.DetectIntent(query),
		Category:       t.DetectCategory(query),
		IsProductQuery: t.IsProductQuery(query),
		PriceRange:     t.ExtractPriceRange(query),
		Size:           t.ExtractSize(query),
		Color:          t.ExtractColor(query),
	}
}

// SearchKnowledge ranks the knowledge base against query. maxResults <= 0
// uses the engine default.
func (e *Engine) SearchKnowledge(query string, maxResults int) []Scored[KnowledgeEntry] {
	if maxResults <= 0 {
		maxResults = e.maxKnowledge
	}
	return rankKnowledge(e.entries, e.normalized, e.Analyze(query), maxResults)
}

// SearchProducts ranks a product snapshot against query. A nil or empty
// snapshot yields no results.
func (e *Engine) SearchProducts(query string, products []ProductRecord, maxResults int) []Scored[ProductRecord] {
	if maxResults <= 0 {
		maxResults = e.maxProducts
	}
	return rankProducts(products, e.Analyze(query), maxResults)
}

// KnowledgeByID returns the entry with the given id.
func (e *Engine) KnowledgeByID(id string) (KnowledgeEntry, bool) {
	for _, entry := range e.entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return KnowledgeEntry{}, false
}

// Knowledge returns a copy of the whole knowledge base.
func (e *Engine) Knowledge() []KnowledgeEntry {
	return append([]KnowledgeEntry(nil), e.entries...)
}

// Categories lists the distinct entry categories in knowledge base order.
func (e *Engine) Categories() []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, entry := range e.entries {
		if _, ok := seen[entry.Category]; ok {
			continue
		}
		seen[entry.Category] = struct{}{}
		categories = append(categories, entry.Category)
	}
	return categories
}

// ContextByCategory renders every entry of one category as context. Entries
// are unranked, so they carry a zero score.
func (e *Engine) ContextByCategory(category string) string {
	var items []Scored[KnowledgeEntry]
	for _, entry := range e.entries {
		if entry.Category == category {
			items = append(items, Scored[KnowledgeEntry]{Item: entry})
		}
	}
	return BuildContext(items, "")
}

// DebugReport is the diagnostic view of one query.
type DebugReport struct {
	Analysis QueryAnalysis            `json:"analysis"`
	Results  []Scored[KnowledgeEntry] `json:"results"`
	Context  string                   `json:"context"`
}

const (
	debugResults      = 5
	debugContextItems = 2
)

// Debug analyses query, ranks the top five entries and renders the context of
// the best two.
func (e *Engine) Debug(query string) DebugReport {
	a := e.Analyze(query)
	results := rankKnowledge(e.entries, e.normalized, a, debugResults)
	top := results
	if len(top) > debugContextItems {
		top = top[:debugContextItems]
	}
	return DebugReport{
		Analysis: a,
		Results:  results,
		Context:  BuildContext(top, ""),
	}
}

// Retrieval is the outcome of one end-to-end retrieval.
type Retrieval struct {
	Analysis       QueryAnalysis            `json:"analysis"`
	Knowledge      []Scored[KnowledgeEntry] `json:"knowledge"`
	Products       []Scored[ProductRecord]  `json:"products"`
	ProductContext string                   `json:"product_context,omitempty"`
	Context        string                   `json:"context"`
}

// RetrieveOptions overrides the engine's result limits for one call.
type RetrieveOptions struct {
	MaxKnowledge int
	MaxProducts  int
}

// Retrieve runs the whole flow: analysis, knowledge ranking, product ranking
// for product-oriented queries, and context assembly. Products are narrowed to
// an extracted price range before scoring.
func (e *Engine) Retrieve(ctx context.Context, query string, products []ProductRecord, opts RetrieveOptions) Retrieval {
	logger := e.loggerFrom(ctx)

	maxKnowledge := opts.MaxKnowledge
	if maxKnowledge <= 0 {
		maxKnowledge = e.maxKnowledge
	}
	maxProducts := opts.MaxProducts
	if maxProducts <= 0 {
		maxProducts = e.maxProducts
	}

	a := e.Analyze(query)
	r := Retrieval{
		Analysis:  a,
		Knowledge: rankKnowledge(e.entries, e.normalized, a, maxKnowledge),
	}

	if a.IsProductQuery || a.Intent != IntentNone {
		pool := products
		if a.PriceRange != nil {
			pool = FilterProducts(products, ProductFilter{MinPrice: a.PriceRange.Min, MaxPrice: a.PriceRange.Max})
		}
		r.Products = rankProducts(pool, a, maxProducts)
		r.ProductContext = BuildProductContext(Items(r.Products), query, a.Intent)
	}
	r.Context = BuildContext(r.Knowledge, r.ProductContext)

	logger.DebugContext(ctx, "retrieval complete",
		"query", query,
		"intent", string(a.Intent),
		"category", a.Category,
		"knowledge_results", len(r.Knowledge),
		"product_candidates", len(products),
		"product_results", len(r.Products),
		"context_length", len(r.Context),
	)
	return r
}

func (e *Engine) loggerFrom(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return e.logger
	}
	if l := contextutil.LoggerFromContext(ctx); l != slog.Default() {
		return l
	}
	return e.logger
}
