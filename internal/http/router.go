package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"klema-chatbot/internal/catalog"
	"klema-chatbot/internal/handlers"
	"klema-chatbot/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	AskService     service.AskService
	ChatLogService service.ChatLogService
	Knowledge      handlers.KnowledgeBase
	DB             handlers.Pinger
	Shop           handlers.ShopCatalog      // nil when Shopify credentials are missing
	Products       catalog.Provider          // nil when no catalog is configured
	Refresher      handlers.CatalogRefresher // nil disables POST /api/catalog/refresh
	LLMConfigured  bool
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.AskService)
	searchHandler := handlers.NewSearchHandler(deps.AskService)
	previewHandler := handlers.NewContextPreviewHandler(deps.AskService)
	saveChatHandler := handlers.NewSaveChatHandler(deps.ChatLogService)
	shopifyHandler := handlers.NewShopifyHandler(deps.Shop)
	knowledgeHandler := handlers.NewKnowledgeHandler(deps.Knowledge)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Products, deps.LLMConfigured)

	r.Route("/api", func(r chi.Router) {
		r.Handle("/ask", askHandler)
		r.Handle("/search", searchHandler)
		r.Handle("/saveChat", saveChatHandler)
		r.Handle("/shopify", shopifyHandler)
		r.Handle("/context/preview", previewHandler)
		r.Handle("/health", healthHandler)

		r.Route("/knowledge", func(r chi.Router) {
			r.Get("/", knowledgeHandler.List)
			r.Get("/categories", knowledgeHandler.Categories)
			r.Get("/categories/{category}/context", knowledgeHandler.CategoryContext)
			r.Get("/{id}", knowledgeHandler.Get)
		})

		if deps.Refresher != nil {
			r.Handle("/catalog/refresh", handlers.NewRefreshHandler(deps.Refresher))
		}
	})

	return r
}
