package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"klema-chatbot/internal/catalog"
	"klema-chatbot/internal/config"
	"klema-chatbot/internal/http"
	"klema-chatbot/internal/knowledge"
	"klema-chatbot/internal/llm"
	"klema-chatbot/internal/rag"
	"klema-chatbot/internal/service"
	"klema-chatbot/internal/storage"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := storage.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "driver", cfg.DBDriver)
	chatRepo := storage.NewChatRepo(db)

	// Shopify client backs the catalog proxy and, when selected, the catalog itself
	var shop *catalog.ShopifyClient
	if cfg.ShopifyConfigured() {
		shop, err = catalog.NewShopifyClient(catalog.ShopifyConfig{
			StoreURL:    cfg.ShopifyStoreURL,
			AccessToken: cfg.ShopifyAccessToken,
			APIVersion:  cfg.ShopifyAPIVersion,
		})
		if err != nil {
			log.Fatalf("Failed to create Shopify client: %v", err)
		}
		slog.Info("Shopify client initialized", "store", cfg.ShopifyStoreURL, "api_version", cfg.ShopifyAPIVersion)
	} else {
		slog.Warn("Shopify credentials not configured; catalog proxy disabled")
	}

	source, err := newCatalogSource(cfg, shop)
	if err != nil {
		log.Fatalf("Failed to initialize catalog: %v", err)
	}

	var shared catalog.SharedCache
	if cfg.RedisURL != "" {
		redisCache, err := catalog.NewRedisCache(ctx, cfg.RedisURL, "klema:catalog:")
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() {
			_ = redisCache.Close()
		}()
		shared = redisCache
		slog.Info("Redis catalog cache enabled")
	}
	products := catalog.NewCachedProvider(source, catalog.NewCache(cfg.CatalogCacheSize, cfg.CatalogCacheTTL, shared))
	if file, ok := source.(*catalog.FileProvider); ok {
		// Watcher reloads must also clear the cache tiers
		file.OnReload(func() { products.Invalidate(ctx) })
		if err := file.Watch(ctx); err != nil {
			slog.Warn("Catalog file watch disabled", "path", file.Path(), "error", err)
		}
	}
	slog.Info("Catalog initialized", "source", cfg.CatalogSource, "cache_ttl", cfg.CatalogCacheTTL)

	// Load knowledge base (embedded unless overridden)
	entries, err := loadKnowledge(cfg.KnowledgeBasePath)
	if err != nil {
		log.Fatalf("Failed to load knowledge base: %v", err)
	}

	// Create RAG engine
	ragEngine := rag.NewEngine(entries, rag.Options{
		MaxKnowledge: cfg.MaxKnowledge,
		MaxProducts:  cfg.MaxProducts,
		Logger:       logger,
	})
	slog.Info("RAG engine initialized", "entries", len(entries), "categories", len(ragEngine.Categories()))

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
	if !cfg.LLMConfigured() {
		slog.Warn("LLM_BASE_URL not set; /api/ask will answer 503")
	}

	askService := service.NewAskService(ragEngine, products, llmClient, llm.ChatParams{
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})
	chatLogService := service.NewChatLogService(chatRepo)

	// Create router with dependencies
	deps := &http.Deps{
		AskService:     askService,
		ChatLogService: chatLogService,
		Knowledge:      ragEngine,
		DB:             chatRepo,
		Products:       products,
		Refresher:      products,
		LLMConfigured:  cfg.LLMConfigured(),
	}
	if shop != nil {
		deps.Shop = shop
	}
	router := http.NewRouter(deps)

	// Warm the catalog cache in background after router is ready
	go func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		loaded, err := products.Products(warmCtx)
		if err != nil {
			slog.Warn("Catalog warm-up failed; answers will use the knowledge base only", "error", err)
			return
		}
		slog.Info("Catalog warmed", "products", len(loaded))
	}()

	// Start API server
	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		slog.Info("Shutting down API server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// newCatalogSource returns the uncached product source selected by
// CATALOG_SOURCE.
func newCatalogSource(cfg *config.Config, shop *catalog.ShopifyClient) (catalog.Provider, error) {
	if cfg.CatalogSource == config.CatalogSourceShopify {
		if shop == nil {
			return nil, errors.New("shopify catalog selected without credentials")
		}
		return shop, nil
	}

	return catalog.NewFileProvider(cfg.CatalogFile, slog.Default())
}

func loadKnowledge(path string) ([]rag.KnowledgeEntry, error) {
	if path == "" {
		return knowledge.Default()
	}
	slog.Info("Loading knowledge base override", "path", path)
	return knowledge.Load(path)
}
