package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog sources.
const (
	CatalogSourceFile    = "file"
	CatalogSourceShopify = "shopify"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort   string
	LogLevel  slog.Level
	LogFormat string

	DBDriver    string
	DBPath      string
	DatabaseURL string

	CatalogSource    string
	CatalogFile      string
	CatalogCacheTTL  time.Duration
	CatalogCacheSize int
	RedisURL         string

	ShopifyStoreURL    string
	ShopifyAccessToken string
	ShopifyAPIVersion  string

	LLMBaseURL     string
	LLMModelName   string
	LLMAPIKey      string
	LLMMaxTokens   int
	LLMTemperature float32

	KnowledgeBasePath string
	MaxKnowledge      int
	MaxProducts       int

	SitemapURL  string
	ScrapeDelay time.Duration
}

// ShopifyConfigured reports whether Shopify credentials are present.
func (c *Config) ShopifyConfigured() bool {
	return c.ShopifyStoreURL != "" && c.ShopifyAccessToken != ""
}

// LLMConfigured reports whether an answer generator is reachable.
func (c *Config) LLMConfigured() bool {
	return c.LLMBaseURL != ""
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	// Walk up to find a project-level .env
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		DBDriver:           getEnv("DB_DRIVER", "sqlite3"),
		DBPath:             getEnv("DB_PATH", "./data/klema-chatbot.db"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CatalogSource:      strings.ToLower(getEnv("CATALOG_SOURCE", CatalogSourceFile)),
		CatalogFile:        getEnv("CATALOG_FILE", "./data/products.json"),
		RedisURL:           getEnv("REDIS_URL", ""),
		ShopifyStoreURL:    getEnv("SHOPIFY_STORE_URL", ""),
		ShopifyAccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyAPIVersion:  getEnv("SHOPIFY_API_VERSION", "2024-01"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
		LLMModelName:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		KnowledgeBasePath:  getEnv("KNOWLEDGE_BASE_PATH", ""),
		SitemapURL:         getEnv("SITEMAP_URL", "https://klemaearrings.sk/sitemap_products_1.xml"),
	}

	if cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}

	if cfg.CatalogCacheTTL, err = getDuration("CATALOG_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ScrapeDelay, err = getDuration("SCRAPE_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.CatalogCacheSize, err = getInt("CATALOG_CACHE_SIZE", 16); err != nil {
		return nil, err
	}
	if cfg.LLMMaxTokens, err = getInt("LLM_MAX_TOKENS", 1000); err != nil {
		return nil, err
	}
	if cfg.MaxKnowledge, err = getInt("RAG_MAX_KNOWLEDGE", 3); err != nil {
		return nil, err
	}
	if cfg.MaxProducts, err = getInt("RAG_MAX_PRODUCTS", 5); err != nil {
		return nil, err
	}

	temperature, err := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.7"), 32)
	if err != nil {
		return nil, fmt.Errorf("LLM_TEMPERATURE must be a number: %w", err)
	}
	cfg.LLMTemperature = float32(temperature)

	switch cfg.DBDriver {
	case "sqlite3":
		// Create ./data directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_DRIVER is postgres")
		}
	default:
		return nil, fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", cfg.DBDriver)
	}

	switch cfg.CatalogSource {
	case CatalogSourceFile:
	case CatalogSourceShopify:
		if !cfg.ShopifyConfigured() {
			return nil, fmt.Errorf("SHOPIFY_STORE_URL and SHOPIFY_ACCESS_TOKEN are required when CATALOG_SOURCE is shopify")
		}
	default:
		return nil, fmt.Errorf("CATALOG_SOURCE must be file or shopify, got %q", cfg.CatalogSource)
	}

	return cfg, nil
}

// DSN returns the data source for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 5m or 500ms: %w", key, err)
	}
	return d, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %w", err)
	}
	return level, nil
}
