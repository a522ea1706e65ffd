// Package scraper implements the catalog refresh job: it reads the shop's
// product sitemap, scrapes every product page and writes a catalog snapshot.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/schollz/progressbar/v3"

	"klema-chatbot/internal/catalog"
	"klema-chatbot/internal/rag"
)

const (
	// DefaultDelay is the pause between two page requests.
	DefaultDelay = 500 * time.Millisecond

	lockRetryDelay = 100 * time.Millisecond
	userAgent      = "klema-chatbot-scraper/1.0"
)

// ErrEmptySitemap is returned when the sitemap lists no URLs.
var ErrEmptySitemap = errors.New("sitemap contains no products")

// Config configures a Scraper. A zero Delay uses DefaultDelay and a negative
// one disables the pause. A nil Progress writer disables the progress bar.
type Config struct {
	SitemapURL string
	Delay      time.Duration
	HTTPClient *http.Client
	Progress   io.Writer
}

// Scraper runs the refresh job.
type Scraper struct {
	sitemapURL string
	delay      time.Duration
	client     *http.Client
	progress   io.Writer
	logger     *slog.Logger
	now        func() time.Time
}

// Result summarizes a run.
type Result struct {
	Snapshot     catalog.Snapshot
	TotalURLs    int
	Scraped      int
	Skipped      int
	Failed       int
	AveragePrice float64
}

// New creates a Scraper.
func New(cfg Config, logger *slog.Logger) (*Scraper, error) {
	if cfg.SitemapURL == "" {
		return nil, fmt.Errorf("sitemap URL is required")
	}
	delay := cfg.Delay
	if delay == 0 {
		delay = DefaultDelay
	}
	if delay < 0 {
		delay = 0
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		sitemapURL: cfg.SitemapURL,
		delay:      delay,
		client:     client,
		progress:   cfg.Progress,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Run scrapes every product listed in the sitemap. Failures of individual
// pages are logged and skipped; an unreadable or empty sitemap fails the run.
func (s *Scraper) Run(ctx context.Context) (Result, error) {
	s.logger.InfoContext(ctx, "loading sitemap", "url", s.sitemapURL)
	body, err := s.get(ctx, s.sitemapURL)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	urls, err := ParseSitemap(body)
	_ = body.Close()
	if err != nil {
		return Result{}, err
	}
	if len(urls) == 0 {
		return Result{}, ErrEmptySitemap
	}

	s.logger.InfoContext(ctx, "starting scrape", "total_urls", len(urls))
	bar := s.newProgressBar(len(urls))

	result := Result{TotalURLs: len(urls)}
	products := make([]rag.ProductRecord, 0, len(urls))
	for i, entry := range urls {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		p, ok, err := s.scrapePage(ctx, entry)
		switch {
		case err != nil:
			result.Failed++
			s.logger.ErrorContext(ctx, "failed to scrape page", "url", entry.Loc, "error", err)
		case !ok:
			result.Skipped++
			s.logger.DebugContext(ctx, "skipping page without product title", "url", entry.Loc)
		default:
			result.Scraped++
			products = append(products, p)
			s.logger.DebugContext(ctx, "scraped product", "title", p.Title, "price", p.Price)
		}
		if bar != nil {
			_ = bar.Add(1)
		}

		if i < len(urls)-1 && s.delay > 0 {
			if err := sleep(ctx, s.delay); err != nil {
				return Result{}, err
			}
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	result.AveragePrice = averagePrice(products)
	result.Snapshot = catalog.Snapshot{
		Source:    s.sitemapURL,
		FetchedAt: s.now().UTC(),
		Count:     len(products),
		Products:  products,
	}

	s.logger.InfoContext(ctx, "scrape completed",
		"total_urls", result.TotalURLs,
		"scraped", result.Scraped,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"average_price", result.AveragePrice)
	return result, nil
}

func (s *Scraper) scrapePage(ctx context.Context, entry SitemapURL) (rag.ProductRecord, bool, error) {
	body, err := s.get(ctx, entry.Loc)
	if err != nil {
		return rag.ProductRecord{}, false, err
	}
	defer func() {
		_ = body.Close()
	}()
	return ParseProductPage(entry, body, s.now())
}

func (s *Scraper) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (s *Scraper) newProgressBar(total int) *progressbar.ProgressBar {
	if s.progress == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionSetDescription("scraping products"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionShowIts(),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(s.progress)
		}),
	)
}

// WriteSnapshot writes snap to path while holding an exclusive lock on
// path+".lock", so concurrent refresh jobs cannot interleave.
func WriteSnapshot(ctx context.Context, path string, snap catalog.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire snapshot lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("snapshot lock %s is held by another process", lock.Path())
	}
	defer func() {
		_ = lock.Unlock()
	}()

	return catalog.WriteSnapshot(path, snap)
}

func averagePrice(products []rag.ProductRecord) float64 {
	if len(products) == 0 {
		return 0
	}
	var sum float64
	for _, p := range products {
		sum += p.Price
	}
	return math.Round(sum/float64(len(products))*100) / 100
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
