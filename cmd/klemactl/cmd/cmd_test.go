package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klema-chatbot/internal/catalog"
	"klema-chatbot/internal/rag"
)

const testProductPage = `<!doctype html>
<html><body>
<h1 class="h3 product-details-product-title">Náušnice Jahôdky</h1>
<money class="bacurr-money">18,90 €</money>
<div class="product-description"><div class="text-link-animated"><p>Letné jahôdky z polyméru.</p></div></div>
<div class="level-indicator-message">Na sklade</div>
</body></html>`

// isolateCLI runs the command from an empty directory with a predictable
// configuration.
func isolateCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_PATH", filepath.Join(dir, "data", "test.db"))
	t.Setenv("CATALOG_SOURCE", "file")
	t.Setenv("CATALOG_FILE", filepath.Join(dir, "data", "products.json"))
	t.Setenv("KNOWLEDGE_BASE_PATH", "")
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(&bytes.Buffer{})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDebugCmd_RequiresQuery(t *testing.T) {
	isolateCLI(t)

	_, err := runCLI(t, "debug")

	require.Error(t, err)
}

func TestDebugCmd_RendersReport(t *testing.T) {
	isolateCLI(t)

	out, err := runCLI(t, "debug", "doprava", "zdarma")

	require.NoError(t, err)
	assert.Contains(t, out, "Analysis")
	assert.Contains(t, out, "doprava zdarma")
	assert.Contains(t, out, "[free-shipping]")
	assert.Contains(t, out, "Context")
	assert.NotContains(t, out, "Products", "products are only ranked with --catalog")
}

func TestDebugCmd_WithCatalog(t *testing.T) {
	dir := isolateCLI(t)
	snapshotPath := filepath.Join(dir, "snapshot.json")
	require.NoError(t, catalog.WriteSnapshot(snapshotPath, catalog.Snapshot{
		Source:    "test",
		FetchedAt: time.Now(),
		Count:     1,
		Products: []rag.ProductRecord{{
			ID:          "nausnice-jahodky",
			Title:       "Náušnice Jahôdky",
			Description: "Letné červené jahôdky",
			Price:       18.9,
			Available:   true,
		}},
	}))

	out, err := runCLI(t, "debug", "--catalog", snapshotPath, "máte náušnice jahôdky")

	require.NoError(t, err)
	assert.Contains(t, out, "Products")
	assert.Contains(t, out, "Náušnice Jahôdky")
	assert.Contains(t, out, "18.90 €")
}

func TestDebugCmd_MissingCatalog(t *testing.T) {
	dir := isolateCLI(t)

	_, err := runCLI(t, "debug", "--catalog", filepath.Join(dir, "missing.json"), "náušnice")

	require.Error(t, err)
}

func TestScrapeCmd(t *testing.T) {
	dir := isolateCLI(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sitemap.xml":
			_, _ = fmt.Fprintf(w, `<urlset><url><loc>http://%s/products/nausnice-jahodky</loc></url></urlset>`, r.Host)
		case "/products/nausnice-jahodky":
			_, _ = fmt.Fprint(w, testProductPage)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	output := filepath.Join(dir, "out", "products.json")
	out, err := runCLI(t, "scrape", "--sitemap", srv.URL+"/sitemap.xml", "--output", output, "--delay", "0s", "--quiet")

	require.NoError(t, err)
	assert.Contains(t, out, "Scraped 1 of 1 pages (0 skipped, 0 failed)")
	assert.Contains(t, out, "Average price: 18.90 €")

	snap, err := catalog.ReadSnapshot(output)
	require.NoError(t, err)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Náušnice Jahôdky", snap.Products[0].Title)
}

func TestScrapeCmd_EmptySitemap(t *testing.T) {
	isolateCLI(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `<urlset></urlset>`)
	}))
	t.Cleanup(srv.Close)

	_, err := runCLI(t, "scrape", "--sitemap", srv.URL, "--quiet")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sitemap contains no products")
}
