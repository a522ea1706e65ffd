package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"klema-chatbot/internal/scraper"
)

func newScrapeCmd(state *cliState) *cobra.Command {
	var (
		sitemapURL string
		output     string
		delay      time.Duration
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Rebuild the catalog snapshot from the shop sitemap",
		Long: `Fetches the product sitemap, scrapes every product page and writes the
catalog snapshot the API server reads when CATALOG_SOURCE=file.

Pages that fail or have no product title are logged and skipped. The
snapshot is replaced atomically while holding a file lock, and a running
API server picks it up without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("sitemap") {
				sitemapURL = state.cfg.SitemapURL
			}
			if !cmd.Flags().Changed("output") {
				output = state.cfg.CatalogFile
			}
			if !cmd.Flags().Changed("delay") {
				delay = state.cfg.ScrapeDelay
			}

			cfg := scraper.Config{SitemapURL: sitemapURL, Delay: delay}
			if delay == 0 {
				cfg.Delay = -1
			}
			if !quiet {
				cfg.Progress = cmd.ErrOrStderr()
			}

			s, err := scraper.New(cfg, state.logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			result, err := s.Run(ctx)
			if err != nil {
				return fmt.Errorf("scrape failed: %w", err)
			}
			if err := scraper.WriteSnapshot(ctx, output, result.Snapshot); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Scraped %d of %d pages (%d skipped, %d failed)\n",
				result.Scraped, result.TotalURLs, result.Skipped, result.Failed)
			_, _ = fmt.Fprintf(out, "Average price: %.2f €\n", result.AveragePrice)
			_, _ = fmt.Fprintf(out, "Snapshot written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&sitemapURL, "sitemap", "", "Product sitemap URL (default $SITEMAP_URL)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Snapshot path (default $CATALOG_FILE)")
	cmd.Flags().DurationVar(&delay, "delay", scraper.DefaultDelay, "Pause between page requests (default $SCRAPE_DELAY)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")

	return cmd
}
