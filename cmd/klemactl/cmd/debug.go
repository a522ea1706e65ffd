package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"klema-chatbot/internal/catalog"
	"klema-chatbot/internal/knowledge"
	"klema-chatbot/internal/rag"
)

// Color palette for the debug report.
const (
	colorAccent = "168"
	colorWhite  = "255"
	colorGray   = "245"
	colorBorder = "238"
)

type debugStyles struct {
	Header lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Score  lipgloss.Style
	Dim    lipgloss.Style
	Panel  lipgloss.Style
}

func newDebugStyles() debugStyles {
	return debugStyles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)).Width(16),
		Value:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorWhite)),
		Score:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Dim:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)).Italic(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1),
	}
}

func newDebugCmd(state *cliState) *cobra.Command {
	var (
		snapshotPath  string
		knowledgePath string
	)

	cmd := &cobra.Command{
		Use:   "debug <query>",
		Short: "Explain how a query is analysed and ranked",
		Long: `Prints the query analysis, the top five knowledge entries with their
scores and the context built from the best two.

With --catalog the products of a snapshot file are ranked as well.`,
		Example: `  klemactl debug "koľko stojí doprava na Slovensko"
  klemactl debug --catalog data/products.json "červené náušnice do 20 €"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("knowledge") {
				knowledgePath = state.cfg.KnowledgeBasePath
			}
			entries, err := loadKnowledgeBase(knowledgePath)
			if err != nil {
				return err
			}

			var products []rag.ProductRecord
			if snapshotPath != "" {
				snap, err := catalog.ReadSnapshot(snapshotPath)
				if err != nil {
					return err
				}
				products = snap.Products
			}

			engine := rag.NewEngine(entries, rag.Options{
				MaxKnowledge: state.cfg.MaxKnowledge,
				MaxProducts:  state.cfg.MaxProducts,
				Logger:       state.logger,
			})
			query := strings.Join(args, " ")
			report := engine.Debug(query)

			withCatalog := snapshotPath != ""
			var ranked []rag.Scored[rag.ProductRecord]
			if withCatalog {
				ranked = engine.Retrieve(cmd.Context(), query, products, rag.RetrieveOptions{}).Products
			}

			renderDebugReport(cmd.OutOrStdout(), newDebugStyles(), report, ranked, withCatalog)
			return nil
		},
	}

	cmd.Flags().StringVarP(&snapshotPath, "catalog", "c", "", "Catalog snapshot file to rank products from")
	cmd.Flags().StringVarP(&knowledgePath, "knowledge", "k", "", "Knowledge base YAML (default embedded or $KNOWLEDGE_BASE_PATH)")

	return cmd
}

func loadKnowledgeBase(path string) ([]rag.KnowledgeEntry, error) {
	if path == "" {
		return knowledge.Default()
	}
	return knowledge.Load(path)
}

func renderDebugReport(w io.Writer, s debugStyles, report rag.DebugReport, products []rag.Scored[rag.ProductRecord], withCatalog bool) {
	a := report.Analysis
	row := func(label, value string) string {
		if value == "" {
			value = s.Dim.Render("none")
		} else {
			value = s.Value.Render(value)
		}
		return s.Label.Render(label) + value
	}

	priceRange := ""
	if a.PriceRange != nil {
		priceRange = formatBound(a.PriceRange.Min) + " - " + formatBound(a.PriceRange.Max) + " €"
	}
	analysis := strings.Join([]string{
		row("Query", a.Query),
		row("Normalized", a.Normalized),
		row("Keywords", strings.Join(a.Keywords, ", ")),
		row("Bigrams", strings.Join(a.Bigrams, ", ")),
		row("Expanded", strings.Join(a.Expanded, ", ")),
		row("Intent", string(a.Intent)),
		row("Category", a.Category),
		row("Product query", strconv.FormatBool(a.IsProductQuery)),
		row("Price range", priceRange),
		row("Size", a.Size),
		row("Color", a.Color),
	}, "\n")

	_, _ = fmt.Fprintln(w, s.Header.Render("Analysis"))
	_, _ = fmt.Fprintln(w, s.Panel.Render(analysis))

	_, _ = fmt.Fprintln(w, s.Header.Render("Knowledge"))
	if len(report.Results) == 0 {
		_, _ = fmt.Fprintln(w, s.Dim.Render("  no matching entries"))
	}
	for i, r := range report.Results {
		_, _ = fmt.Fprintf(w, "  %d. %s %s %s\n", i+1,
			s.Score.Render(formatScore(r.Score)),
			s.Value.Render(r.Item.Title),
			s.Dim.Render("["+r.Item.ID+"]"))
	}

	if withCatalog {
		_, _ = fmt.Fprintln(w, s.Header.Render("Products"))
		if len(products) == 0 {
			_, _ = fmt.Fprintln(w, s.Dim.Render("  no matching products"))
		}
		for i, p := range products {
			_, _ = fmt.Fprintf(w, "  %d. %s %s %s\n", i+1,
				s.Score.Render(formatScore(p.Score)),
				s.Value.Render(p.Item.Title),
				s.Dim.Render(fmt.Sprintf("%.2f €", p.Item.Price)))
		}
	}

	_, _ = fmt.Fprintln(w, s.Header.Render("Context"))
	if report.Context == "" {
		_, _ = fmt.Fprintln(w, s.Dim.Render("  empty"))
		return
	}
	_, _ = fmt.Fprintln(w, s.Panel.Render(report.Context))
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBound(v *float64) string {
	if v == nil {
		return "*"
	}
	return formatScore(*v)
}
