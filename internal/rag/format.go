package rag

import (
	"fmt"
	"strconv"
	"strings"
)

// Section headers of the assembled context.
const (
	ProductSectionHeader   = "PRODUKTOVÉ INFORMÁCIE ZO SHOPIFY:"
	KnowledgeSectionHeader = "INFORMÁCIE Z DATABÁZY:"

	noProductsText   = "Žiadne produkty neboli nájdené."
	descriptionLimit = 150

	answerInstructions = "\n\nINŠTRUKCIE: \n" +
		"- Odpovedaj presne podľa týchto informácií\n" +
		"- Pri produktoch vždy uveď cenu a dostupnosť\n" +
		"- Ak produkt nie je skladom, ponúkni alternatívy\n" +
		"- Formátuj odpoveď prehľadne\n" +
		"- Pri odporúčaniach vysvetli prečo produkt odporúčaš"
)

// FormatOptions switches optional lines of a rendered product. The zero value
// renders title, price, availability and product type only.
type FormatOptions struct {
	ShowVendor      bool
	ShowVariants    bool
	ShowURL         bool
	ShowDescription bool
}

// FormatProducts renders products as a numbered Markdown-like list.
func FormatProducts(products []ProductRecord, opts FormatOptions) string {
	if len(products) == 0 {
		return noProductsText
	}

	blocks := make([]string, 0, len(products))
	for i, p := range products {
		var b strings.Builder
		fmt.Fprintf(&b, "**%d. %s**", i+1, p.Title)

		if p.HasDiscount && p.CompareAtPrice > 0 {
			fmt.Fprintf(&b, "\n   Cena: ~~€%s~~ **€%s** (-%d%%)",
				formatNumber(p.CompareAtPrice), formatNumber(p.Price), p.DiscountPercentage)
		} else {
			fmt.Fprintf(&b, "\n   Cena: €%s", formatNumber(p.Price))
		}

		if p.Available {
			b.WriteString("\n   Dostupnosť: ✅ Skladom")
		} else {
			b.WriteString("\n   Dostupnosť: ❌ Nedostupné")
		}

		if p.ProductType != "" {
			b.WriteString("\n   Kategória: " + p.ProductType)
		}
		if opts.ShowVendor && p.Vendor != "" {
			b.WriteString("\n   Značka: " + p.Vendor)
		}
		if opts.ShowVariants && len(p.Variants) > 1 {
			titles := make([]string, 0, len(p.Variants))
			for _, v := range p.Variants {
				if v.Available {
					titles = append(titles, v.Title)
				}
			}
			b.WriteString("\n   Varianty: " + strings.Join(titles, ", "))
		}
		if opts.ShowURL && p.URL != "" {
			b.WriteString("\n   Link: " + p.URL)
		}
		if opts.ShowDescription && p.Description != "" {
			b.WriteString("\n   Popis: " + truncateRunes(p.Description, descriptionLimit))
		}

		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// BuildProductContext frames the products for the detected intent. An empty
// list yields a "nothing found" message naming the query.
func BuildProductContext(products []ProductRecord, query string, intent Intent) string {
	if len(products) == 0 {
		return fmt.Sprintf("Bohužiaľ, pre vyhľadávanie \"%s\" som nenašiel žiadne produkty. "+
			"Skúste prosím iný výraz alebo sa opýtajte konkrétnejšie.", query)
	}

	switch intent {
	case IntentCheckAvailability:
		return "PRODUKTY A ICH DOSTUPNOSŤ:\n\n" + FormatProducts(products, FormatOptions{ShowVariants: true})
	case IntentGetPrice:
		return "CENY PRODUKTOV:\n\n" + FormatProducts(products, FormatOptions{})
	case IntentFindDiscount:
		discounted := FilterProducts(products, ProductFilter{HasDiscount: true})
		if len(discounted) > 0 {
			return "PRODUKTY V AKCII/ZĽAVE:\n\n" + FormatProducts(discounted, FormatOptions{})
		}
		return "Momentálne nemáme aktívne zľavy na hľadané produkty.\n\nDostupné produkty:\n" +
			FormatProducts(products, FormatOptions{})
	case IntentRecommend:
		return "ODPORÚČANÉ PRODUKTY:\n\n" +
			FormatProducts(products, FormatOptions{ShowDescription: true, ShowVendor: true})
	default:
		return "NÁJDENÉ PRODUKTY:\n\n" + FormatProducts(products, FormatOptions{ShowDescription: true})
	}
}

// BuildContext assembles the product block, the scored knowledge block and the
// answer instructions. It returns "" when there is nothing to say, which
// callers must treat as "no retrieved material".
func BuildContext(knowledge []Scored[KnowledgeEntry], productContext string) string {
	var b strings.Builder

	if productContext != "" {
		b.WriteString(ProductSectionHeader + "\n\n" + productContext + "\n\n")
	}

	if len(knowledge) > 0 {
		items := make([]string, 0, len(knowledge))
		for i, k := range knowledge {
			items = append(items, fmt.Sprintf("**%d. %s** (relevancia: %s):\n%s",
				i+1, k.Item.Title, formatNumber(k.Score), k.Item.Content))
		}
		b.WriteString(KnowledgeSectionHeader + "\n\n" + strings.Join(items, "\n\n"))
	}

	if b.Len() == 0 {
		return ""
	}
	return b.String() + answerInstructions
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
