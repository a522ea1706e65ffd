package scraper

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"

	"klema-chatbot/internal/rag"
)

const (
	maxInfoTexts          = 3
	maxKeywords           = 20
	descriptionKeywordCap = 10
	colorOptionName       = "Farba"
	currency              = "EUR"
)

// shopKeywords are attached to every scraped product.
var shopKeywords = []string{"nausnice", "earrings", "sperk", "handmade", "klema"}

// soldOutMarkers mark an availability message as out of stock.
var soldOutMarkers = []string{"vypredan", "nedostupn", "sold out"}

var (
	priceChars  = regexp.MustCompile(`[^\d.,]`)
	pricePrefix = regexp.MustCompile(`^\d*\.?\d*`)
)

// ParseProductPage extracts a product from a shop product page. It reports
// false when the page has no product title.
func ParseProductPage(entry SitemapURL, body io.Reader, now time.Time) (rag.ProductRecord, bool, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return rag.ProductRecord{}, false, fmt.Errorf("failed to parse page %s: %w", entry.Loc, err)
	}

	title := extractTitle(doc)
	if title == "" {
		return rag.ProductRecord{}, false, nil
	}

	handle := productHandle(entry.Loc)
	if handle == "" {
		handle = fmt.Sprintf("product-%d", now.UnixMilli())
	}

	p := rag.ProductRecord{
		ID:               handle,
		Handle:           handle,
		Title:            title,
		URL:              entry.Loc,
		Price:            extractPrice(doc),
		Currency:         currency,
		Image:            extractImage(doc),
		Description:      extractDescription(doc),
		AvailabilityText: textOf(first(doc, hasClass("level-indicator-message"))),
		Colors:           extractColors(doc),
		InfoTexts:        extractInfoTexts(doc),
		UpdatedAt:        lastModified(entry.LastMod, now),
	}
	p.Available = !soldOut(p.AvailabilityText)
	p.Tags = generateKeywords(p.Title, p.Description)
	p.ApplyPricing()
	return p, true, nil
}

func extractTitle(doc *html.Node) string {
	if el := first(doc, element("h1", "h3", "product-details-product-title")); el != nil {
		if title := strings.TrimSpace(ownText(el)); title != "" {
			return title
		}
		if title := collapseRepeat(strings.TrimSpace(textOf(el))); title != "" {
			return title
		}
	}
	return textOf(first(doc, element("h1", "product-details-product-title")))
}

// collapseRepeat returns the first half of s when s is that half written twice.
func collapseRepeat(s string) string {
	if utf8.RuneCountInString(s) <= 10 {
		return s
	}
	runes := []rune(s)
	if len(runes)%2 != 0 {
		return s
	}
	half := len(runes) / 2
	if string(runes[:half]) == string(runes[half:]) {
		return string(runes[:half])
	}
	return s
}

func extractPrice(doc *html.Node) float64 {
	text := textOf(first(doc, element("money", "bacurr-money")))
	if text == "" {
		text = textOf(first(doc, hasClass("money")))
	}
	return parsePrice(text)
}

// parsePrice reads the leading amount of a price label such as "18,90 €".
func parsePrice(text string) float64 {
	cleaned := strings.Replace(priceChars.ReplaceAllString(text, ""), ",", ".", 1)
	v, err := strconv.ParseFloat(pricePrefix.FindString(cleaned), 64)
	if err != nil {
		return 0
	}
	return v
}

func extractImage(doc *html.Node) string {
	el := first(doc, element("img", "theme-img", "media-ratio--square"))
	src := attr(el, "src")
	if src == "" {
		return ""
	}
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	if i := strings.IndexByte(src, '?'); i >= 0 {
		src = src[:i]
	}
	return src
}

func extractDescription(doc *html.Node) string {
	for _, container := range all(doc, hasClass("product-description")) {
		if el := first(container, hasClass("text-link-animated")); el != nil {
			if d := paragraphs(el); d != "" {
				return d
			}
			break
		}
	}
	return paragraphs(first(doc, hasClass("product-description")))
}

func paragraphs(el *html.Node) string {
	if el == nil {
		return ""
	}
	var parts []string
	for _, p := range all(el, element("p")) {
		if text := textOf(p); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func extractInfoTexts(doc *html.Node) []string {
	var texts []string
	for i, el := range all(doc, element("span", "text-with-icon--text")) {
		if i >= maxInfoTexts {
			break
		}
		if text := textOf(el); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

func extractColors(doc *html.Node) []string {
	var colors []string
	seen := map[string]bool{}
	for _, el := range all(doc, element("li")) {
		if attr(el, "data-option-name") != colorOptionName {
			continue
		}
		color := attr(el, "data-option-value")
		if color == "" || seen[color] {
			continue
		}
		seen[color] = true
		colors = append(colors, color)
	}
	return colors
}

func productHandle(pageURL string) string {
	_, rest, ok := strings.Cut(pageURL, "/products/")
	if !ok {
		return ""
	}
	handle, _, _ := strings.Cut(rest, "?")
	return strings.Trim(handle, "/")
}

func lastModified(lastmod string, now time.Time) time.Time {
	if lastmod != "" {
		if t, err := time.Parse(time.RFC3339, lastmod); err == nil {
			return t
		}
		if t, err := time.Parse(time.DateOnly, lastmod); err == nil {
			return t
		}
	}
	return now
}

func soldOut(availability string) bool {
	n := rag.Normalize(availability)
	for _, m := range soldOutMarkers {
		if strings.Contains(n, m) {
			return true
		}
	}
	return false
}

// generateKeywords collects title words longer than two letters, words longer
// than three letters from the start of the description and the shop keywords.
func generateKeywords(title, description string) []string {
	var keywords []string
	seen := map[string]bool{}
	add := func(w string) {
		if !seen[w] {
			seen[w] = true
			keywords = append(keywords, w)
		}
	}

	for _, w := range strings.Fields(strings.ToLower(title)) {
		if utf8.RuneCountInString(w) > 2 {
			add(w)
		}
	}
	words := strings.Fields(strings.ToLower(description))
	if len(words) > descriptionKeywordCap {
		words = words[:descriptionKeywordCap]
	}
	for _, w := range words {
		if utf8.RuneCountInString(w) > 3 {
			add(w)
		}
	}
	for _, w := range shopKeywords {
		add(w)
	}

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

// element matches nodes with the given tag name carrying all the given
// classes. Custom elements such as <money> have no atom, so names are compared.
func element(tag string, classes ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Data == tag && hasClasses(n, classes)
	}
}

func hasClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return hasClasses(n, []string{class})
	}
}

func hasClasses(n *html.Node, classes []string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	have := strings.Fields(attr(n, "class"))
	for _, want := range classes {
		found := false
		for _, c := range have {
			if c == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// first returns the first descendant of root, in document order, that matches.
func first(root *html.Node, match func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := first(c, match); found != nil {
			return found
		}
	}
	return nil
}

func all(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && match(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textOf returns the trimmed text content of n and its descendants.
func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// ownText returns only the text nodes that are direct children of n.
func ownText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
