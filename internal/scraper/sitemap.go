package scraper

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// SitemapURL is one <url> entry of a sitemap.
type SitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type urlset struct {
	URLs []SitemapURL `xml:"url"`
}

// ParseSitemap reads a sitemap urlset document. Entries without a location
// are dropped.
func ParseSitemap(r io.Reader) ([]SitemapURL, error) {
	var set urlset
	if err := xml.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}

	urls := make([]SitemapURL, 0, len(set.URLs))
	for _, u := range set.URLs {
		u.Loc = strings.TrimSpace(u.Loc)
		u.LastMod = strings.TrimSpace(u.LastMod)
		if u.Loc == "" {
			continue
		}
		urls = append(urls, u)
	}
	return urls, nil
}
