// Package imageres decides which image backs the video thumbnail: the image
// scraped from the article when present, otherwise a keyword-driven stock
// photo URL derived from the summary.
package imageres

import (
	"net/url"
	"strings"
)

const (
	stockEndpoint = "https://source.unsplash.com/1280x720/?"

	// fallbackKeywordCount bounds how many summary words seed the stock
	// photo query.
	fallbackKeywordCount = 6
)

// Resolve returns the thumbnail image URL for a narration. scrapedURL wins
// when non-empty; otherwise the first summary words become a stock photo
// query. An empty summary yields an empty URL and assembly falls back to the
// bundled default thumbnail.
func Resolve(scrapedURL, summary string) string {
	if trimmed := strings.TrimSpace(scrapedURL); trimmed != "" {
		return trimmed
	}
	keywords := Keywords(summary)
	if len(keywords) == 0 {
		return ""
	}
	return stockEndpoint + url.QueryEscape(strings.Join(keywords, ","))
}

// Keywords extracts the leading summary words used for stock photo queries.
// Punctuation is stripped so terms like "rocket," query cleanly.
func Keywords(summary string) []string {
	fields := strings.Fields(summary)
	keywords := make([]string, 0, fallbackKeywordCount)
	for _, field := range fields {
		cleaned := strings.Trim(field, `.,;:!?"'()[]`)
		if cleaned == "" {
			continue
		}
		keywords = append(keywords, strings.ToLower(cleaned))
		if len(keywords) == fallbackKeywordCount {
			break
		}
	}
	return keywords
}
