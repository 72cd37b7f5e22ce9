// Package extract pulls readable article text and a representative image out
// of raw HTML. Selection follows a fixed cascade so results stay stable for a
// given page rather than depending on heuristics that shift between runs.
package extract

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"clipcast/internal/services"
)

// MinTextLength is the minimum number of characters required for extracted
// text to count as a usable article.
const MinTextLength = 120

// sitewideParagraphLimit bounds the last-resort fallback that collects the
// longest paragraphs from anywhere in the document.
const sitewideParagraphLimit = 10

// Result holds the extracted article content.
type Result struct {
	Text     string
	ImageURL string
}

// FromHTML parses page HTML and extracts article text plus a candidate image.
// baseURL is used to absolutize relative image references.
func FromHTML(html []byte, baseURL string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return Result{}, services.Wrap(services.ErrExtraction, "extract", "parse", "invalid html", err)
	}

	return Result{
		Text:     extractText(doc),
		ImageURL: extractImage(doc, baseURL),
	}, nil
}

// extractText walks the container cascade: paragraphs inside <article>, then
// inside <main>, then the longest paragraphs anywhere in the document.
func extractText(doc *goquery.Document) string {
	if text := paragraphText(doc.Find("article p")); text != "" {
		return text
	}
	if text := paragraphText(doc.Find("main p")); text != "" {
		return text
	}
	return longestParagraphs(doc)
}

func paragraphText(sel *goquery.Selection) string {
	var parts []string
	sel.Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return normalize(strings.Join(parts, "\n\n"))
}

func longestParagraphs(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return ""
	}
	sort.SliceStable(paragraphs, func(i, j int) bool {
		return len(paragraphs[i]) > len(paragraphs[j])
	})
	if len(paragraphs) > sitewideParagraphLimit {
		paragraphs = paragraphs[:sitewideParagraphLimit]
	}
	return normalize(strings.Join(paragraphs, "\n\n"))
}

// extractImage prefers social metadata over inline images: og:image, then
// twitter:image, then the first <img> src or data-src.
func extractImage(doc *goquery.Document, baseURL string) string {
	selectors := []string{
		`meta[property="og:image"]`,
		`meta[name="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="twitter:image"]`,
	}
	for _, selector := range selectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return absolutize(trimmed, baseURL)
			}
		}
	}

	img := doc.Find("img").First()
	for _, attr := range []string{"src", "data-src"} {
		if value, ok := img.Attr(attr); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return absolutize(trimmed, baseURL)
			}
		}
	}
	return ""
}

// absolutize resolves candidate against baseURL. Unparseable inputs are
// returned unchanged rather than discarded.
func absolutize(candidate, baseURL string) string {
	ref, err := url.Parse(candidate)
	if err != nil {
		return candidate
	}
	if ref.IsAbs() {
		return candidate
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return candidate
	}
	return base.ResolveReference(ref).String()
}

func normalize(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
