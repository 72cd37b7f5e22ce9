package imageres

import (
	"strings"
	"testing"
)

func TestResolvePrefersScrapedImage(t *testing.T) {
	got := Resolve("https://cdn.example.com/hero.jpg", "A summary about rockets")
	if got != "https://cdn.example.com/hero.jpg" {
		t.Fatalf("Resolve = %q", got)
	}
}

func TestResolveBuildsStockQueryFromSummary(t *testing.T) {
	got := Resolve("", "The private rocket company launched, its biggest booster yet today.")
	if !strings.HasPrefix(got, "https://source.unsplash.com/1280x720/?") {
		t.Fatalf("Resolve = %q", got)
	}
	if !strings.Contains(got, "the%2Cprivate%2Crocket%2Ccompany%2Claunched%2Cits") {
		t.Fatalf("unexpected keyword query in %q", got)
	}
}

func TestResolveEmptySummary(t *testing.T) {
	if got := Resolve("", "   "); got != "" {
		t.Fatalf("Resolve = %q, want empty", got)
	}
}

func TestKeywordsStripPunctuationAndLimit(t *testing.T) {
	keywords := Keywords(`"Hello," she said. One two three four five six seven`)
	if len(keywords) != 6 {
		t.Fatalf("got %d keywords: %v", len(keywords), keywords)
	}
	if keywords[0] != "hello" || keywords[1] != "she" {
		t.Fatalf("unexpected keywords: %v", keywords)
	}
}
