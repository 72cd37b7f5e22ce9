package extract

import (
	"strings"
	"testing"
)

const base = "https://news.example.com/story/42"

func TestFromHTMLPrefersArticleParagraphs(t *testing.T) {
	html := `<html><body>
		<main><p>Main filler that should be ignored.</p></main>
		<article><p>First article paragraph.</p><p>Second article paragraph.</p></article>
		<p>Stray footer text.</p>
	</body></html>`

	result, err := FromHTML([]byte(html), base)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	want := "First article paragraph.\n\nSecond article paragraph."
	if result.Text != want {
		t.Fatalf("text = %q, want %q", result.Text, want)
	}
}

func TestFromHTMLFallsBackToMain(t *testing.T) {
	html := `<html><body>
		<main><p>Main content paragraph one.</p><p>Main content paragraph two.</p></main>
	</body></html>`

	result, err := FromHTML([]byte(html), base)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if !strings.HasPrefix(result.Text, "Main content paragraph one.") {
		t.Fatalf("unexpected text %q", result.Text)
	}
}

func TestFromHTMLSitewideTakesLongestTen(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	// Twelve paragraphs of increasing length; the two shortest must be dropped.
	for i := 1; i <= 12; i++ {
		sb.WriteString("<p>")
		sb.WriteString(strings.Repeat("x", i*10))
		sb.WriteString("</p>")
	}
	sb.WriteString("</body></html>")

	result, err := FromHTML([]byte(sb.String()), base)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	parts := strings.Split(result.Text, "\n\n")
	if len(parts) != 10 {
		t.Fatalf("expected 10 paragraphs, got %d", len(parts))
	}
	for _, part := range parts {
		if len(part) <= 20 {
			t.Fatalf("shortest paragraphs should have been dropped, found length %d", len(part))
		}
	}
}

func TestFromHTMLImageCascade(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{
			name: "og image wins",
			html: `<head><meta property="og:image" content="https://cdn.example.com/og.jpg">
				<meta name="twitter:image" content="https://cdn.example.com/tw.jpg"></head>
				<body><img src="/inline.png"></body>`,
			want: "https://cdn.example.com/og.jpg",
		},
		{
			name: "twitter image second",
			html: `<head><meta name="twitter:image" content="https://cdn.example.com/tw.jpg"></head>
				<body><img src="/inline.png"></body>`,
			want: "https://cdn.example.com/tw.jpg",
		},
		{
			name: "relative img absolutized",
			html: `<body><img src="/images/photo.png"></body>`,
			want: "https://news.example.com/images/photo.png",
		},
		{
			name: "data-src honored",
			html: `<body><img data-src="lazy.png"></body>`,
			want: "https://news.example.com/story/lazy.png",
		},
		{
			name: "no image",
			html: `<body><p>text only</p></body>`,
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := FromHTML([]byte(tc.html), base)
			if err != nil {
				t.Fatalf("FromHTML: %v", err)
			}
			if result.ImageURL != tc.want {
				t.Fatalf("image = %q, want %q", result.ImageURL, tc.want)
			}
		})
	}
}

func TestFromHTMLEmptyDocument(t *testing.T) {
	result, err := FromHTML([]byte("<html><body></body></html>"), base)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if result.Text != "" || result.ImageURL != "" {
		t.Fatalf("expected empty result, got %+v", result)
	}
}
