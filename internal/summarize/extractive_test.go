package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clipcast/internal/logging"
)

func sentence(word string, count int) string {
	words := make([]string, count)
	for i := range words {
		words[i] = word
	}
	return strings.Join(words, " ") + "."
}

func TestExtractiveIsDeterministic(t *testing.T) {
	text := "The launch vehicle cleared the tower at dawn. Engineers monitored telemetry from the bunker. " +
		"A small anomaly appeared in the second stage. Recovery ships waited downrange. The payload reached orbit."
	first := Extractive(text, 30)
	for i := 0; i < 5; i++ {
		if got := Extractive(text, 30); got != first {
			t.Fatalf("run %d differed: %q vs %q", i, got, first)
		}
	}
	if first == "" {
		t.Fatal("expected non-empty summary")
	}
}

func TestExtractivePreservesDocumentOrder(t *testing.T) {
	text := sentence("alpha", 20) + " " + sentence("beta", 5) + " " + sentence("gamma", 20)
	summary := Extractive(text, 45)

	alphaIdx := strings.Index(summary, "alpha")
	gammaIdx := strings.Index(summary, "gamma")
	if alphaIdx == -1 || gammaIdx == -1 {
		t.Fatalf("expected both long sentences selected: %q", summary)
	}
	if alphaIdx > gammaIdx {
		t.Fatalf("summary out of document order: %q", summary)
	}
}

func TestExtractiveRespectsWordBudget(t *testing.T) {
	var sentences []string
	for i := 0; i < 20; i++ {
		sentences = append(sentences, sentence("word", 10))
	}
	summary := Extractive(strings.Join(sentences, " "), 35)
	if got := len(strings.Fields(summary)); got > 35 {
		t.Fatalf("summary has %d words, budget 35", got)
	}
}

func TestExtractiveAlwaysSelectsAtLeastOneSentence(t *testing.T) {
	text := sentence("overflow", 50)
	summary := Extractive(text, 10)
	if summary == "" {
		t.Fatal("expected oversized sentence to be selected anyway")
	}
	if got := len(strings.Fields(summary)); got != 50 {
		t.Fatalf("expected whole sentence, got %d words", got)
	}
}

func TestExtractivePositionBonusBreaksTies(t *testing.T) {
	// Two sentences of identical length; only one fits the budget. The
	// earlier one scores higher and must win.
	text := sentence("early", 12) + " " + sentence("later", 12)
	summary := Extractive(text, 12)
	if !strings.Contains(summary, "early") || strings.Contains(summary, "later") {
		t.Fatalf("expected the earlier sentence, got %q", summary)
	}
}

func TestExtractiveNoSentenceBoundaries(t *testing.T) {
	text := strings.Repeat("streamofwords ", 200)
	summary := Extractive(text, 50)
	if len([]rune(summary)) != 1000 {
		t.Fatalf("expected 1000-char prefix, got %d chars", len([]rune(summary)))
	}
	if !strings.HasPrefix(text, summary) {
		t.Fatal("prefix fallback should return the leading characters")
	}
}

func TestExtractiveNoBoundaryFallbackIsVerbatim(t *testing.T) {
	// Internal whitespace survives: the fallback slices the original text,
	// not the collapsed form used for sentence scoring.
	text := strings.Repeat("alpha\n\nbeta\tgamma ", 120)
	summary := Extractive(text, 50)
	if want := string([]rune(text)[:1000]); summary != want {
		t.Fatalf("fallback not verbatim:\ngot  %q\nwant %q", summary[:40], want[:40])
	}
}

func TestExtractiveShortTextWithoutBoundaryReturnsWholeText(t *testing.T) {
	text := "just a handful of words with no terminator"
	if got := Extractive(text, 50); got != text {
		t.Fatalf("got %q, want input unchanged", got)
	}
}

func TestExtractiveEmptyInput(t *testing.T) {
	if got := Extractive("   \n\t  ", 50); got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}
}

type stubScriptClient struct {
	script string
	err    error
}

func (s stubScriptClient) Summarize(context.Context, string) (string, error) {
	return s.script, s.err
}

func TestSummarizerPrefersLanguageModel(t *testing.T) {
	s := New(stubScriptClient{script: "A tidy model summary."}, 130, logging.NewNop())
	summary, usedModel := s.Summarize(context.Background(), "Some long article. With sentences.")
	if !usedModel {
		t.Fatal("expected model path")
	}
	if summary != "A tidy model summary." {
		t.Fatalf("summary = %q", summary)
	}
}

func TestSummarizerFallsBackOnModelError(t *testing.T) {
	s := New(stubScriptClient{err: errors.New("quota exceeded")}, 130, logging.NewNop())
	summary, usedModel := s.Summarize(context.Background(), "First sentence here. Second sentence there.")
	if usedModel {
		t.Fatal("expected extractive fallback")
	}
	if summary == "" {
		t.Fatal("expected non-empty extractive summary")
	}
}

func TestSummarizerFallsBackOnEmptyModelOutput(t *testing.T) {
	s := New(stubScriptClient{script: "   "}, 130, logging.NewNop())
	_, usedModel := s.Summarize(context.Background(), "First sentence here. Second sentence there.")
	if usedModel {
		t.Fatal("blank model output should not count as a model summary")
	}
}

func TestSummarizerWithoutClient(t *testing.T) {
	s := New(nil, 130, logging.NewNop())
	summary, usedModel := s.Summarize(context.Background(), "Only sentence in the article.")
	if usedModel || summary == "" {
		t.Fatalf("usedModel=%v summary=%q", usedModel, summary)
	}
}
