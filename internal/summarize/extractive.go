// Package summarize turns article text into a short narration script. A
// hosted language model is used when configured; otherwise a deterministic
// extractive summarizer picks the highest-scoring sentences.
package summarize

import (
	"sort"
	"strings"
)

const (
	// DefaultTargetWords is the word budget for generated summaries.
	DefaultTargetWords = 130

	// positionBonus is the maximum score multiplier boost granted to
	// sentences near the start of the article.
	positionBonus = 0.25

	// fallbackPrefixChars bounds the raw-prefix fallback used when the text
	// contains no sentence boundaries at all.
	fallbackPrefixChars = 1000
)

type scoredSentence struct {
	text  string
	index int
	words int
	score float64
}

// Extractive produces a summary by selecting whole sentences from text until
// the word budget is met. Sentences are scored by length with an early-position
// bonus, then re-ordered to match their original positions so the summary
// reads in document order. The same input always yields the same output.
func Extractive(text string, targetWords int) string {
	if targetWords <= 0 {
		targetWords = DefaultTargetWords
	}
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" {
		return ""
	}

	sentences := splitSentences(collapsed)
	if len(sentences) == 0 {
		// No sentence boundaries: fall back to a verbatim prefix of the
		// original text, whitespace and all.
		return prefix(text, fallbackPrefixChars)
	}

	total := len(sentences)
	scored := make([]scoredSentence, 0, total)
	for i, sentence := range sentences {
		bonus := float64(total-i) / float64(total)
		if bonus < 0 {
			bonus = 0
		}
		scored = append(scored, scoredSentence{
			text:  sentence,
			index: i,
			words: len(strings.Fields(sentence)),
			score: float64(len(sentence)) * (1 + positionBonus*bonus),
		})
	}

	byScore := make([]scoredSentence, len(scored))
	copy(byScore, scored)
	sort.SliceStable(byScore, func(i, j int) bool {
		return byScore[i].score > byScore[j].score
	})

	var selected []scoredSentence
	words := 0
	for _, candidate := range byScore {
		if words+candidate.words <= targetWords || len(selected) == 0 {
			selected = append(selected, candidate)
			words += candidate.words
		}
		if words >= targetWords {
			break
		}
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].index < selected[j].index
	})

	parts := make([]string, 0, len(selected))
	for _, sentence := range selected {
		parts = append(parts, sentence.text)
	}
	return strings.Join(parts, " ")
}

// splitSentences breaks text on terminal punctuation followed by whitespace.
// The punctuation stays attached to its sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '?', '!':
			if i+1 < len(runes) && isSpace(runes[i+1]) {
				if sentence := strings.TrimSpace(string(runes[start : i+1])); sentence != "" {
					sentences = append(sentences, sentence)
				}
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		if hasTerminator(tail) {
			sentences = append(sentences, tail)
		} else if len(sentences) == 0 {
			// No sentence boundaries anywhere; caller falls back to prefix.
			return nil
		} else {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}

func hasTerminator(sentence string) bool {
	return strings.ContainsAny(sentence, ".?!")
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func prefix(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
