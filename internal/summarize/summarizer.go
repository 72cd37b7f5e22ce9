package summarize

import (
	"context"
	"log/slog"
	"strings"

	"clipcast/internal/logging"
)

// ScriptClient generates a narration script from article text. Implemented by
// the openai service client.
type ScriptClient interface {
	Summarize(ctx context.Context, articleText string) (string, error)
}

// Summarizer prefers the configured language model and falls back to the
// deterministic extractive summarizer on any failure.
type Summarizer struct {
	client      ScriptClient
	targetWords int
	logger      *slog.Logger
}

// New builds a Summarizer. client may be nil to force extractive summaries.
func New(client ScriptClient, targetWords int, logger *slog.Logger) *Summarizer {
	if targetWords <= 0 {
		targetWords = DefaultTargetWords
	}
	return &Summarizer{
		client:      client,
		targetWords: targetWords,
		logger:      logging.NewComponentLogger(logger, "summarize"),
	}
}

// Summarize returns the narration script and whether the language model
// produced it. A model failure is never fatal: the extractive path always
// yields a result.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, bool) {
	if s.client != nil {
		script, err := s.client.Summarize(ctx, text)
		if err != nil {
			s.logger.Warn("language model summary failed, using extractive fallback",
				logging.Args(logging.Error(err))...)
		} else if strings.TrimSpace(script) != "" {
			return strings.TrimSpace(script), true
		}
	}
	return Extractive(text, s.targetWords), false
}
