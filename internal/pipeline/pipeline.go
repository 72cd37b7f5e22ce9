// Package pipeline runs the content and narration flow: fetch a page,
// extract article text and imagery, summarize it into a narration script,
// synthesize speech, and hand the result over as a narration payload.
package pipeline

import (
	"context"
	"log/slog"
	"math"
	"net/url"
	"strings"

	"clipcast/internal/cache"
	"clipcast/internal/config"
	"clipcast/internal/extract"
	"clipcast/internal/fetch"
	"clipcast/internal/imageres"
	"clipcast/internal/logging"
	"clipcast/internal/narration"
	"clipcast/internal/services"
	"clipcast/internal/services/elevenlabs"
	"clipcast/internal/services/openai"
	"clipcast/internal/summarize"
)

// SpeechClient synthesizes narration audio from a script. The returned
// string names the audio format (mp3 or wav).
type SpeechClient interface {
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
}

// Pipeline orchestrates the article-to-narration flow. The speech client and
// cache are optional; without speech the payload is marked as a text-to-speech
// fallback, without a cache every request fetches fresh.
type Pipeline struct {
	fetcher    *fetch.Client
	summarizer *summarize.Summarizer
	speech     SpeechClient
	store      *cache.Store
	cfg        *config.Config
	logger     *slog.Logger
}

// New wires a pipeline from configuration. The language model and speech
// clients are only constructed when their API keys are configured.
func New(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	var script summarize.ScriptClient
	if cfg.Summarizer.APIKey != "" {
		client, err := openai.NewClient(cfg.Summarizer.APIKey,
			openai.WithBaseURL(cfg.Summarizer.BaseURL),
			openai.WithModel(cfg.Summarizer.Model),
			openai.WithTimeout(cfg.SummarizerTimeout()))
		if err != nil {
			return nil, err
		}
		script = client
	}

	var speech SpeechClient
	if cfg.Speech.APIKey != "" {
		client, err := elevenlabs.NewClient(cfg.Speech.APIKey, cfg.Speech.VoiceID,
			elevenlabs.WithBaseURL(cfg.Speech.BaseURL),
			elevenlabs.WithVoiceSettings(cfg.Speech.Stability, cfg.Speech.SimilarityBoost),
			elevenlabs.WithTimeout(cfg.SpeechTimeout()))
		if err != nil {
			return nil, err
		}
		speech = client
	}

	var store *cache.Store
	if cfg.Cache.Enabled {
		opened, err := cache.Open(cfg.Cache.Path, cfg.CacheTTL(), logger)
		if err != nil {
			return nil, err
		}
		store = opened
	}

	return NewWithDependencies(cfg, fetch.NewClient(cfg, logger), script, speech, store, logger), nil
}

// NewWithDependencies assembles a pipeline from prebuilt collaborators.
func NewWithDependencies(cfg *config.Config, fetcher *fetch.Client, script summarize.ScriptClient, speech SpeechClient, store *cache.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		summarizer: summarize.New(script, cfg.Summarizer.TargetWords, logger),
		speech:     speech,
		store:      store,
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Close releases the article cache, if any.
func (p *Pipeline) Close() error {
	return p.store.Close()
}

// Process turns an article URL into a narration payload. The payload always
// carries a summary and image URL; audio is present unless speech synthesis
// is unavailable or fails, in which case the fallback flag is set.
func (p *Pipeline) Process(ctx context.Context, rawURL string) (narration.Payload, error) {
	pageURL, err := validateURL(rawURL)
	if err != nil {
		return narration.Payload{}, err
	}

	article, err := p.article(ctx, pageURL)
	if err != nil {
		return narration.Payload{}, err
	}

	summary, usedModel := p.summarizer.Summarize(ctx, article.Text)

	payload := narration.Payload{
		Summary:           summary,
		UsedLanguageModel: usedModel,
		ImageURL:          imageres.Resolve(article.ImageURL, summary),
	}

	p.synthesize(ctx, summary, &payload)

	payload.EstimatedDurationSec = p.estimateDuration(payload)
	return payload, nil
}

// article returns extracted content for the page, consulting the cache first.
func (p *Pipeline) article(ctx context.Context, pageURL string) (extract.Result, error) {
	if cached, ok := p.store.Get(ctx, pageURL); ok {
		p.logger.Debug("article cache hit", logging.Args(logging.String(logging.FieldURL, pageURL))...)
		return cached, nil
	}

	page, err := p.fetcher.Get(ctx, pageURL, fetch.Options{Accept: "text/html"})
	if err != nil {
		return extract.Result{}, err
	}

	article, err := extract.FromHTML(page.Body, pageURL)
	if err != nil {
		return extract.Result{}, err
	}
	if len(article.Text) < extract.MinTextLength {
		return extract.Result{}, services.Wrap(services.ErrExtraction, "pipeline", "extract",
			"page has too little article text", nil)
	}

	p.store.Put(ctx, pageURL, article)
	return article, nil
}

// synthesize attempts speech synthesis once. On any failure the payload is
// marked as a fallback so assembly and clients can react.
func (p *Pipeline) synthesize(ctx context.Context, summary string, payload *narration.Payload) {
	if p.speech == nil {
		payload.ClearAudio()
		return
	}
	audio, format, err := p.speech.Synthesize(ctx, summary)
	if err != nil {
		p.logger.Warn("speech synthesis failed, continuing without audio",
			logging.Args(logging.Error(err))...)
		payload.ClearAudio()
		return
	}
	payload.SetAudio(audio, narration.AudioFormat(format))
}

func (p *Pipeline) estimateDuration(payload narration.Payload) float64 {
	maxDuration := p.cfg.MaxDuration()
	if payload.HasAudio() {
		audio, err := payload.AudioBytes()
		if err == nil {
			return round2(narration.EstimateFromAudio(audio, payload.AudioFormat, maxDuration))
		}
	}
	return round2(narration.EstimateFromText(payload.Summary, maxDuration))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// validateURL accepts absolute http and https URLs only.
func validateURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "pipeline", "validate", "url is required", nil)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "pipeline", "validate", "invalid url", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", services.Wrap(services.ErrValidation, "pipeline", "validate",
			"url must be absolute http or https", nil)
	}
	return parsed.String(), nil
}
