// Package elevenlabs implements the hosted text-to-speech client. Synthesis
// is attempted exactly once per narration; callers fall back to local capture
// or silent assembly when it fails.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipcast/internal/services"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	defaultModelID = "eleven_monolingual_v1"

	defaultStability       = 0.6
	defaultSimilarityBoost = 0.6
)

// Client talks to the ElevenLabs text-to-speech API.
type Client struct {
	apiKey          string
	voiceID         string
	baseURL         string
	modelID         string
	stability       float64
	similarityBoost float64
	httpClient      *http.Client
}

// Option customizes client construction.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(strings.TrimSuffix(baseURL, "/")); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithVoiceSettings overrides the fixed voice tuning.
func WithVoiceSettings(stability, similarityBoost float64) Option {
	return func(c *Client) {
		c.stability = stability
		c.similarityBoost = similarityBoost
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a synthesis client. Both credentials must be non-empty.
func NewClient(apiKey, voiceID string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(voiceID) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "elevenlabs", "new", "api key and voice id required", nil)
	}
	client := &Client{
		apiKey:          strings.TrimSpace(apiKey),
		voiceID:         strings.TrimSpace(voiceID),
		baseURL:         defaultBaseURL,
		modelID:         defaultModelID,
		stability:       defaultStability,
		similarityBoost: defaultSimilarityBoost,
		httpClient:      &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize converts text to speech. It returns the raw audio bytes and the
// container format inferred from the response content type.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, "", services.Wrap(services.ErrValidation, "elevenlabs", "synthesize", "empty text", nil)
	}

	payload := synthesisRequest{
		Text:    text,
		ModelID: c.modelID,
		VoiceSettings: voiceSettings{
			Stability:       c.stability,
			SimilarityBoost: c.similarityBoost,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", services.Wrap(services.ErrTransient, "elevenlabs", "synthesize", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", services.Wrap(services.ErrTransient, "elevenlabs", "synthesize",
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", services.Wrap(services.ErrTransient, "elevenlabs", "synthesize", "empty audio response", nil)
	}

	return audio, formatFromContentType(resp.Header.Get("Content-Type")), nil
}

// formatFromContentType infers the audio container. The API answers with MPEG
// audio unless a WAV variant was requested.
func formatFromContentType(contentType string) string {
	if strings.Contains(strings.ToLower(contentType), "wav") {
		return "wav"
	}
	return "mp3"
}
