// Package narration defines the contract between the content pipeline and
// video assembly: the narration payload, duration estimation, and the debug
// tone generator.
package narration

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// AudioFormat identifies the container of synthesized narration audio.
type AudioFormat string

const (
	FormatMP3  AudioFormat = "mp3"
	FormatWAV  AudioFormat = "wav"
	FormatWebM AudioFormat = "webm"
)

// Payload is the narration handoff produced by the content pipeline and
// consumed by video assembly. Audio travels base64-encoded so the payload
// stays a plain JSON document.
//
// Invariants: TTSFallback is true exactly when AudioBase64 is empty, and
// AudioFormat is set exactly when audio is present.
type Payload struct {
	Summary              string      `json:"summary"`
	AudioBase64          string      `json:"audioBase64,omitempty"`
	AudioFormat          AudioFormat `json:"audioFormat,omitempty"`
	EstimatedDurationSec float64     `json:"estimatedDurationSec"`
	UsedLanguageModel    bool        `json:"usedOpenAI"`
	TTSFallback          bool        `json:"ttsFallback"`
	ImageURL             string      `json:"imageUrl"`
}

// SetAudio stores audio bytes in the payload and clears the fallback flag.
func (p *Payload) SetAudio(data []byte, format AudioFormat) {
	if len(data) == 0 {
		p.ClearAudio()
		return
	}
	p.AudioBase64 = base64.StdEncoding.EncodeToString(data)
	p.AudioFormat = format
	p.TTSFallback = false
}

// ClearAudio marks the payload as audio-less.
func (p *Payload) ClearAudio() {
	p.AudioBase64 = ""
	p.AudioFormat = ""
	p.TTSFallback = true
}

// HasAudio reports whether narration audio is present.
func (p Payload) HasAudio() bool {
	return p.AudioBase64 != ""
}

// AudioBytes decodes the embedded narration audio.
func (p Payload) AudioBytes() ([]byte, error) {
	if p.AudioBase64 == "" {
		return nil, errors.New("payload has no audio")
	}
	data, err := base64.StdEncoding.DecodeString(p.AudioBase64)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return data, nil
}

// Validate checks the payload invariants against the duration cap.
func (p Payload) Validate(maxDuration float64) error {
	if p.HasAudio() {
		if p.TTSFallback {
			return errors.New("ttsFallback must be false when audio is present")
		}
		if p.AudioFormat == "" {
			return errors.New("audioFormat required when audio is present")
		}
	} else {
		if !p.TTSFallback {
			return errors.New("ttsFallback must be true when audio is absent")
		}
		if p.AudioFormat != "" {
			return errors.New("audioFormat must be empty when audio is absent")
		}
	}
	if p.EstimatedDurationSec < 0 {
		return errors.New("estimatedDurationSec must not be negative")
	}
	if maxDuration > 0 && p.EstimatedDurationSec > maxDuration {
		return fmt.Errorf("estimatedDurationSec %.2f exceeds cap %.2f", p.EstimatedDurationSec, maxDuration)
	}
	return nil
}
