package narration

import (
	"encoding/binary"
	"strings"
)

const (
	// WordsPerMinute is the assumed narration pace for pre-synthesis
	// estimates.
	WordsPerMinute = 150

	// genericBitrateBits is the bitrate assumed for compressed narration
	// audio when the container carries no rate information.
	genericBitrateBits = 192000

	// wavHeaderSize is the canonical RIFF/WAVE header length; byteRate sits
	// at offset 28.
	wavHeaderSize      = 44
	wavByteRateOffset  = 28
	wavFallbackRate    = 176400
	defaultDurationSec = 60
)

// CountWords returns the number of whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// EstimateFromText predicts narration duration from word count at the assumed
// reading pace, capped at maxDuration.
func EstimateFromText(text string, maxDuration float64) float64 {
	seconds := float64(CountWords(text)) / WordsPerMinute * 60
	return capDuration(seconds, maxDuration)
}

// EstimateFromAudio computes duration from the actual audio bytes. MP3 and
// unknown formats use the generic bitrate; WAV reads the byte rate from the
// header. Malformed input degrades to a fixed estimate rather than failing.
func EstimateFromAudio(data []byte, format AudioFormat, maxDuration float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var seconds float64
	switch format {
	case FormatWAV:
		seconds = wavDuration(data)
	default:
		seconds = float64(len(data)) * 8 / genericBitrateBits
	}
	if seconds <= 0 {
		seconds = defaultDurationSec
	}
	return capDuration(seconds, maxDuration)
}

func wavDuration(data []byte) float64 {
	if len(data) > wavHeaderSize {
		byteRate := binary.LittleEndian.Uint32(data[wavByteRateOffset : wavByteRateOffset+4])
		if byteRate > 0 {
			return float64(len(data)-wavHeaderSize) / float64(byteRate)
		}
	}
	return float64(len(data)) / wavFallbackRate
}

func capDuration(seconds, maxDuration float64) float64 {
	if seconds < 0 {
		return 0
	}
	if maxDuration > 0 && seconds > maxDuration {
		return maxDuration
	}
	return seconds
}
