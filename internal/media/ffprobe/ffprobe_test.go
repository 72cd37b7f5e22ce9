package ffprobe

import (
	"encoding/json"
	"testing"
)

const sampleOutput = `{
	"streams": [
		{"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720},
		{"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2}
	],
	"format": {
		"filename": "output.mp4",
		"nb_streams": 2,
		"duration": "42.500000",
		"size": "1048576",
		"format_name": "mov,mp4,m4a,3gp,3g2,mj2"
	}
}`

func parseSample(t *testing.T) Result {
	t.Helper()
	var result Result
	if err := json.Unmarshal([]byte(sampleOutput), &result); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	return result
}

func TestStreamCounts(t *testing.T) {
	result := parseSample(t)
	if got := result.VideoStreamCount(); got != 1 {
		t.Fatalf("video streams = %d", got)
	}
	if got := result.AudioStreamCount(); got != 1 {
		t.Fatalf("audio streams = %d", got)
	}
}

func TestDurationAndSize(t *testing.T) {
	result := parseSample(t)
	if got := result.DurationSeconds(); got != 42.5 {
		t.Fatalf("duration = %v", got)
	}
	if got := result.SizeBytes(); got != 1048576 {
		t.Fatalf("size = %d", got)
	}
}

func TestValidateVideoArtifact(t *testing.T) {
	result := parseSample(t)
	if err := result.ValidateVideoArtifact(); err != nil {
		t.Fatalf("ValidateVideoArtifact: %v", err)
	}

	noAudio := result
	noAudio.Streams = result.Streams[:1]
	if err := noAudio.ValidateVideoArtifact(); err == nil {
		t.Fatal("expected error for missing audio stream")
	}

	noDuration := result
	noDuration.Format.Duration = ""
	if err := noDuration.ValidateVideoArtifact(); err == nil {
		t.Fatal("expected error for missing duration")
	}
}

func TestParseFloatHandlesGarbage(t *testing.T) {
	if got := parseFloat("not-a-number"); got != 0 {
		t.Fatalf("parseFloat = %v", got)
	}
	if got := parseFloat("  12.25  "); got != 12.25 {
		t.Fatalf("parseFloat = %v", got)
	}
}
