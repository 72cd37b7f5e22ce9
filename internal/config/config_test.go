package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipcast/internal/config"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config")
	}
	if cfg.Video.MaxDurationSeconds != 90 {
		t.Fatalf("default max duration = %d", cfg.Video.MaxDurationSeconds)
	}
	if cfg.Summarizer.TargetWords != 130 {
		t.Fatalf("default target words = %d", cfg.Summarizer.TargetWords)
	}
	if cfg.Fetch.BackoffMillis != 700 {
		t.Fatalf("default backoff = %d", cfg.Fetch.BackoffMillis)
	}
	if !filepath.IsAbs(cfg.Paths.ScratchDir) {
		t.Fatalf("scratch dir not expanded: %q", cfg.Paths.ScratchDir)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
scratch_dir = "` + filepath.Join(dir, "scratch") + `"
output_dir = "` + filepath.Join(dir, "out") + `"

[video]
max_duration_seconds = 45
primary_codec = "libx265"

[summarizer]
target_words = 80
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("exists=%v resolved=%q", exists, resolved)
	}
	if cfg.Video.MaxDurationSeconds != 45 {
		t.Fatalf("max duration = %d", cfg.Video.MaxDurationSeconds)
	}
	if cfg.Video.PrimaryCodec != "libx265" {
		t.Fatalf("primary codec = %q", cfg.Video.PrimaryCodec)
	}
	if cfg.Summarizer.TargetWords != 80 {
		t.Fatalf("target words = %d", cfg.Summarizer.TargetWords)
	}
	// Untouched sections keep defaults.
	if cfg.Video.FallbackCodec != "mpeg4" {
		t.Fatalf("fallback codec = %q", cfg.Video.FallbackCodec)
	}
}

func TestEnvironmentCredentialFallbacks(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("ELEVENLABS_API_KEY", "el-env")
	t.Setenv("ELEVENLABS_VOICE_ID", "voice-env")
	t.Setenv("CLIPCAST_MAX_DURATION", "60")
	t.Setenv("CLIPCAST_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Summarizer.APIKey != "sk-env" {
		t.Fatalf("summarizer key = %q", cfg.Summarizer.APIKey)
	}
	if cfg.Speech.APIKey != "el-env" || cfg.Speech.VoiceID != "voice-env" {
		t.Fatalf("speech creds = %q / %q", cfg.Speech.APIKey, cfg.Speech.VoiceID)
	}
	if cfg.Video.MaxDurationSeconds != 60 {
		t.Fatalf("max duration from env = %d", cfg.Video.MaxDurationSeconds)
	}
	if cfg.Video.FFmpegBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("ffmpeg binary = %q", cfg.Video.FFmpegBinary)
	}
}

func TestValidateRejectsMatchingCodecs(t *testing.T) {
	cfg := config.Default()
	cfg.Video.PrimaryCodec = "mpeg4"
	cfg.Video.FallbackCodec = "mpeg4"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "fallback_codec") {
		t.Fatalf("expected codec validation error, got %v", err)
	}
}

func TestValidateRejectsBadStability(t *testing.T) {
	cfg := config.Default()
	cfg.Speech.Stability = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected stability validation error")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load cleanly: exists=%v err=%v", exists, err)
	}
}
