package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFetch()
	c.normalizeSummarizer()
	c.normalizeSpeech()
	c.normalizeCapture()
	if err := c.normalizeVideo(); err != nil {
		return err
	}
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeFetch() {
	if c.Fetch.MaxAttempts <= 0 {
		c.Fetch.MaxAttempts = defaultFetchMaxAttempts
	}
	if c.Fetch.BackoffMillis <= 0 {
		c.Fetch.BackoffMillis = defaultFetchBackoffMillis
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeoutSeconds
	}
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultFetchUserAgent
	}
}

func (c *Config) normalizeSummarizer() {
	if c.Summarizer.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Summarizer.APIKey = strings.TrimSpace(value)
		}
	}
	c.Summarizer.APIKey = strings.TrimSpace(c.Summarizer.APIKey)
	c.Summarizer.BaseURL = strings.TrimSpace(c.Summarizer.BaseURL)
	if c.Summarizer.BaseURL == "" {
		c.Summarizer.BaseURL = defaultSummarizerBaseURL
	}
	c.Summarizer.Model = strings.TrimSpace(c.Summarizer.Model)
	if c.Summarizer.Model == "" {
		c.Summarizer.Model = defaultSummarizerModel
	}
	if c.Summarizer.TargetWords <= 0 {
		c.Summarizer.TargetWords = defaultSummarizerTargetWords
	}
	if c.Summarizer.TimeoutSeconds <= 0 {
		c.Summarizer.TimeoutSeconds = defaultSummarizerTimeoutSeconds
	}
}

func (c *Config) normalizeSpeech() {
	if c.Speech.APIKey == "" {
		if value, ok := os.LookupEnv("ELEVENLABS_API_KEY"); ok {
			c.Speech.APIKey = strings.TrimSpace(value)
		}
	}
	c.Speech.APIKey = strings.TrimSpace(c.Speech.APIKey)
	if c.Speech.VoiceID == "" {
		if value, ok := os.LookupEnv("ELEVENLABS_VOICE_ID"); ok {
			c.Speech.VoiceID = strings.TrimSpace(value)
		}
	}
	c.Speech.VoiceID = strings.TrimSpace(c.Speech.VoiceID)
	if c.Speech.VoiceID == "" {
		c.Speech.VoiceID = defaultSpeechVoiceID
	}
	c.Speech.BaseURL = strings.TrimSpace(strings.TrimSuffix(c.Speech.BaseURL, "/"))
	if c.Speech.BaseURL == "" {
		c.Speech.BaseURL = defaultSpeechBaseURL
	}
	if c.Speech.Stability == 0 {
		c.Speech.Stability = defaultSpeechStability
	}
	if c.Speech.SimilarityBoost == 0 {
		c.Speech.SimilarityBoost = defaultSpeechSimilarity
	}
	if c.Speech.TimeoutSeconds <= 0 {
		c.Speech.TimeoutSeconds = defaultSpeechTimeoutSeconds
	}
}

func (c *Config) normalizeCapture() {
	c.Capture.Binary = strings.TrimSpace(c.Capture.Binary)
	if c.Capture.Binary == "" {
		c.Capture.Binary = defaultCaptureBinary
	}
	if c.Capture.MarginSeconds <= 0 {
		c.Capture.MarginSeconds = defaultCaptureMargin
	}
	if c.Capture.CapMarginSeconds <= 0 {
		c.Capture.CapMarginSeconds = defaultCaptureCapMargin
	}
	if c.Capture.WordsPerMinuteWPM <= 0 {
		c.Capture.WordsPerMinuteWPM = defaultCaptureWordsPerMn
	}
}

func (c *Config) normalizeVideo() error {
	if c.Video.FFmpegBinary == "" {
		if value, ok := os.LookupEnv("CLIPCAST_FFMPEG"); ok {
			c.Video.FFmpegBinary = strings.TrimSpace(value)
		}
	}
	if c.Video.MaxDurationSeconds <= 0 {
		c.Video.MaxDurationSeconds = defaultMaxDurationSeconds
	}
	if value, ok := os.LookupEnv("CLIPCAST_MAX_DURATION"); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("CLIPCAST_MAX_DURATION: %w", err)
		}
		if parsed > 0 {
			c.Video.MaxDurationSeconds = parsed
		}
	}
	c.Video.PrimaryCodec = strings.TrimSpace(c.Video.PrimaryCodec)
	if c.Video.PrimaryCodec == "" {
		c.Video.PrimaryCodec = defaultPrimaryCodec
	}
	c.Video.FallbackCodec = strings.TrimSpace(c.Video.FallbackCodec)
	if c.Video.FallbackCodec == "" {
		c.Video.FallbackCodec = defaultFallbackCodec
	}
	c.Video.AudioBitrate = strings.TrimSpace(c.Video.AudioBitrate)
	if c.Video.AudioBitrate == "" {
		c.Video.AudioBitrate = defaultAudioBitrate
	}
	if c.Video.Width <= 0 {
		c.Video.Width = defaultVideoWidth
	}
	if c.Video.Height <= 0 {
		c.Video.Height = defaultVideoHeight
	}
	return nil
}

func (c *Config) normalizeCache() error {
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCachePath
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = defaultCacheTTLHours
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
