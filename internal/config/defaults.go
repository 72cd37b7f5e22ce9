package config

const (
	defaultScratchDir = "~/.local/share/clipcast/scratch"
	defaultOutputDir  = "~/.local/share/clipcast/videos"
	defaultLogDir     = "~/.local/share/clipcast/logs"
	defaultCachePath  = "~/.cache/clipcast/articles.db"
	defaultAPIBind    = "127.0.0.1:8876"

	defaultFetchMaxAttempts    = 3
	defaultFetchBackoffMillis  = 700
	defaultFetchTimeoutSeconds = 30
	defaultFetchUserAgent      = "Mozilla/5.0 (compatible; ClipcastBot/1.0)"

	defaultSummarizerBaseURL        = "https://api.openai.com/v1/chat/completions"
	defaultSummarizerModel          = "gpt-3.5-turbo"
	defaultSummarizerTargetWords    = 130
	defaultSummarizerTimeoutSeconds = 60

	defaultSpeechBaseURL        = "https://api.elevenlabs.io"
	defaultSpeechVoiceID        = "21m00Tcm4TlvDq8ikWAM"
	defaultSpeechStability      = 0.6
	defaultSpeechSimilarity     = 0.6
	defaultSpeechTimeoutSeconds = 60

	defaultCaptureBinary     = "espeak-ng"
	defaultCaptureMargin     = 2
	defaultCaptureCapMargin  = 5
	defaultCaptureWordsPerMn = 150

	defaultMaxDurationSeconds = 90
	defaultPrimaryCodec       = "libx264"
	defaultFallbackCodec      = "mpeg4"
	defaultAudioBitrate       = "192k"
	defaultVideoWidth         = 1280
	defaultVideoHeight        = 720

	defaultCacheTTLHours = 24

	defaultLogFormat = "auto"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Fetch: Fetch{
			MaxAttempts:    defaultFetchMaxAttempts,
			BackoffMillis:  defaultFetchBackoffMillis,
			TimeoutSeconds: defaultFetchTimeoutSeconds,
			UserAgent:      defaultFetchUserAgent,
		},
		Summarizer: Summarizer{
			BaseURL:        defaultSummarizerBaseURL,
			Model:          defaultSummarizerModel,
			TargetWords:    defaultSummarizerTargetWords,
			TimeoutSeconds: defaultSummarizerTimeoutSeconds,
		},
		Speech: Speech{
			BaseURL:         defaultSpeechBaseURL,
			VoiceID:         defaultSpeechVoiceID,
			Stability:       defaultSpeechStability,
			SimilarityBoost: defaultSpeechSimilarity,
			TimeoutSeconds:  defaultSpeechTimeoutSeconds,
		},
		Capture: Capture{
			Enabled:           true,
			Binary:            defaultCaptureBinary,
			MarginSeconds:     defaultCaptureMargin,
			CapMarginSeconds:  defaultCaptureCapMargin,
			WordsPerMinuteWPM: defaultCaptureWordsPerMn,
		},
		Video: Video{
			MaxDurationSeconds: defaultMaxDurationSeconds,
			PrimaryCodec:       defaultPrimaryCodec,
			FallbackCodec:      defaultFallbackCodec,
			AudioBitrate:       defaultAudioBitrate,
			Width:              defaultVideoWidth,
			Height:             defaultVideoHeight,
		},
		Cache: Cache{
			Enabled:  true,
			Path:     defaultCachePath,
			TTLHours: defaultCacheTTLHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
