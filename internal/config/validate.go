package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.ScratchDir == "" {
		return errors.New("paths.scratch_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateFetch() error {
	return ensurePositiveMap(map[string]int{
		"fetch.max_attempts":    c.Fetch.MaxAttempts,
		"fetch.backoff_millis":  c.Fetch.BackoffMillis,
		"fetch.timeout_seconds": c.Fetch.TimeoutSeconds,
	})
}

func (c *Config) validateSpeech() error {
	if c.Speech.Stability < 0 || c.Speech.Stability > 1 {
		return errors.New("speech.stability must be between 0 and 1")
	}
	if c.Speech.SimilarityBoost < 0 || c.Speech.SimilarityBoost > 1 {
		return errors.New("speech.similarity_boost must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if err := ensurePositiveMap(map[string]int{
		"video.max_duration_seconds": c.Video.MaxDurationSeconds,
		"video.width":                c.Video.Width,
		"video.height":               c.Video.Height,
	}); err != nil {
		return err
	}
	if c.Video.PrimaryCodec == c.Video.FallbackCodec {
		return errors.New("video.fallback_codec must differ from video.primary_codec")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be auto, console, or json (got %q)", c.Logging.Format)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be greater than zero", key)
		}
	}
	return nil
}
