// Package capture records narration with a local speech synthesizer when the
// hosted text-to-speech service is unavailable. The synthesizer is raced
// against a forced-stop timer so a hung or run-away process can never stall a
// render: whatever audio exists when the timer fires is used as-is.
package capture

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"time"

	"clipcast/internal/config"
	"clipcast/internal/logging"
	"clipcast/internal/narration"
	"clipcast/internal/services"
)

// commandFunc builds the synthesizer command. Tests substitute scripts.
type commandFunc func(ctx context.Context, binary, outPath, text string) *exec.Cmd

// Recorder drives the local speech synthesizer.
type Recorder struct {
	binary      string
	margin      time.Duration
	capMargin   time.Duration
	wordsPerMin int
	maxDuration float64
	logger      *slog.Logger
	command     commandFunc
}

// NewRecorder builds a Recorder from configuration.
func NewRecorder(cfg *config.Config, logger *slog.Logger) *Recorder {
	return &Recorder{
		binary:      cfg.Capture.Binary,
		margin:      time.Duration(cfg.Capture.MarginSeconds) * time.Second,
		capMargin:   time.Duration(cfg.Capture.CapMarginSeconds) * time.Second,
		wordsPerMin: cfg.Capture.WordsPerMinuteWPM,
		maxDuration: cfg.MaxDuration(),
		logger:      logging.NewComponentLogger(logger, "capture"),
		command:     defaultCommand,
	}
}

func defaultCommand(ctx context.Context, binary, outPath, text string) *exec.Cmd {
	return exec.CommandContext(ctx, binary, "-w", outPath, text)
}

// Deadline computes the forced-stop budget for text: the estimated speaking
// time plus a margin, never beyond the duration cap plus its own margin.
func (r *Recorder) Deadline(text string) time.Duration {
	words := narration.CountWords(text)
	speech := float64(words) / float64(r.wordsPerMin) * 60
	estimated := time.Duration(speech*float64(time.Second)) + r.margin
	ceiling := time.Duration(r.maxDuration)*time.Second + r.capMargin
	if estimated > ceiling {
		return ceiling
	}
	return estimated
}

// Record synthesizes text into WAV audio. If the forced-stop timer fires
// before the synthesizer exits, the process is killed and the partial
// recording is returned; only a missing or empty output file is an error.
func (r *Recorder) Record(ctx context.Context, text string) ([]byte, error) {
	if narration.CountWords(text) == 0 {
		return nil, services.Wrap(services.ErrValidation, "capture", "record", "empty narration text", nil)
	}

	outDir, err := os.MkdirTemp("", "clipcast-capture-")
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "capture", "record", "create temp dir", err)
	}
	defer os.RemoveAll(outDir)
	outPath := filepath.Join(outDir, "narration.wav")

	cmd := r.command(ctx, r.binary, outPath, text)
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "capture", "record", "start synthesizer", err)
	}

	deadline := r.Deadline(text)
	var forced atomic.Bool
	timer := time.AfterFunc(deadline, func() {
		forced.Store(true)
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	})
	waitErr := cmd.Wait()
	timer.Stop()

	data, readErr := os.ReadFile(outPath)
	if readErr != nil || len(data) == 0 {
		if waitErr != nil {
			return nil, services.Wrap(services.ErrExternalTool, "capture", "record", "synthesizer produced no audio", waitErr)
		}
		return nil, services.Wrap(services.ErrExternalTool, "capture", "record", "synthesizer produced no audio", readErr)
	}

	if forced.Load() {
		r.logger.Warn("forced stop fired, using partial recording",
			logging.Args(
				logging.Duration(logging.FieldDuration, deadline),
				logging.Int("bytes", len(data)),
			)...)
	} else if waitErr != nil {
		// Non-zero exit with usable output: keep the audio, note the exit.
		r.logger.Warn("synthesizer exited abnormally",
			logging.Args(logging.Error(waitErr))...)
	}
	return data, nil
}
