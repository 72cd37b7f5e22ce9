package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"clipcast/internal/config"
	"clipcast/internal/deps"
	"clipcast/internal/fetch"
	"clipcast/internal/logging"
	"clipcast/internal/media/ffprobe"
	"clipcast/internal/narration"
	"clipcast/internal/services"
)

// Scratch file names used by every job. The engine filesystem holds at most
// one job at a time, so fixed names are safe and keep cleanup exhaustive.
const (
	thumbSourceName  = "thumb_src"
	thumbDefaultName = "thumb_default.svg"
	thumbName        = "thumb.png"
	outputName       = "output.mp4"
)

// imageFetcher is the subset of the fetch client used for thumbnails.
type imageFetcher interface {
	Get(ctx context.Context, url string, opts fetch.Options) (fetch.Result, error)
}

// probeFunc validates an encoded artifact. Nil disables validation.
type probeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Assembler encodes narration payloads into MP4 files.
type Assembler struct {
	provider *Provider
	fetcher  imageFetcher
	cfg      *config.Config
	logger   *slog.Logger
	probe    probeFunc
}

// New builds an Assembler. Artifact validation runs only when ffprobe is
// installed; a missing probe binary degrades to unvalidated output rather
// than failing every job.
func New(provider *Provider, fetcher *fetch.Client, cfg *config.Config, logger *slog.Logger) *Assembler {
	a := &Assembler{
		provider: provider,
		fetcher:  fetcher,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "assembly"),
	}
	if statuses := deps.CheckBinaries([]deps.Requirement{{Name: "FFprobe", Command: cfg.FFprobeBinary()}}); statuses[0].Available {
		a.probe = ffprobe.Inspect
	}
	return a
}

// NewWithDependencies is intended for tests.
func NewWithDependencies(provider *Provider, fetcher imageFetcher, cfg *config.Config, logger *slog.Logger, probe probeFunc) *Assembler {
	return &Assembler{
		provider: provider,
		fetcher:  fetcher,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "assembly"),
		probe:    probe,
	}
}

// Assemble runs the full job state machine and returns the artifact path.
// Every intermediate scratch file is removed before returning, on success and
// failure alike.
func (a *Assembler) Assemble(ctx context.Context, payload narration.Payload, job *Job) (string, error) {
	artifact, err := a.assemble(ctx, payload, job)
	if err != nil {
		job.fail(err)
		return "", err
	}
	return artifact, nil
}

func (a *Assembler) assemble(ctx context.Context, payload narration.Payload, job *Job) (string, error) {
	if err := payload.Validate(a.cfg.MaxDuration()); err != nil {
		return "", services.Wrap(services.ErrValidation, "assembly", "payload", "invalid narration payload", err)
	}
	if !payload.HasAudio() {
		return "", services.Wrap(services.ErrValidation, "assembly", "payload", "narration audio required for assembly", nil)
	}

	job.update(PhaseAcquiringEngine, 5, "Loading media engine")
	engine, err := a.provider.Acquire(ctx)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "assembly", "engine", "media engine unavailable", err)
	}
	job.update(PhaseAcquiringEngine, 10, "Media engine ready")

	var scratch []string
	defer func() {
		for _, name := range scratch {
			engine.Remove(name)
		}
	}()
	track := func(name string) { scratch = append(scratch, name) }

	audio, err := payload.AudioBytes()
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "assembly", "payload", "undecodable narration audio", err)
	}
	audioName := "input_audio." + string(payload.AudioFormat)
	if err := engine.WriteFile(audioName, audio); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "assembly", "audio", "stage narration audio", err)
	}
	track(audioName)
	job.update(PhaseWritingAudio, 20, "Narration audio staged")

	job.update(PhasePreparingThumbnail, 30, "Preparing thumbnail")
	thumbMessage, err := a.prepareThumbnail(ctx, engine, payload.ImageURL, track)
	if err != nil {
		return "", err
	}
	job.update(PhasePreparingThumbnail, 40, thumbMessage)

	durationSec := int(math.Ceil(narration.EstimateFromAudio(audio, payload.AudioFormat, a.cfg.MaxDuration())))
	if durationSec < 1 {
		durationSec = 1
	}

	job.update(PhaseEncoding, 50, "Encoding video")
	track(outputName)
	usedFallback := false
	if err := engine.Run(ctx, a.encodeArgs(a.cfg.Video.PrimaryCodec, audioName, durationSec)...); err != nil {
		a.logger.Warn("primary codec failed, retrying with fallback",
			logging.Args(
				logging.String("codec", a.cfg.Video.PrimaryCodec),
				logging.Error(err),
			)...)
		engine.Remove(outputName)
		usedFallback = true
		job.update(PhaseEncoding, 55, "Encoding video (fallback codec)")
		if err := engine.Run(ctx, a.encodeArgs(a.cfg.Video.FallbackCodec, audioName, durationSec)...); err != nil {
			return "", services.Wrap(services.ErrExternalTool, "assembly", "encode", "both codecs failed", err)
		}
	}

	job.update(PhaseEncoding, 90, "Reading encoded video")
	encoded, err := engine.ReadFile(outputName)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "assembly", "encode", "read encoder output", err)
	}
	if len(encoded) == 0 {
		return "", services.Wrap(services.ErrExternalTool, "assembly", "encode", "encoder produced empty output", nil)
	}

	artifact := filepath.Join(a.cfg.Paths.OutputDir, fmt.Sprintf("clipcast-%s.mp4", job.ID()))
	if err := os.WriteFile(artifact, encoded, 0o644); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "assembly", "encode", "write artifact", err)
	}

	if a.probe != nil {
		result, err := a.probe(ctx, a.cfg.FFprobeBinary(), artifact)
		if err != nil {
			os.Remove(artifact)
			return "", services.Wrap(services.ErrExternalTool, "assembly", "validate", "probe artifact", err)
		}
		if err := result.ValidateVideoArtifact(); err != nil {
			os.Remove(artifact)
			return "", services.Wrap(services.ErrExternalTool, "assembly", "validate", "artifact rejected", err)
		}
	}

	message := "Video ready"
	if usedFallback {
		message = "Video ready (fallback codec)"
	}
	job.complete(artifact, message)

	a.logger.Info("assembly complete",
		logging.Args(
			logging.String(logging.FieldJobID, job.ID()),
			logging.String("artifact", artifact),
			logging.Int("duration_sec", durationSec),
			logging.Bool("fallback_codec", usedFallback),
		)...)
	return artifact, nil
}

// prepareThumbnail produces thumb.png inside the engine filesystem. The
// article image is tried first, then the bundled SVG, then a generated
// gradient. Only a total filesystem failure aborts the job.
func (a *Assembler) prepareThumbnail(ctx context.Context, engine *Engine, imageURL string, track func(string)) (string, error) {
	scale := fmt.Sprintf("scale=%d:%d", a.cfg.Video.Width, a.cfg.Video.Height)

	if imageURL != "" && a.fetcher != nil {
		result, err := a.fetcher.Get(ctx, imageURL, fetch.Options{MaxAttempts: 2})
		if err != nil {
			a.logger.Warn("thumbnail download failed, using default image",
				logging.Args(logging.String(logging.FieldURL, imageURL), logging.Error(err))...)
		} else if err := engine.WriteFile(thumbSourceName, result.Body); err == nil {
			track(thumbSourceName)
			if err := engine.Run(ctx, "-y", "-i", thumbSourceName, "-vf", scale, thumbName); err == nil {
				track(thumbName)
				// Drop the raw source now so thumb.png is the only
				// thumbnail file left at encode time.
				engine.Remove(thumbSourceName)
				return "Thumbnail ready", nil
			}
			a.logger.Warn("thumbnail conversion failed, using default image",
				logging.Args(logging.String(logging.FieldURL, imageURL))...)
		}
	}

	if err := engine.WriteFile(thumbDefaultName, defaultThumbnailSVG); err == nil {
		track(thumbDefaultName)
		if err := engine.Run(ctx, "-y", "-i", thumbDefaultName, "-vf", scale, thumbName); err == nil {
			track(thumbName)
			engine.Remove(thumbDefaultName)
			return "Thumbnail ready (default image)", nil
		}
	}

	raster := defaultRasterPNG(a.cfg.Video.Width, a.cfg.Video.Height)
	if err := engine.WriteFile(thumbName, raster); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "assembly", "thumbnail", "write generated thumbnail", err)
	}
	track(thumbName)
	return "Thumbnail ready (generated image)", nil
}

func (a *Assembler) encodeArgs(codec, audioName string, durationSec int) []string {
	return []string{
		"-y",
		"-loop", "1",
		"-i", thumbName,
		"-i", audioName,
		"-c:v", codec,
		"-t", strconv.Itoa(durationSec),
		"-vf", fmt.Sprintf("scale=%d:%d", a.cfg.Video.Width, a.cfg.Video.Height),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", a.cfg.Video.AudioBitrate,
		"-shortest",
		outputName,
	}
}
