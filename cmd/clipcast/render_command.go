package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clipcast/internal/assembly"
	"clipcast/internal/fetch"
	"clipcast/internal/narration"
	"clipcast/internal/pipeline"
	"clipcast/internal/server"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "render <url>",
		Short: "Render an article into a narrated MP4",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			p, err := pipeline.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("build pipeline: %w", err)
			}
			defer p.Close()

			payload, err := p.Process(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !payload.HasAudio() {
				if recorder := server.NewRecorder(cfg, logger); recorder != nil {
					audio, err := recorder.Record(cmd.Context(), payload.Summary)
					if err == nil {
						payload.SetAudio(audio, narration.FormatWAV)
						payload.EstimatedDurationSec = narration.EstimateFromAudio(audio, narration.FormatWAV, cfg.MaxDuration())
					}
				}
			}

			provider := assembly.NewProvider(cfg, logger)
			defer provider.Close()
			assembler := assembly.New(provider, fetch.NewClient(cfg, logger), cfg, logger)

			job := assembly.NewJob()
			artifact, err := assembler.Assemble(cmd.Context(), payload, job)
			if err != nil {
				return err
			}

			if target := strings.TrimSpace(outputPath); target != "" {
				moved, err := moveArtifact(artifact, target)
				if err != nil {
					return err
				}
				artifact = moved
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", artifact)
			fmt.Fprintf(out, "Narration: %.0fs, language model %s, speech fallback %s\n",
				payload.EstimatedDurationSec, yesNo(payload.UsedLanguageModel), yesNo(payload.TTSFallback))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the video to this path instead of the output directory")
	return cmd
}

// moveArtifact relocates the rendered video, copying when the target sits on
// a different filesystem.
func moveArtifact(artifact, target string) (string, error) {
	if err := os.Rename(artifact, target); err == nil {
		return target, nil
	}
	data, err := os.ReadFile(artifact)
	if err != nil {
		return "", fmt.Errorf("read rendered video: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write video to %s: %w", target, err)
	}
	_ = os.Remove(artifact)
	return target, nil
}
