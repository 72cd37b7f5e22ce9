package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"clipcast/internal/assembly"
	"clipcast/internal/fetch"
	"clipcast/internal/pipeline"
	"clipcast/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the clipcast API server",
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

			provider := assembly.NewProvider(cfg, logger)
			defer provider.Close()
			assembler := assembly.New(provider, fetch.NewClient(cfg, logger), cfg, logger)
			recorder := server.NewRecorder(cfg, logger)

			srv := server.New(cfg, p, assembler, recorder, logger)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.Start(runCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "clipcast API listening on %s\n", srv.Addr())

			<-runCtx.Done()
			srv.Stop()
			return nil
		},
	}
}
