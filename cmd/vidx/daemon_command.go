package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vidx/internal/daemon"
	"vidx/internal/logging"
	"vidx/internal/pipeline"
	"vidx/internal/queue"
	"vidx/internal/workflow"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the background video generation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, closer, err := logging.NewWithFile(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Writer: cmd.ErrOrStderr(),
			}, cfg.LogFilePath())
			if err != nil {
				return err
			}
			defer closer.Close()

			store, err := queue.Open(cmd.Context(), cfg.QueueDatabasePath())
			if err != nil {
				return err
			}

			runner, err := pipeline.New(cfg, logger)
			if err != nil {
				store.Close()
				return err
			}

			manager := workflow.NewManager(cfg, store, runner, logger)
			d, err := daemon.New(cfg, store, manager, logger)
			if err != nil {
				store.Close()
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				d.Close()
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "vidx daemon running, press Ctrl+C to stop")

			<-runCtx.Done()
			return d.Close()
		},
	}
}
