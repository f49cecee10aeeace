package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidx/internal/logging"
	"vidx/internal/pipeline"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	flags := &productFlags{}

	cmd := &cobra.Command{
		Use:   "generate [flags] IMAGE...",
		Short: "Generate a promo video for one listing, synchronously",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			spec, err := flags.jobSpec(args)
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Writer: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			runner, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}

			product := pipeline.ProductContext{
				Title:       spec.Title,
				Category:    spec.Category,
				Price:       spec.Price,
				Description: spec.Description,
				Details:     spec.Details,
				Language:    spec.Language,
			}
			result, err := runner.Run(cmd.Context(), product, spec.Images)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Video:     %s\n", result.VideoURL)
			fmt.Fprintf(out, "Thumbnail: %s\n", result.ThumbnailURL)
			fmt.Fprintf(out, "Duration:  %.1fs\n", result.Duration)
			fmt.Fprintf(out, "Words:     %d\n", result.WordCount)
			fmt.Fprintf(out, "Est. cost: $%.4f\n", result.Cost)
			fmt.Fprintf(out, "\nScript:\n%s\n", result.Script)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
