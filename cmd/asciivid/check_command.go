package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"asciivid/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify ffmpeg, ffprobe and data directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, line := range preflightLines(results, shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			fmt.Fprintf(out, "Catalog enabled: %s\n", yesNo(cfg.Catalog.Enabled))
			return nil
		},
	}
}
