package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"asciivid/internal/catalog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent encodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Catalog.Enabled {
				return errors.New("encode history is disabled (set catalog.enabled = true)")
			}
			store, err := catalog.Open(cmd.Context(), cfg.CatalogPath())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No encodes recorded")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					strconv.FormatInt(e.ID, 10),
					e.CreatedAt.Local().Format("2006-01-02 15:04"),
					e.Artifact,
					e.Input,
					strconv.Itoa(e.Frames),
					fmt.Sprintf("%dx%d", e.Width, e.Height),
					e.Elapsed.Round(10 * time.Millisecond).String(),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Created", "Artifact", "Input", "Frames", "Size", "Elapsed"},
				rows, 0, 4,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of encodes to show")
	return cmd
}
