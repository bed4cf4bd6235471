package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"asciivid/internal/charmap"
)

const defaultCalibrationAlphabet = " .'`^\",:;Il!i><~+_-?][}{1)(|/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$"

func newPaletteCommand() *cobra.Command {
	paletteCmd := &cobra.Command{
		Use:         "palette",
		Short:       "Palette utilities",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	paletteCmd.AddCommand(newPaletteCalibrateCommand())
	return paletteCmd
}

func newPaletteCalibrateCommand() *cobra.Command {
	var (
		fontPath string
		alphabet string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Order characters by how much ink they leave in a font",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var fontData []byte
			if path := strings.TrimSpace(fontPath); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read font: %w", err)
				}
				fontData = data
			}
			palette, coverage, err := charmap.Calibrate(fontData, alphabet)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "palette = %s\n", strconv.Quote(palette.String()))
			if verbose {
				rows := make([][]string, 0, len(coverage))
				for _, c := range coverage {
					rows = append(rows, []string{strconv.QuoteRune(c.Char), strconv.Itoa(c.Ink)})
				}
				fmt.Fprintln(out, renderTable([]string{"Char", "Ink"}, rows, 1))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fontPath, "font", "", "TrueType font file (default: Go Mono)")
	cmd.Flags().StringVar(&alphabet, "alphabet", defaultCalibrationAlphabet, "Characters to rank")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show per-character ink coverage")
	return cmd
}
