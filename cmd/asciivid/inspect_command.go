package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"asciivid/internal/artifact"
	"asciivid/internal/catalog"
	"asciivid/internal/config"
	"asciivid/internal/playback"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var (
		read     readFlags
		duration float64
	)

	cmd := &cobra.Command{
		Use:   "inspect [artifact]",
		Short: "Show frame count, geometry and timing of an artifact",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := read.options()
			if err != nil {
				return err
			}
			doc, err := artifact.Load(artifactArg(args), opts)
			if err != nil {
				return err
			}
			seconds := cfg.Playback.DurationSeconds
			if cmd.Flags().Changed("duration") {
				seconds = duration
			}
			fps, interval, err := playback.FrameInterval(len(doc.Frames), seconds)
			if err != nil {
				return err
			}

			fields := []field{
				{"Artifact", doc.Path},
				{"Frames", strconv.Itoa(len(doc.Frames))},
				{"Geometry", fmt.Sprintf("%dx%d", doc.Width, doc.Height)},
				{"Separator", strconv.QuoteRune(doc.Separator)},
				{"Duration", fmt.Sprintf("%.2fs", seconds)},
				{"FPS", fmt.Sprintf("%.2f", fps)},
				{"Frame interval", interval.Round(time.Microsecond).String()},
			}
			fields = append(fields, metadataFields(doc)...)
			fields = append(fields, catalogFields(cmd.Context(), cfg, doc.Path)...)
			fmt.Fprintln(cmd.OutOrStdout(), renderFields(fields))
			return nil
		},
	}

	read.register(cmd)
	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "Duration used for the timing rows (default: playback.duration_seconds)")
	return cmd
}

func metadataFields(doc artifact.Document) []field {
	meta := doc.Metadata
	if meta == nil {
		return []field{{"Sidecar", "none"}}
	}
	fields := []field{
		{"Sidecar", artifact.MetadataPath(doc.Path)},
		{"Session", meta.SessionID},
		{"Created", meta.CreatedAt.Local().Format(time.RFC3339)},
		{"Palette", strconv.Quote(meta.Palette)},
		{"Source", meta.Source.Path},
		{"Source FPS", fmt.Sprintf("%.3f", meta.Source.FPS)},
		{"Source duration", fmt.Sprintf("%.2fs", meta.SourceDuration())},
		{"Skipped frames", strconv.Itoa(meta.Source.Skipped)},
	}
	if doc.CountMismatch() {
		fields = append(fields, field{"Frame count", fmt.Sprintf("sidecar lists %d, artifact has %d", meta.FrameCount, len(doc.Frames))})
	}
	return fields
}

// catalogFields describes the most recent recorded encode of path. The
// catalog is only read when it already exists.
func catalogFields(ctx context.Context, cfg *config.Config, path string) []field {
	if !cfg.Catalog.Enabled {
		return nil
	}
	if _, err := os.Stat(cfg.CatalogPath()); err != nil {
		return []field{{"Last encode", "not recorded"}}
	}
	store, err := catalog.Open(ctx, cfg.CatalogPath())
	if err != nil {
		return []field{{"Last encode", "catalog unavailable: " + err.Error()}}
	}
	defer store.Close()

	entry, found, err := store.Latest(ctx, catalogKey(path))
	switch {
	case err != nil:
		return []field{{"Last encode", "catalog unavailable: " + err.Error()}}
	case !found:
		return []field{{"Last encode", "not recorded"}}
	}
	return []field{
		{"Last encode", fmt.Sprintf("#%d at %s", entry.ID, entry.CreatedAt.Local().Format(time.RFC3339))},
		{"Encode session", entry.SessionID},
		{"Encode elapsed", entry.Elapsed.Round(10 * time.Millisecond).String()},
		{"Encode skipped", strconv.Itoa(entry.Skipped)},
	}
}
