package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"asciivid/internal/blend"
	"asciivid/internal/catalog"
	"asciivid/internal/config"
	"asciivid/internal/contrast"
	"asciivid/internal/encoder"
	"asciivid/internal/framesource"
	"asciivid/internal/logging"
	"asciivid/internal/media"
	"asciivid/internal/preflight"
	"asciivid/internal/terminal"
)

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var (
		output string
		width  int
	)

	cmd := &cobra.Command{
		Use:   "encode <input>",
		Short: "Convert a video file or image directory into an ASCII artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input := strings.TrimSpace(args[0])
			target := strings.TrimSpace(output)
			if target == "" {
				target = defaultArtifactPath
			}
			frameWidth, err := resolveWidth(cfg, width, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			runCtx, logger, err := ctx.session(cmd, "encoder")
			if err != nil {
				return err
			}
			if err := checkDecoder(runCtx, cfg, input); err != nil {
				return err
			}

			enc, err := encoder.New(encoderOptions(cfg, frameWidth),
				encoder.WithLogger(logger),
				encoder.WithProgress(encodeProgress(cmd.ErrOrStderr())),
			)
			if err != nil {
				return err
			}
			result, err := enc.EncodeFile(runCtx, input, target)
			if err != nil {
				return err
			}
			recordEncode(runCtx, cfg, logger, result)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Encoded %d frames (%dx%d) to %s\n", result.Frames, result.Width, result.Height, result.Artifact)
			if result.Skipped > 0 {
				fmt.Fprintf(out, "Skipped %d invalid frames\n", result.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Artifact path (default "+defaultArtifactPath+")")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "Frame width in characters (default: encode.width or terminal width)")
	return cmd
}

// resolveWidth applies flag, then config, then terminal size.
func resolveWidth(cfg *config.Config, flagWidth int, out io.Writer) (int, error) {
	maxWidth := cfg.Encode.MaxWidth
	switch {
	case flagWidth < 0:
		return 0, fmt.Errorf("--width must be positive, got %d", flagWidth)
	case flagWidth > 0:
		if maxWidth > 0 && flagWidth > maxWidth {
			return 0, fmt.Errorf("--width %d exceeds encode.max_width %d", flagWidth, maxWidth)
		}
		return flagWidth, nil
	case cfg.Encode.Width > 0:
		return cfg.Encode.Width, nil
	}
	return terminal.AutoWidth(out, maxWidth, config.FallbackWidth), nil
}

func encoderOptions(cfg *config.Config, width int) encoder.Options {
	return encoder.Options{
		Width:     width,
		Palette:   cfg.Palette(),
		Separator: cfg.Separator(),
		Contrast: contrast.Options{
			ClipLimit: cfg.Contrast.ClipLimit,
			TileCols:  cfg.Contrast.TileCols,
			TileRows:  cfg.Contrast.TileRows,
		},
		Blend: blend.Options{
			Window: cfg.Blend.Window,
			Alpha:  cfg.Blend.Alpha,
		},
		SkipInvalidFrames: cfg.Encode.SkipInvalidFrames,
		Source: framesource.Options{
			FFmpegBinary:  cfg.Media.FFmpegBinary,
			FFprobeBinary: cfg.Media.FFprobeBinary,
			SequenceFPS:   cfg.Encode.SequenceFPS,
		},
	}
}

// checkDecoder confirms ffmpeg and ffprobe run before a video is opened.
// Image directories decode in-process and skip the check.
func checkDecoder(ctx context.Context, cfg *config.Config, input string) error {
	if info, err := os.Stat(input); err == nil && info.IsDir() {
		return nil
	}
	for _, result := range []preflight.Result{
		preflight.CheckBinary(ctx, "ffmpeg", cfg.Media.FFmpegBinary),
		preflight.CheckBinary(ctx, "ffprobe", cfg.Media.FFprobeBinary),
	} {
		if !result.Passed {
			return media.Wrap(media.ErrSourceUnavailable, "decoder check", result.Name+": "+result.Detail, nil)
		}
	}
	return nil
}

// catalogKey is the artifact path as stored in the catalog.
func catalogKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func recordEncode(ctx context.Context, cfg *config.Config, logger *slog.Logger, result encoder.FileResult) {
	if !cfg.Catalog.Enabled {
		return
	}
	store, err := catalog.Open(ctx, cfg.CatalogPath())
	if err == nil {
		defer store.Close()
		_, err = store.Record(ctx, catalog.Entry{
			SessionID: result.SessionID,
			Input:     result.Input,
			Artifact:  catalogKey(result.Artifact),
			Frames:    result.Frames,
			Skipped:   result.Skipped,
			Width:     result.Width,
			Height:    result.Height,
			SourceFPS: result.Source.FPS,
			Elapsed:   result.Elapsed,
			CreatedAt: result.CreatedAt,
		})
	}
	if err != nil {
		logging.WarnWithContext(ctx, logger, "encode not recorded in catalog", "catalog_write_failed",
			logging.String("path", cfg.CatalogPath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "history omits this encode"),
		)
	}
}
