package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"asciivid/internal/artifact"
	"asciivid/internal/logging"
	"asciivid/internal/playback"
	"asciivid/internal/terminal"
)

type readFlags struct {
	width     int
	separator string
}

func (f *readFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.width, "width", "w", 0, "Frame width used when the artifact has no sidecar")
	cmd.Flags().StringVar(&f.separator, "separator", "", "Separator character (default: sidecar value or ~)")
}

func (f *readFlags) options() (artifact.ReadOptions, error) {
	opts := artifact.ReadOptions{Width: f.width}
	if f.width < 0 {
		return opts, fmt.Errorf("--width must be positive, got %d", f.width)
	}
	if f.separator != "" {
		sep, err := artifact.ParseSeparator(f.separator)
		if err != nil {
			return opts, fmt.Errorf("--separator: %w", err)
		}
		opts.Separator = sep
	}
	return opts, nil
}

func artifactArg(args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0])
	}
	return defaultArtifactPath
}

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var (
		read        readFlags
		duration    float64
		matchSource bool
		noClear     bool
	)

	cmd := &cobra.Command{
		Use:   "play [artifact]",
		Short: "Play an ASCII artifact in the terminal",
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
			runCtx, logger, err := ctx.session(cmd, "playback")
			if err != nil {
				return err
			}

			doc, err := artifact.Load(artifactArg(args), opts)
			if err != nil {
				return err
			}
			if doc.CountMismatch() {
				logging.WarnWithContext(runCtx, logger, "artifact frame count differs from sidecar", "frame_count_mismatch",
					logging.String("artifact", doc.Path),
					logging.Int("frames", len(doc.Frames)),
					logging.Int("sidecar_frames", doc.Metadata.FrameCount),
					logging.String(logging.FieldImpact, "playback uses the frames found in the artifact"),
				)
			}

			seconds := cfg.Playback.DurationSeconds
			switch {
			case cmd.Flags().Changed("duration"):
				seconds = duration
			case matchSource:
				if doc.Metadata == nil || doc.Metadata.SourceDuration() <= 0 {
					return fmt.Errorf("--match-source: %s has no source timing in its sidecar", doc.Path)
				}
				seconds = doc.Metadata.SourceDuration()
			}

			fps, _, err := playback.FrameInterval(len(doc.Frames), seconds)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total frames: %d\n", len(doc.Frames))
			fmt.Fprintf(out, "FPS: %.2f\n", fps)

			renderer := terminal.NewRenderer(out, terminal.RendererOptions{
				ClearScreen: cfg.Playback.ClearScreen && !noClear,
			})
			session := playback.New(renderer, playback.WithLogger(logger))
			if err := session.LoadFrames(doc.Frames); err != nil {
				return err
			}
			res, err := session.Play(runCtx, seconds)
			if err != nil {
				return err
			}
			if res.State == playback.Stopped {
				fmt.Fprintln(out, "Playback stopped.")
				return nil
			}
			logger.Info("playback finished",
				logging.Int("frames", res.Frames),
				logging.Int("late_frames", res.Late),
				logging.Duration("elapsed", res.Elapsed),
			)
			return nil
		},
	}

	read.register(cmd)
	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "Playback duration in seconds (default: playback.duration_seconds)")
	cmd.Flags().BoolVar(&matchSource, "match-source", false, "Play at the source video's original duration")
	cmd.Flags().BoolVar(&noClear, "no-clear", false, "Do not clear the screen before the first frame")
	return cmd
}
