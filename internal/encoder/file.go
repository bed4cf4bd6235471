package encoder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asciivid/internal/artifact"
	"asciivid/internal/logging"
	"asciivid/internal/media"
)

// FileResult describes an artifact written by EncodeFile.
type FileResult struct {
	Summary
	Input        string
	Artifact     string
	MetadataPath string
	SessionID    string
	CreatedAt    time.Time
}

// EncodeFile encodes input into the artifact at output. The source is opened
// before anything touches output, so an unavailable source leaves no file
// behind.
func (e *Encoder) EncodeFile(ctx context.Context, input, output string) (FileResult, error) {
	result := FileResult{Input: input, Artifact: output}
	result.SessionID, _ = logging.SessionIDFromContext(ctx)
	logger := logging.WithContext(ctx, e.logger)

	src, err := e.open(ctx, input)
	if err != nil {
		if !errors.Is(err, media.ErrSourceUnavailable) {
			err = media.Wrap(media.ErrSourceUnavailable, "open source", input, err)
		}
		return result, err
	}
	defer src.Close()

	info := src.Info()
	logger.Info("encode started",
		logging.String("input", input),
		logging.String("artifact", output),
		logging.Int("source_width", info.Width),
		logging.Int("source_height", info.Height),
		logging.Float64("source_fps", info.FPS),
		logging.Int("source_frames", info.FrameCount),
		logging.Int("width", e.opts.Width),
	)

	file, err := artifact.Create(output)
	if err != nil {
		return result, err
	}
	committed := false
	defer func() {
		if !committed {
			if abortErr := file.Abort(); abortErr != nil {
				logger.Warn("discard partial artifact failed", logging.Error(abortErr))
			}
		}
	}()

	writer, err := artifact.NewWriter(file.Writer(), e.opts.Width, e.opts.Separator)
	if err != nil {
		return result, err
	}
	summary, err := e.Encode(ctx, src, writer)
	result.Summary = summary
	if err != nil {
		if errors.Is(err, ErrNoFrames) {
			return result, fmt.Errorf("encode %s: %w", input, err)
		}
		return result, err
	}
	if err := file.Commit(); err != nil {
		return result, err
	}
	committed = true

	result.CreatedAt = e.now().UTC()
	meta := artifact.Metadata{
		SessionID:  result.SessionID,
		CreatedAt:  result.CreatedAt,
		Width:      summary.Width,
		Height:     summary.Height,
		FrameCount: summary.Frames,
		Separator:  string(e.opts.Separator),
		Palette:    e.opts.Palette.String(),
		Source: artifact.Source{
			Path:       input,
			FPS:        info.FPS,
			FrameCount: info.FrameCount,
			Duration:   info.Duration,
			Skipped:    summary.Skipped,
		},
	}
	if err := artifact.WriteMetadata(output, meta); err != nil {
		logging.WarnWithContext(ctx, logger, "metadata sidecar not written", "metadata_write_failed",
			logging.String("path", artifact.MetadataPath(output)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "playback falls back to inferring width and the default separator"),
		)
	} else {
		result.MetadataPath = artifact.MetadataPath(output)
	}

	logger.Info("encode complete",
		logging.String("artifact", output),
		logging.Int("frames", summary.Frames),
		logging.Int("skipped", summary.Skipped),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return result, nil
}
