package framesource

import (
	"context"
	"image"
	"os"
	"strings"

	"asciivid/internal/media"
)

// Exported aliases so callers can classify errors without importing media.
var (
	ErrSourceUnavailable = media.ErrSourceUnavailable
	ErrInvalidFrame      = media.ErrInvalidFrame
)

// Info describes the stream a source produces. FPS and FrameCount are zero
// when the container does not declare them.
type Info struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	Duration   float64
}

// Source produces raw frames in stream order.
type Source interface {
	Info() Info
	Next(ctx context.Context) (image.Image, error)
	Close() error
}

// Options configures Open.
type Options struct {
	FFmpegBinary  string
	FFprobeBinary string
	// SequenceFPS is the playback rate assigned to image sequences.
	SequenceFPS float64
}

const defaultSequenceFPS = 30

// Open returns an image-sequence source for directories and an ffmpeg source
// for everything else. Failures are tagged with ErrSourceUnavailable.
func Open(ctx context.Context, path string, opts Options) (Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, media.Wrap(ErrSourceUnavailable, "open source", "empty path", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, media.Wrap(ErrSourceUnavailable, "open source", path, err)
	}
	if info.IsDir() {
		return OpenSequence(path, opts.SequenceFPS)
	}
	return OpenVideo(ctx, path, opts)
}
