package encoder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"asciivid/internal/artifact"
	"asciivid/internal/blend"
	"asciivid/internal/charmap"
	"asciivid/internal/contrast"
	"asciivid/internal/framesource"
	"asciivid/internal/logging"
	"asciivid/internal/media"
)

// ErrNoFrames is returned when a source ends before yielding a usable frame.
var ErrNoFrames = errors.New("source produced no frames")

// Options configures an Encoder.
type Options struct {
	Width             int
	Palette           charmap.Palette
	Separator         rune
	Contrast          contrast.Options
	Blend             blend.Options
	SkipInvalidFrames bool
	Source            framesource.Options
}

// Progress observes frame throughput. total is 0 when the source does not
// declare a frame count.
type Progress interface {
	Start(total int)
	Advance(done int)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int)   {}
func (nopProgress) Advance(int) {}
func (nopProgress) Finish()     {}

// Opener opens the frame source for a path.
type Opener func(ctx context.Context, path string) (framesource.Source, error)

// Option customizes an Encoder.
type Option func(*Encoder)

// WithLogger sets the encoder logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProgress sets the progress observer.
func WithProgress(p Progress) Option {
	return func(e *Encoder) {
		if p != nil {
			e.progress = p
		}
	}
}

// WithOpener replaces the frame source opener used by EncodeFile.
func WithOpener(open Opener) Option {
	return func(e *Encoder) {
		if open != nil {
			e.open = open
		}
	}
}

// WithClock replaces time.Now for elapsed-time reporting.
func WithClock(now func() time.Time) Option {
	return func(e *Encoder) {
		if now != nil {
			e.now = now
		}
	}
}

// Summary describes a finished encode.
type Summary struct {
	Frames  int
	Skipped int
	Width   int
	Height  int
	Source  framesource.Info
	Elapsed time.Duration
}

// Encoder converts frame sources into text artifacts.
type Encoder struct {
	opts       Options
	normalizer *contrast.Normalizer
	blender    *blend.Blender
	mapper     *charmap.Mapper
	logger     *slog.Logger
	progress   Progress
	open       Opener
	now        func() time.Time
}

// New validates opts and builds an Encoder.
func New(opts Options, options ...Option) (*Encoder, error) {
	if opts.Width <= 0 {
		return nil, fmt.Errorf("encoder: width must be positive, got %d", opts.Width)
	}
	if len(opts.Palette) == 0 {
		opts.Palette = charmap.Default()
	}
	if opts.Separator == 0 {
		opts.Separator = artifact.DefaultSeparator
	}
	if err := artifact.ValidateSeparator(opts.Separator); err != nil {
		return nil, fmt.Errorf("encoder: %w", err)
	}
	if opts.Palette.Contains(opts.Separator) {
		return nil, fmt.Errorf("encoder: separator %q is a palette character: %w", opts.Separator, artifact.ErrSeparatorCollision)
	}
	mapper, err := charmap.NewMapper(opts.Palette)
	if err != nil {
		return nil, fmt.Errorf("encoder: %w", err)
	}

	e := &Encoder{
		opts:       opts,
		normalizer: contrast.New(opts.Contrast),
		blender:    blend.New(opts.Blend),
		mapper:     mapper,
		logger:     logging.NewNop(),
		progress:   nopProgress{},
		now:        time.Now,
	}
	sourceOpts := opts.Source
	e.open = func(ctx context.Context, path string) (framesource.Source, error) {
		return framesource.Open(ctx, path, sourceOpts)
	}
	for _, opt := range options {
		opt(e)
	}
	return e, nil
}

// Encode reads src to exhaustion and writes one text frame per usable frame.
// The caller owns src and w; Encode flushes w before returning successfully.
func (e *Encoder) Encode(ctx context.Context, src framesource.Source, w *artifact.Writer) (Summary, error) {
	info := src.Info()
	summary := Summary{Width: e.opts.Width, Source: info}
	if info.Width > 0 && info.Height > 0 {
		summary.Height = charmap.OutputHeight(info.Width, info.Height, e.opts.Width)
	}
	logger := logging.WithContext(ctx, e.logger)
	start := e.now()

	sampler := logging.NewProgressSampler(5)
	e.progress.Start(info.FrameCount)
	defer e.progress.Finish()

	var state blend.State
	var geometry image.Point
	if info.Width > 0 && info.Height > 0 {
		geometry = image.Pt(info.Width, info.Height)
	}
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		raw, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		index := processed + summary.Skipped
		if err == nil {
			err = matchGeometry(&geometry, raw)
		}
		if err == nil {
			var text string
			text, state, err = e.frame(raw, state)
			if err == nil {
				if err := w.WriteFrame(text); err != nil {
					return summary, fmt.Errorf("encode frame %d: %w", index, err)
				}
				processed++
				summary.Frames = processed
				if summary.Height == 0 {
					summary.Height = charmap.OutputHeight(raw.Bounds().Dx(), raw.Bounds().Dy(), e.opts.Width)
				}
				e.progress.Advance(processed)
				e.logProgress(ctx, logger, sampler, processed, info.FrameCount)
				continue
			}
		}
		if errors.Is(err, media.ErrInvalidFrame) && e.opts.SkipInvalidFrames {
			summary.Skipped++
			logging.WarnWithContext(ctx, logger, "frame skipped", "invalid_frame",
				logging.Int("frame", index),
				logging.Error(err),
				logging.String(logging.FieldImpact, "frame omitted from artifact"),
				logging.String(logging.FieldErrorHint, "re-encode the source or set encode.skip_invalid_frames = false to fail instead"),
			)
			continue
		}
		if errors.Is(err, media.ErrInvalidFrame) {
			return summary, fmt.Errorf("encode frame %d: %w", index, err)
		}
		return summary, err
	}

	if processed == 0 {
		return summary, ErrNoFrames
	}
	if err := w.Flush(); err != nil {
		return summary, err
	}
	summary.Elapsed = e.now().Sub(start)
	logger.Info("frames encoded",
		logging.Int("frames", summary.Frames),
		logging.Int("skipped", summary.Skipped),
		logging.Int("width", summary.Width),
		logging.Int("height", summary.Height),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// matchGeometry pins the frame size to the source geometry, or to the first
// frame when the source reports none. Every frame in an artifact has the
// same row count.
func matchGeometry(want *image.Point, raw image.Image) error {
	got := raw.Bounds().Size()
	if got.X <= 0 || got.Y <= 0 {
		return media.Wrap(media.ErrInvalidFrame, "geometry", "empty frame", nil)
	}
	if *want == (image.Point{}) {
		*want = got
		return nil
	}
	if got != *want {
		return media.Wrap(media.ErrInvalidFrame, "geometry",
			fmt.Sprintf("frame is %dx%d, source is %dx%d", got.X, got.Y, want.X, want.Y), nil)
	}
	return nil
}

// frame runs one raw frame through normalize, blend and map. On error the
// blend state is returned unchanged.
func (e *Encoder) frame(raw image.Image, state blend.State) (string, blend.State, error) {
	normalized, err := e.normalizer.Normalize(raw)
	if err != nil {
		return "", state, err
	}
	blended, next := e.blender.Blend(state, normalized)
	text, err := e.mapper.Map(blended, e.opts.Width)
	if err != nil {
		return "", state, err
	}
	return text, next, nil
}

func (e *Encoder) logProgress(ctx context.Context, logger *slog.Logger, sampler *logging.ProgressSampler, done, total int) {
	percent := -1.0
	if total > 0 {
		percent = float64(done) * 100 / float64(total)
	}
	if !sampler.ShouldLog(percent, "encode") {
		return
	}
	attrs := []logging.Attr{logging.Int("frames", done)}
	if total > 0 {
		attrs = append(attrs, logging.Int("total", total), logging.Float64(logging.FieldProgressPercent, float64(int(percent*10))/10))
	}
	logger.InfoContext(ctx, "encode progress", logging.Args(attrs...)...)
}
