package framesource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"

	"asciivid/internal/media"
	"asciivid/internal/media/ffprobe"
)

var probeVideo = ffprobe.Inspect

// SetProbeForTests swaps the ffprobe implementation and returns a restore func.
func SetProbeForTests(fn func(context.Context, string, string) (ffprobe.Result, error)) func() {
	prev := probeVideo
	probeVideo = fn
	return func() { probeVideo = prev }
}

type videoSource struct {
	info    Info
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	stderr  *bytes.Buffer
	cancel  context.CancelFunc
	frame   int
	done    bool
	closed  bool
	waitErr error
}

// OpenVideo probes path for its first video stream and starts an ffmpeg
// process emitting gray rawvideo frames on stdout.
func OpenVideo(ctx context.Context, path string, opts Options) (Source, error) {
	probe, err := probeVideo(ctx, opts.FFprobeBinary, path)
	if err != nil {
		return nil, media.Wrap(ErrSourceUnavailable, "probe", path, err)
	}
	stream, ok := probe.VideoStream()
	if !ok {
		return nil, media.Wrap(ErrSourceUnavailable, "probe", path+": no video stream", nil)
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, media.Wrap(ErrSourceUnavailable, "probe", fmt.Sprintf("%s: invalid geometry %dx%d", path, stream.Width, stream.Height), nil)
	}

	width, height := stream.DisplaySize()
	duration := stream.DurationSeconds()
	if duration == 0 {
		duration = probe.DurationSeconds()
	}
	info := Info{
		Width:      width,
		Height:     height,
		FPS:        stream.FrameRate(),
		FrameCount: stream.FrameCount(),
		Duration:   duration,
	}
	if info.FrameCount == 0 && info.FPS > 0 && duration > 0 {
		info.FrameCount = int(duration*info.FPS + 0.5)
	}

	binary := strings.TrimSpace(opts.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	args := []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-i", path,
		"-map", "0:v:0",
		"-f", "rawvideo", "-pix_fmt", "gray",
		"-",
	}
	procCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(procCtx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, media.Wrap(ErrSourceUnavailable, "ffmpeg", "stdout pipe", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, media.Wrap(ErrSourceUnavailable, "ffmpeg", "start "+binary, err)
	}
	return &videoSource{info: info, cmd: cmd, stdout: stdout, stderr: stderr, cancel: cancel}, nil
}

func (s *videoSource) Info() Info { return s.info }

func (s *videoSource) Next(ctx context.Context) (image.Image, error) {
	if s.done || s.closed {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	frame := image.NewGray(image.Rect(0, 0, s.info.Width, s.info.Height))
	n, err := io.ReadFull(s.stdout, frame.Pix)
	switch {
	case err == nil:
		s.frame++
		return frame, nil
	case errors.Is(err, io.EOF):
		s.done = true
		if waitErr := s.wait(); waitErr != nil {
			return nil, waitErr
		}
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.done = true
		if waitErr := s.wait(); waitErr != nil {
			return nil, waitErr
		}
		return nil, media.Wrap(ErrInvalidFrame, "ffmpeg", fmt.Sprintf("frame %d truncated at %d of %d bytes", s.frame, n, len(frame.Pix)), nil)
	default:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("ffmpeg read: %w", err)
	}
}

func (s *videoSource) wait() error {
	if s.cmd == nil {
		return nil
	}
	err := s.cmd.Wait()
	s.cmd = nil
	if err == nil {
		return nil
	}
	detail := strings.TrimSpace(s.stderr.String())
	if s.frame == 0 {
		s.waitErr = media.Wrap(ErrSourceUnavailable, "ffmpeg decode", detail, err)
	} else {
		s.waitErr = fmt.Errorf("ffmpeg decode: %w: %s", err, detail)
	}
	return s.waitErr
}

// Close stops ffmpeg if it is still running and reaps the process.
func (s *videoSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cmd != nil {
		s.cancel()
		_ = s.cmd.Wait()
		s.cmd = nil
	}
	s.cancel()
	return nil
}
