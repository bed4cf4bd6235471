package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"asciivid/internal/artifact"
	"asciivid/internal/logging"
	"asciivid/internal/media"
)

// ErrSessionFinished is returned when Play or Load is called on a session
// that already stopped or completed. Sessions play once.
var ErrSessionFinished = errors.New("playback: session finished")

// Renderer draws frames on an output device.
type Renderer interface {
	// Begin prepares the device, hiding the cursor.
	Begin() error
	// Draw replaces the visible frame.
	Draw(frame string) error
	// End restores the device. It is called exactly once per Play.
	End() error
}

// Result summarizes a playback run.
type Result struct {
	State    State
	Frames   int
	Total    int
	Late     int
	FPS      float64
	Interval time.Duration
	Elapsed  time.Duration
}

// FrameInterval computes the rate that spreads frames evenly over seconds.
func FrameInterval(frames int, seconds float64) (float64, time.Duration, error) {
	if frames <= 0 {
		return 0, 0, media.Wrap(media.ErrMalformedArtifact, "frame interval", "no frames", nil)
	}
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, 0, fmt.Errorf("frame interval: duration must be positive, got %v", seconds)
	}
	fps := float64(frames) / seconds
	interval := time.Duration(math.Round(float64(time.Second) / fps))
	return fps, interval, nil
}

// Option customizes a Session.
type Option func(*Session)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session plays one loaded frame set. It is not safe for concurrent use.
type Session struct {
	renderer Renderer
	clock    Clock
	logger   *slog.Logger

	state  State
	frames []string
}

// New returns an Idle session drawing to r.
func New(r Renderer, opts ...Option) *Session {
	s := &Session{
		renderer: r,
		clock:    SystemClock(),
		logger:   logging.NewNop(),
		state:    Idle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current lifecycle state.
func (s *Session) State() State { return s.state }

// Frames returns the number of loaded frames.
func (s *Session) Frames() int { return len(s.frames) }

// Load splits artifact text into frames and moves the session to Loaded.
func (s *Session) Load(text string, opts artifact.ReadOptions) error {
	frames, err := artifact.Split(text, opts)
	if err != nil {
		return err
	}
	return s.LoadFrames(frames)
}

// LoadFrames moves the session to Loaded with an already split frame set.
func (s *Session) LoadFrames(frames []string) error {
	if s.state.Terminal() {
		return fmt.Errorf("load: %w (%s)", ErrSessionFinished, s.state)
	}
	if s.state != Idle {
		return fmt.Errorf("playback: load in state %s", s.state)
	}
	if len(frames) == 0 {
		return media.Wrap(media.ErrMalformedArtifact, "load", "no frames", nil)
	}
	s.frames = frames
	s.state = Loaded
	return nil
}

// Play draws every frame, spacing them so the whole set spans seconds.
// Cancelling ctx stops playback between frames and yields State Stopped with
// a nil error.
func (s *Session) Play(ctx context.Context, seconds float64) (res Result, err error) {
	if s.state.Terminal() {
		return Result{State: s.state}, fmt.Errorf("play: %w (%s)", ErrSessionFinished, s.state)
	}
	if s.state != Loaded {
		return Result{State: s.state}, fmt.Errorf("playback: play in state %s", s.state)
	}
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Result{State: s.state}, fmt.Errorf("playback: duration must be positive, got %v", seconds)
	}
	logger := logging.WithContext(ctx, s.logger)

	s.state = Playing
	res.Total = len(s.frames)
	started := s.clock.Now()

	var once sync.Once
	restore := func() {
		once.Do(func() {
			if endErr := s.renderer.End(); endErr != nil {
				logger.Warn("terminal restore failed", logging.Error(endErr))
				if err == nil {
					err = fmt.Errorf("playback: restore terminal: %w", endErr)
				}
			}
		})
	}
	defer func() {
		restore()
		res.State = s.state
		res.Elapsed = s.clock.Now().Sub(started)
	}()

	if beginErr := s.renderer.Begin(); beginErr != nil {
		s.state = Stopped
		return res, fmt.Errorf("playback: prepare terminal: %w", beginErr)
	}

	fps, interval, intervalErr := FrameInterval(len(s.frames), seconds)
	if intervalErr != nil {
		s.state = Stopped
		return res, intervalErr
	}
	res.FPS, res.Interval = fps, interval
	logger.Debug("playback started",
		logging.Int("frames", res.Total),
		logging.Float64("fps", fps),
		logging.Duration("interval", interval),
	)

	for _, frame := range s.frames {
		if ctx.Err() != nil {
			s.state = Stopped
			return res, nil
		}
		frameStart := s.clock.Now()
		if drawErr := s.renderer.Draw(frame); drawErr != nil {
			s.state = Stopped
			return res, fmt.Errorf("playback: draw frame %d: %w", res.Frames, drawErr)
		}
		res.Frames++
		remaining := interval - s.clock.Now().Sub(frameStart)
		if remaining <= 0 {
			res.Late++
			continue
		}
		if sleepErr := s.clock.Sleep(ctx, remaining); sleepErr != nil {
			if errors.Is(sleepErr, context.Canceled) || errors.Is(sleepErr, context.DeadlineExceeded) {
				s.state = Stopped
				return res, nil
			}
			s.state = Stopped
			return res, fmt.Errorf("playback: wait: %w", sleepErr)
		}
	}

	s.state = Completed
	logger.Debug("playback completed", logging.Int("frames", res.Frames), logging.Int("late", res.Late))
	return res, nil
}
