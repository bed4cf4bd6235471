package playback

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"asciivid/internal/artifact"
	"asciivid/internal/media"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
	// onSleep runs before each sleep returns; returning an error aborts it.
	onSleep func(n int) error
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	if c.onSleep != nil {
		if err := c.onSleep(len(c.sleeps)); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	return nil
}

type fakeRenderer struct {
	clock   *fakeClock
	costs   []time.Duration
	drawn   []string
	begins  int
	ends    int
	drawErr error
	failAt  int
}

func (r *fakeRenderer) Begin() error { r.begins++; return nil }

func (r *fakeRenderer) Draw(frame string) error {
	i := len(r.drawn)
	if r.drawErr != nil && i == r.failAt {
		return r.drawErr
	}
	r.drawn = append(r.drawn, frame)
	if i < len(r.costs) {
		r.clock.now = r.clock.now.Add(r.costs[i])
	}
	return nil
}

func (r *fakeRenderer) End() error { r.ends++; return nil }

func loaded(t *testing.T, r Renderer, clock Clock, frames ...string) *Session {
	t.Helper()
	s := New(r, WithClock(clock))
	if s.State() != Idle {
		t.Fatalf("new session should be idle, got %s", s.State())
	}
	if err := s.LoadFrames(frames); err != nil {
		t.Fatalf("LoadFrames: %v", err)
	}
	if s.State() != Loaded {
		t.Fatalf("expected loaded state, got %s", s.State())
	}
	return s
}

func TestFrameInterval(t *testing.T) {
	fps, interval, err := FrameInterval(450, 15)
	if err != nil {
		t.Fatalf("FrameInterval: %v", err)
	}
	if fps != 30 {
		t.Fatalf("expected 30 fps, got %v", fps)
	}
	if math.Abs(interval.Seconds()-1.0/30) > 1e-6 {
		t.Fatalf("expected ~33.3ms, got %v", interval)
	}
	if _, _, err := FrameInterval(0, 15); !errors.Is(err, media.ErrMalformedArtifact) {
		t.Fatalf("expected ErrMalformedArtifact for no frames, got %v", err)
	}
	if _, _, err := FrameInterval(10, 0); err == nil {
		t.Fatal("expected error for zero duration")
	}
}

func TestPlayCompletesAndSleepsRemainder(t *testing.T) {
	clock := newFakeClock()
	r := &fakeRenderer{clock: clock, costs: []time.Duration{10 * time.Millisecond, 0, 5 * time.Millisecond}}
	s := loaded(t, r, clock, "a", "b", "c")

	res, err := s.Play(context.Background(), 0.3)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.State != Completed || s.State() != Completed {
		t.Fatalf("expected completed, got %s", res.State)
	}
	if res.Frames != 3 || res.Total != 3 || res.Late != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	want := []time.Duration{90 * time.Millisecond, 100 * time.Millisecond, 95 * time.Millisecond}
	if len(clock.sleeps) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), clock.sleeps)
	}
	for i := range want {
		if clock.sleeps[i] != want[i] {
			t.Fatalf("sleep %d = %v, want %v", i, clock.sleeps[i], want[i])
		}
	}
	if res.Elapsed != 300*time.Millisecond {
		t.Fatalf("expected 300ms elapsed, got %v", res.Elapsed)
	}
	if r.begins != 1 || r.ends != 1 {
		t.Fatalf("expected one begin and one end, got %d/%d", r.begins, r.ends)
	}
}

func TestPlayNeverSkipsLateFrames(t *testing.T) {
	clock := newFakeClock()
	r := &fakeRenderer{clock: clock, costs: []time.Duration{250 * time.Millisecond, 10 * time.Millisecond, 300 * time.Millisecond, 0}}
	s := loaded(t, r, clock, "1", "2", "3", "4")

	res, err := s.Play(context.Background(), 0.4)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(r.drawn) != 4 || r.drawn[0] != "1" || r.drawn[3] != "4" {
		t.Fatalf("every frame must be drawn in order, got %v", r.drawn)
	}
	if res.Late != 2 {
		t.Fatalf("expected 2 late frames, got %d", res.Late)
	}
	if len(clock.sleeps) != 2 || clock.sleeps[0] != 90*time.Millisecond || clock.sleeps[1] != 100*time.Millisecond {
		t.Fatalf("late frames must not sleep or catch up, got %v", clock.sleeps)
	}
}

func TestPlayInterruptRestoresOnce(t *testing.T) {
	clock := newFakeClock()
	r := &fakeRenderer{clock: clock}
	s := loaded(t, r, clock, "a", "b", "c", "d")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.onSleep = func(n int) error {
		if n == 2 {
			cancel()
		}
		return nil
	}

	res, err := s.Play(ctx, 1)
	if err != nil {
		t.Fatalf("interrupted playback is not an error, got %v", err)
	}
	if res.State != Stopped {
		t.Fatalf("expected stopped, got %s", res.State)
	}
	if res.Frames != 2 || len(r.drawn) != 2 {
		t.Fatalf("expected 2 frames before stop, got %d", res.Frames)
	}
	if r.ends != 1 {
		t.Fatalf("expected cursor restore exactly once, got %d", r.ends)
	}
}

func TestPlayCancelledBeforeFirstFrame(t *testing.T) {
	clock := newFakeClock()
	r := &fakeRenderer{clock: clock}
	s := loaded(t, r, clock, "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Play(ctx, 1)
	if err != nil || res.State != Stopped || len(r.drawn) != 0 || r.ends != 1 {
		t.Fatalf("unexpected outcome res=%+v err=%v drawn=%d ends=%d", res, err, len(r.drawn), r.ends)
	}
}

func TestPlayEmptyFramesAfterLoadedRestoresOnce(t *testing.T) {
	clock := newFakeClock()
	r := &fakeRenderer{clock: clock}
	s := New(r, WithClock(clock))
	s.state = Loaded

	res, err := s.Play(context.Background(), 15)
	if !errors.Is(err, media.ErrMalformedArtifact) {
		t.Fatalf("expected ErrMalformedArtifact, got %v", err)
	}
	if res.State != Stopped {
		t.Fatalf("expected stopped, got %s", res.State)
	}
	if r.begins != 1 || r.ends != 1 {
		t.Fatalf("expected cursor hidden and restored once, got %d/%d", r.begins, r.ends)
	}
}

func TestPlayDrawErrorRestoresOnce(t *testing.T) {
	clock := newFakeClock()
	r := &fakeRenderer{clock: clock, drawErr: errors.New("broken pipe"), failAt: 1}
	s := loaded(t, r, clock, "a", "b", "c")

	res, err := s.Play(context.Background(), 3)
	if err == nil {
		t.Fatal("expected draw error")
	}
	if res.Frames != 1 || r.ends != 1 || res.State != Stopped {
		t.Fatalf("unexpected outcome %+v ends=%d", res, r.ends)
	}
}

func TestStateGuards(t *testing.T) {
	clock := newFakeClock()
	r := &fakeRenderer{clock: clock}
	s := New(r, WithClock(clock))
	if _, err := s.Play(context.Background(), 1); err == nil {
		t.Fatal("play from idle must fail")
	}
	if r.begins != 0 || r.ends != 0 {
		t.Fatal("renderer must not be touched outside Playing")
	}
	if err := s.LoadFrames(nil); !errors.Is(err, media.ErrMalformedArtifact) {
		t.Fatalf("expected ErrMalformedArtifact, got %v", err)
	}
	if err := s.Load("ab\n~~\n", artifact.ReadOptions{}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.LoadFrames([]string{"x"}); err == nil {
		t.Fatal("second load must fail")
	}
	if _, err := s.Play(context.Background(), -1); err == nil {
		t.Fatal("negative duration must fail")
	}
	if s.State() != Loaded {
		t.Fatalf("rejected play must keep loaded state, got %s", s.State())
	}
	if _, err := s.Play(context.Background(), 1); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if _, err := s.Play(context.Background(), 1); !errors.Is(err, ErrSessionFinished) {
		t.Fatalf("replay of a finished session: expected ErrSessionFinished, got %v", err)
	}
	if err := s.LoadFrames([]string{"x"}); !errors.Is(err, ErrSessionFinished) {
		t.Fatalf("reload of a finished session: expected ErrSessionFinished, got %v", err)
	}
	if r.ends != 1 {
		t.Fatalf("expected one restore, got %d", r.ends)
	}
}

func TestLoadMalformedText(t *testing.T) {
	s := New(&fakeRenderer{clock: newFakeClock()})
	if err := s.Load("", artifact.ReadOptions{}); !errors.Is(err, media.ErrMalformedArtifact) {
		t.Fatalf("expected ErrMalformedArtifact, got %v", err)
	}
	if s.State() != Idle {
		t.Fatalf("failed load must stay idle, got %s", s.State())
	}
}

func TestSystemClockSleepCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SystemClock().Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := SystemClock().Sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
}

func TestStateStrings(t *testing.T) {
	for state, want := range map[State]string{Idle: "idle", Loaded: "loaded", Playing: "playing", Stopped: "stopped", Completed: "completed", State(42): "unknown"} {
		if state.String() != want {
			t.Fatalf("%d.String() = %q, want %q", state, state.String(), want)
		}
	}
	if !Completed.Terminal() || Playing.Terminal() {
		t.Fatal("unexpected Terminal results")
	}
}
