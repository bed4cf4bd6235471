// Package blend smooths the opening frames of a stream against their
// predecessors.
//
// Many sources settle exposure over their first few frames. Blending each of
// those frames with the previous output hides the flicker without touching the
// steady-state stream: past the window every frame passes through unchanged.
// State is an explicit value owned by one encoding session.
package blend

import (
	"image"
	"math"
)

const (
	// DefaultWindow is the last frame index that is still blended.
	DefaultWindow = 5
	// DefaultAlpha is the weight of the current frame.
	DefaultAlpha = 0.8
)

// Options configures the blend window and weight.
type Options struct {
	Window int
	Alpha  float64
}

// DefaultOptions returns a window of 5 frames with alpha 0.8.
func DefaultOptions() Options {
	return Options{Window: DefaultWindow, Alpha: DefaultAlpha}
}

// State carries the previous output frame and the index of the next frame.
type State struct {
	Previous *image.Gray
	Index    int
}

// Blender applies Options to successive frames.
type Blender struct {
	opts Options
}

// New returns a Blender. Alpha is clamped into [0,1].
func New(opts Options) *Blender {
	opts.Alpha = math.Min(math.Max(opts.Alpha, 0), 1)
	return &Blender{opts: opts}
}

// Options reports the effective settings.
func (b *Blender) Options() Options {
	return b.opts
}

// Blend returns the frame to emit for current and the state for the next
// call. Within the window, and when a previous frame of the same size exists,
// the result is alpha*current + (1-alpha)*previous rounded to the nearest
// level; otherwise current is returned as is.
func (b *Blender) Blend(state State, current *image.Gray) (*image.Gray, State) {
	out := current
	if state.Index <= b.opts.Window && sameSize(state.Previous, current) {
		out = b.mix(current, state.Previous)
	}
	return out, State{Previous: out, Index: state.Index + 1}
}

func (b *Blender) mix(current, previous *image.Gray) *image.Gray {
	cb, pb := current.Bounds(), previous.Bounds()
	w, h := cb.Dx(), cb.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	alpha := b.opts.Alpha
	for y := 0; y < h; y++ {
		cur := current.Pix[current.PixOffset(cb.Min.X, cb.Min.Y+y):]
		prev := previous.Pix[previous.PixOffset(pb.Min.X, pb.Min.Y+y):]
		row := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := range row {
			v := math.RoundToEven(alpha*float64(cur[x]) + (1-alpha)*float64(prev[x]))
			row[x] = uint8(math.Min(math.Max(v, 0), 255))
		}
	}
	return out
}

func sameSize(previous, current *image.Gray) bool {
	if previous == nil || current == nil {
		return false
	}
	return previous.Bounds().Size() == current.Bounds().Size()
}
