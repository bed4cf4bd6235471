package contrast

import (
	"image"
)

// Normalizer runs global equalization followed by CLAHE.
type Normalizer struct {
	opts Options
}

// New returns a Normalizer; zero-valued tile counts fall back to the 8x8 grid.
func New(opts Options) *Normalizer {
	return &Normalizer{opts: opts.withDefaults()}
}

// Options reports the effective settings.
func (n *Normalizer) Options() Options {
	return n.opts
}

// Normalize converts raw to gray and applies both equalization passes. It
// fails with media.ErrInvalidFrame for nil or empty frames.
func (n *Normalizer) Normalize(raw image.Image) (*image.Gray, error) {
	gray, err := Grayscale(raw)
	if err != nil {
		return nil, err
	}
	return AdaptiveEqualize(Equalize(gray), n.opts), nil
}
