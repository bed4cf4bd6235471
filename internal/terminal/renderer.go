package terminal

import (
	"bufio"
	"io"
)

const (
	escClearScreen = "\x1b[2J"
	escHome        = "\x1b[H"
	escHideCursor  = "\x1b[?25l"
	escShowCursor  = "\x1b[?25h"
)

// RendererOptions configure a Renderer.
type RendererOptions struct {
	// ClearScreen wipes the terminal before the first frame.
	ClearScreen bool
}

// Renderer writes frames in place using cursor-home redraws.
type Renderer struct {
	out    *bufio.Writer
	opts   RendererOptions
	hidden bool
}

// NewRenderer returns a renderer writing to w.
func NewRenderer(w io.Writer, opts RendererOptions) *Renderer {
	return &Renderer{out: bufio.NewWriterSize(w, 64*1024), opts: opts}
}

// Begin hides the cursor and optionally clears the screen.
func (r *Renderer) Begin() error {
	if r.opts.ClearScreen {
		if _, err := r.out.WriteString(escClearScreen); err != nil {
			return err
		}
	}
	if _, err := r.out.WriteString(escHideCursor); err != nil {
		return err
	}
	r.hidden = true
	return r.out.Flush()
}

// Draw moves the cursor home and writes frame over the previous one. The
// cursor stays on the last row so full-height frames do not scroll.
func (r *Renderer) Draw(frame string) error {
	if _, err := r.out.WriteString(escHome); err != nil {
		return err
	}
	if _, err := r.out.WriteString(frame); err != nil {
		return err
	}
	return r.out.Flush()
}

// End shows the cursor again and moves below the frame. Calling it without a matching Begin writes
// nothing.
func (r *Renderer) End() error {
	if !r.hidden {
		return nil
	}
	r.hidden = false
	if _, err := r.out.WriteString(escShowCursor + "\n"); err != nil {
		return err
	}
	return r.out.Flush()
}
