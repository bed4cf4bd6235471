package artifact

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Writer appends text frames in order, each followed by the separator line.
type Writer struct {
	out       *bufio.Writer
	width     int
	separator string
	frames    int
}

// NewWriter wraps w for frames that are width columns wide.
func NewWriter(w io.Writer, width int, delimiter rune) (*Writer, error) {
	if width <= 0 {
		return nil, fmt.Errorf("artifact writer: width must be positive, got %d", width)
	}
	if err := ValidateSeparator(delimiter); err != nil {
		return nil, fmt.Errorf("artifact writer: %w", err)
	}
	return &Writer{
		out:       bufio.NewWriter(w),
		width:     width,
		separator: SeparatorLine(delimiter, width),
	}, nil
}

// WriteFrame appends frame followed by a newline, the separator line and a
// newline. Rows must be exactly the writer's width.
func (w *Writer) WriteFrame(frame string) error {
	if frame == "" {
		return fmt.Errorf("artifact writer: frame %d is empty", w.frames)
	}
	for i, row := range strings.Split(frame, "\n") {
		if row == w.separator {
			return fmt.Errorf("artifact writer: frame %d row %d: %w", w.frames, i, ErrSeparatorCollision)
		}
		if n := utf8.RuneCountInString(row); n != w.width {
			return fmt.Errorf("artifact writer: frame %d row %d has %d columns, want %d", w.frames, i, n, w.width)
		}
	}
	if _, err := w.out.WriteString(frame); err != nil {
		return fmt.Errorf("artifact writer: %w", err)
	}
	if _, err := w.out.WriteString("\n" + w.separator + "\n"); err != nil {
		return fmt.Errorf("artifact writer: %w", err)
	}
	w.frames++
	return nil
}

// Flush writes buffered frames to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("artifact writer: flush: %w", err)
	}
	return nil
}

// Frames reports how many frames have been written.
func (w *Writer) Frames() int { return w.frames }

// Width reports the configured column count.
func (w *Writer) Width() int { return w.width }
