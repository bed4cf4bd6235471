package terminal

import (
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when the writer is not attached to a terminal.
var ErrNotTerminal = errors.New("output is not a terminal")

// widthMargin keeps a column free so frames never wrap.
const widthMargin = 2

var getSize = term.GetSize

// SetSizeForTests overrides terminal size detection and returns a restore
// function.
func SetSizeForTests(fn func(fd int) (int, int, error)) func() {
	prev := getSize
	getSize = fn
	return func() { getSize = prev }
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Size returns the column and row count of the terminal behind w.
func Size(w io.Writer) (int, int, error) {
	file, ok := w.(*os.File)
	if !ok {
		return 0, 0, ErrNotTerminal
	}
	cols, rows, err := getSize(int(file.Fd()))
	if err != nil {
		return 0, 0, err
	}
	return cols, rows, nil
}

// AutoWidth picks a frame width that fits the terminal behind w, capped at
// maxWidth. It falls back to fallback when no size is available.
func AutoWidth(w io.Writer, maxWidth, fallback int) int {
	width := fallback
	if cols, _, err := Size(w); err == nil && cols-widthMargin > 0 {
		width = cols - widthMargin
	}
	if maxWidth > 0 && width > maxWidth {
		width = maxWidth
	}
	if width < 1 {
		width = 1
	}
	return width
}
