package charmap

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"golang.org/x/image/draw"

	"asciivid/internal/media"
)

// Mapper converts normalized frames into text frames.
type Mapper struct {
	palette Palette
	lut     [256]rune
}

// NewMapper precomputes the intensity lookup for p.
func NewMapper(p Palette) (*Mapper, error) {
	if len(p) < 2 {
		return nil, errors.New("mapper requires a palette with at least two characters")
	}
	m := &Mapper{palette: append(Palette(nil), p...)}
	for v := 0; v < 256; v++ {
		m.lut[v] = p[p.Index(uint8(v))]
	}
	return m, nil
}

// Palette returns a copy of the mapper palette.
func (m *Mapper) Palette() Palette {
	return append(Palette(nil), m.palette...)
}

// OutputHeight is the row count for a width-column rendering of a
// srcW x srcH frame, halved for the tall aspect of terminal cells.
func OutputHeight(srcW, srcH, width int) int {
	if srcW <= 0 || srcH <= 0 || width <= 0 {
		return 0
	}
	aspect := float64(srcW) / float64(srcH)
	return max(int(math.Round(float64(width)/aspect/2)), 1)
}

// Resample scales frame to exactly w x h samples with bilinear filtering.
func Resample(frame *image.Gray, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	return dst
}

// Map renders frame as width characters per row. Rows are joined by a single
// newline with no trailing newline after the last row.
func (m *Mapper) Map(frame *image.Gray, width int) (string, error) {
	if width <= 0 {
		return "", fmt.Errorf("map frame: width must be positive, got %d", width)
	}
	if frame == nil || frame.Bounds().Empty() {
		return "", media.Wrap(media.ErrInvalidFrame, "map frame", "frame has no pixels", nil)
	}
	b := frame.Bounds()
	height := OutputHeight(b.Dx(), b.Dy(), width)
	small := Resample(frame, width, height)

	var sb strings.Builder
	sb.Grow((width + 1) * height)
	for y := 0; y < height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, v := range small.Pix[y*small.Stride : y*small.Stride+width] {
			sb.WriteRune(m.lut[v])
		}
	}
	return sb.String(), nil
}
