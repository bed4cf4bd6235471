package contrast

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"asciivid/internal/media"
)

func grayFrom(w, h int, pix ...uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, pix)
	return img
}

func gradient(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.Stride+x] = uint8(40 + (x*80)/w + (y*40)/h)
		}
	}
	return img
}

func TestGrayscaleRejectsEmptyFrames(t *testing.T) {
	for _, img := range []image.Image{nil, image.NewGray(image.Rect(0, 0, 0, 4))} {
		if _, err := Grayscale(img); !errors.Is(err, media.ErrInvalidFrame) {
			t.Fatalf("expected ErrInvalidFrame, got %v", err)
		}
	}
}

func TestGrayscaleConvertsColorAndRebasesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.Set(5, 5, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src.Set(6, 5, color.RGBA{A: 255})

	out, err := Grayscale(src)
	if err != nil {
		t.Fatalf("Grayscale: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("unexpected bounds %v", out.Bounds())
	}
	if out.Pix[0] != 255 || out.Pix[1] != 0 {
		t.Fatalf("unexpected pixels %v", out.Pix)
	}
}

func TestGrayscaleCopiesSubImage(t *testing.T) {
	base := grayFrom(3, 2, 1, 2, 3, 4, 5, 6)
	sub := base.SubImage(image.Rect(1, 0, 3, 2))

	out, err := Grayscale(sub)
	if err != nil {
		t.Fatalf("Grayscale: %v", err)
	}
	want := []uint8{2, 3, 5, 6}
	if !bytes.Equal(out.Pix, want) {
		t.Fatalf("got %v want %v", out.Pix, want)
	}
	out.Pix[0] = 99
	if base.Pix[1] != 2 {
		t.Fatal("Grayscale must not alias the source buffer")
	}
}

func TestEqualizeSpreadsToFullRange(t *testing.T) {
	out := Equalize(gradient(32, 16))
	lo, hi := uint8(255), uint8(0)
	for _, v := range out.Pix {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo != 0 || hi != 255 {
		t.Fatalf("expected full range, got [%d,%d]", lo, hi)
	}
}

func TestEqualizeTwoLevels(t *testing.T) {
	out := Equalize(grayFrom(2, 2, 50, 100, 50, 100))
	want := []uint8{0, 255, 0, 255}
	if !bytes.Equal(out.Pix, want) {
		t.Fatalf("got %v want %v", out.Pix, want)
	}
}

func TestEqualizeLeavesConstantFrame(t *testing.T) {
	out := Equalize(grayFrom(2, 2, 77, 77, 77, 77))
	for _, v := range out.Pix {
		if v != 77 {
			t.Fatalf("expected constant frame to be unchanged, got %v", out.Pix)
		}
	}
}

func TestAdaptiveEqualizeSingleTileMatchesCumulativeMapping(t *testing.T) {
	src := grayFrom(2, 2, 0, 64, 128, 255)
	out := AdaptiveEqualize(src, Options{ClipLimit: 0, TileCols: 1, TileRows: 1})
	want := []uint8{64, 128, 191, 255}
	if !bytes.Equal(out.Pix, want) {
		t.Fatalf("got %v want %v", out.Pix, want)
	}
}

func TestClipHistogramRedistributesExcess(t *testing.T) {
	var hist [levels]int
	hist[10] = 600
	clipHistogram(&hist, 40)

	total := 0
	for _, v := range hist {
		total += v
	}
	if total != 600 {
		t.Fatalf("clipping must preserve mass, got %d", total)
	}
	if hist[10] > 40+3 {
		t.Fatalf("bin 10 not clipped: %d", hist[10])
	}
}

func TestAdaptiveEqualizeKeepsDimensionsForRaggedGrid(t *testing.T) {
	src := gradient(37, 13)
	out := AdaptiveEqualize(src, DefaultOptions())
	if out.Bounds() != image.Rect(0, 0, 37, 13) {
		t.Fatalf("unexpected bounds %v", out.Bounds())
	}
}

func TestAdaptiveEqualizeHandlesFramesSmallerThanGrid(t *testing.T) {
	out := AdaptiveEqualize(grayFrom(3, 1, 10, 20, 30), DefaultOptions())
	if len(out.Pix) != 3 {
		t.Fatalf("unexpected output %v", out.Pix)
	}
}

func TestReflect101(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{0, 5, 0},
		{5, 5, 3},
		{6, 5, 2},
		{-1, 5, 1},
		{7, 3, 1},
		{4, 1, 0},
	}
	for _, tt := range tests {
		if got := reflect101(tt.i, tt.n); got != tt.want {
			t.Errorf("reflect101(%d,%d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	n := New(Options{})
	if n.Options() != DefaultOptions() {
		t.Fatalf("expected defaults, got %+v", n.Options())
	}
	src := gradient(64, 36)
	a, err := n.Normalize(src)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	b, err := n.Normalize(src)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatal("expected identical output for identical input")
	}
	if a.Bounds() != src.Bounds() {
		t.Fatalf("unexpected bounds %v", a.Bounds())
	}
}

func TestNormalizeRejectsEmptyFrame(t *testing.T) {
	if _, err := New(DefaultOptions()).Normalize(image.NewGray(image.Rectangle{})); !errors.Is(err, media.ErrInvalidFrame) {
		t.Fatalf("expected ErrInvalidFrame, got %v", err)
	}
}
