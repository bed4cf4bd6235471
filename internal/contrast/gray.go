package contrast

import (
	"image"
	"image/color"

	"asciivid/internal/media"
)

// Grayscale reduces img to a single-channel frame anchored at the origin.
// Gray inputs are copied row by row; every other model goes through the
// BT.601 luma conversion of color.GrayModel.
func Grayscale(img image.Image) (*image.Gray, error) {
	if img == nil {
		return nil, media.Wrap(media.ErrInvalidFrame, "grayscale", "nil frame", nil)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, media.Wrap(media.ErrInvalidFrame, "grayscale", "frame has no pixels", nil)
	}
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			start := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Stride:y*out.Stride+w], src.Pix[start:start+w])
		}
		return out, nil
	}

	for y := 0; y < h; y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := 0; x < w; x++ {
			row[x] = color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
		}
	}
	return out, nil
}
