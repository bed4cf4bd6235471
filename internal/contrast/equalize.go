package contrast

import (
	"image"
	"math"
)

const levels = 256

func histogram(img *image.Gray) [levels]int {
	var hist [levels]int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y) : img.PixOffset(b.Min.X, y)+b.Dx()]
		for _, v := range row {
			hist[v]++
		}
	}
	return hist
}

// Equalize remaps intensities so the cumulative distribution of src is close
// to uniform over 0-255. The darkest populated level maps to 0. A frame with a
// single populated level is returned as an unchanged copy.
func Equalize(src *image.Gray) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	total := b.Dx() * b.Dy()
	if total == 0 {
		return out
	}

	hist := histogram(src)
	first := 0
	for hist[first] == 0 {
		first++
	}

	var lut [levels]uint8
	if hist[first] == total {
		for i := range lut {
			lut[i] = uint8(i)
		}
	} else {
		scale := float64(levels-1) / float64(total-hist[first])
		sum := 0
		for i := first + 1; i < levels; i++ {
			sum += hist[i]
			lut[i] = saturate(float64(sum) * scale)
		}
	}

	for y := 0; y < b.Dy(); y++ {
		in := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		row := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range row {
			row[x] = lut[in[x]]
		}
	}
	return out
}

func saturate(v float64) uint8 {
	r := math.RoundToEven(v)
	switch {
	case r <= 0:
		return 0
	case r >= 255:
		return 255
	default:
		return uint8(r)
	}
}
