package contrast

import (
	"image"
	"math"
)

const (
	// DefaultClipLimit bounds how far any histogram bin of a tile may be amplified.
	DefaultClipLimit = 2.0
	// DefaultTiles is the tile count along each axis of the CLAHE grid.
	DefaultTiles = 8
)

// Options configures the local contrast pass.
type Options struct {
	ClipLimit float64
	TileCols  int
	TileRows  int
}

// DefaultOptions returns the 8x8 grid with a clip limit of 2.0.
func DefaultOptions() Options {
	return Options{ClipLimit: DefaultClipLimit, TileCols: DefaultTiles, TileRows: DefaultTiles}
}

func (o Options) withDefaults() Options {
	if o.TileCols <= 0 {
		o.TileCols = DefaultTiles
	}
	if o.TileRows <= 0 {
		o.TileRows = DefaultTiles
	}
	if o.ClipLimit < 0 {
		o.ClipLimit = 0
	}
	return o
}

// AdaptiveEqualize applies CLAHE to src. Frames whose size is not a multiple
// of the grid are extended by reflection (without repeating the edge pixel)
// when the tile histograms are gathered; the output keeps the source size.
// A zero clip limit disables clipping.
func AdaptiveEqualize(src *image.Gray, opts Options) *image.Gray {
	opts = opts.withDefaults()
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	cols, rows := opts.TileCols, opts.TileRows
	tileW := ceilDiv(w, cols)
	tileH := ceilDiv(h, rows)
	luts := tileLUTs(src, cols, rows, tileW, tileH, opts.ClipLimit)

	invW := 1.0 / float64(tileW)
	invH := 1.0 / float64(tileH)

	for y := 0; y < h; y++ {
		tyf := float64(y)*invH - 0.5
		ty1 := int(math.Floor(tyf))
		ty2 := ty1 + 1
		ya := tyf - float64(ty1)
		ty1 = max(ty1, 0)
		ty2 = min(ty2, rows-1)
		top1 := luts[ty1*cols:]
		top2 := luts[ty2*cols:]

		in := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		row := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := 0; x < w; x++ {
			txf := float64(x)*invW - 0.5
			tx1 := int(math.Floor(txf))
			tx2 := tx1 + 1
			xa := txf - float64(tx1)
			tx1 = max(tx1, 0)
			tx2 = min(tx2, cols-1)

			v := in[x]
			upper := float64(top1[tx1][v])*(1-xa) + float64(top1[tx2][v])*xa
			lower := float64(top2[tx1][v])*(1-xa) + float64(top2[tx2][v])*xa
			row[x] = saturate(upper*(1-ya) + lower*ya)
		}
	}
	return out
}

func tileLUTs(src *image.Gray, cols, rows, tileW, tileH int, clip float64) [][levels]uint8 {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	area := tileW * tileH
	limit := 0
	if clip > 0 {
		limit = max(int(clip*float64(area)/levels), 1)
	}
	scale := float64(levels-1) / float64(area)

	luts := make([][levels]uint8, cols*rows)
	for ty := 0; ty < rows; ty++ {
		for tx := 0; tx < cols; tx++ {
			var hist [levels]int
			for y := ty * tileH; y < (ty+1)*tileH; y++ {
				sy := reflect101(y, h)
				in := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+sy):]
				for x := tx * tileW; x < (tx+1)*tileW; x++ {
					hist[in[reflect101(x, w)]]++
				}
			}
			if limit > 0 {
				clipHistogram(&hist, limit)
			}
			lut := &luts[ty*cols+tx]
			sum := 0
			for i := 0; i < levels; i++ {
				sum += hist[i]
				lut[i] = saturate(float64(sum) * scale)
			}
		}
	}
	return luts
}

// clipHistogram caps every bin at limit and spreads the clipped mass evenly,
// handing the remainder out one count at a time across the range.
func clipHistogram(hist *[levels]int, limit int) {
	clipped := 0
	for i := range hist {
		if hist[i] > limit {
			clipped += hist[i] - limit
			hist[i] = limit
		}
	}
	if clipped == 0 {
		return
	}
	batch := clipped / levels
	residual := clipped - batch*levels
	for i := range hist {
		hist[i] += batch
	}
	if residual > 0 {
		step := max(levels/residual, 1)
		for i := 0; i < levels && residual > 0; i += step {
			hist[i]++
			residual--
		}
	}
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
