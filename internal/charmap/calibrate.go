package charmap

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sort"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	calibrationCellW = 24
	calibrationCellH = 36
	calibrationSize  = 24
	calibrationDPI   = 72
)

// Coverage records the ink a glyph leaves on a calibration cell.
type Coverage struct {
	Char rune
	Ink  int
}

// Calibrate renders each rune of alphabet with the TrueType font in fontData
// (Go Mono when nil) and returns the runes ordered by ink coverage. Runes
// whose coverage ties an earlier rune are dropped so each level is distinct.
func Calibrate(fontData []byte, alphabet string) (Palette, []Coverage, error) {
	if len(fontData) == 0 {
		fontData = gomono.TTF
	}
	face, err := truetype.Parse(fontData)
	if err != nil {
		return nil, nil, fmt.Errorf("parse font: %w", err)
	}

	seen := make(map[rune]struct{})
	var coverage []Coverage
	for _, r := range alphabet {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		ink, err := glyphInk(face, r)
		if err != nil {
			return nil, nil, fmt.Errorf("render %q: %w", r, err)
		}
		coverage = append(coverage, Coverage{Char: r, Ink: ink})
	}

	sort.SliceStable(coverage, func(i, j int) bool { return coverage[i].Ink < coverage[j].Ink })

	distinct := coverage[:0:0]
	for i, c := range coverage {
		if i > 0 && c.Ink == coverage[i-1].Ink {
			continue
		}
		distinct = append(distinct, c)
	}
	if len(distinct) < 2 {
		return nil, coverage, errors.New("alphabet yields fewer than two distinct densities")
	}

	chars := make([]rune, len(distinct))
	for i, c := range distinct {
		chars[i] = c.Char
	}
	p, err := ParsePalette(string(chars))
	if err != nil {
		return nil, distinct, err
	}
	return p, distinct, nil
}

func glyphInk(face *truetype.Font, r rune) (int, error) {
	cell := image.NewGray(image.Rect(0, 0, calibrationCellW, calibrationCellH))
	draw.Draw(cell, cell.Bounds(), image.White, image.Point{}, draw.Src)

	ctx := freetype.NewContext()
	ctx.SetDPI(calibrationDPI)
	ctx.SetFont(face)
	ctx.SetFontSize(calibrationSize)
	ctx.SetClip(cell.Bounds())
	ctx.SetDst(cell)
	ctx.SetSrc(image.Black)
	if _, err := ctx.DrawString(string(r), freetype.Pt(2, calibrationSize+4)); err != nil {
		return 0, err
	}

	ink := 0
	for _, v := range cell.Pix {
		ink += 255 - int(v)
	}
	return ink, nil
}
