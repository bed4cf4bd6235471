package charmap

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// cellWidth measures runes as a non-CJK terminal lays them out; ambiguous
// width block elements count as one cell.
var cellWidth = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// DefaultPalette emphasizes midtones and reads well on dark terminals.
const DefaultPalette = " .:-=+*#%@"

// Palette lists characters in increasing visual density.
type Palette []rune

// ParsePalette validates s and returns it as a Palette. A palette needs at
// least two characters, and every character must occupy one printable cell.
func ParsePalette(s string) (Palette, error) {
	if !utf8.ValidString(s) {
		return nil, errors.New("palette is not valid UTF-8")
	}
	p := Palette(s)
	if len(p) < 2 {
		return nil, fmt.Errorf("palette %q must contain at least two characters", s)
	}
	for _, r := range p {
		if r != ' ' && !unicode.IsPrint(r) {
			return nil, fmt.Errorf("palette %q contains non-printable character %U", s, r)
		}
		if w := cellWidth.RuneWidth(r); w != 1 {
			return nil, fmt.Errorf("palette %q contains %U occupying %d terminal cells", s, r, w)
		}
	}
	return p, nil
}

// MustParsePalette is ParsePalette for compile-time constants.
func MustParsePalette(s string) Palette {
	p, err := ParsePalette(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Default returns DefaultPalette.
func Default() Palette {
	return MustParsePalette(DefaultPalette)
}

// Contains reports whether r is one of the palette characters.
func (p Palette) Contains(r rune) bool {
	for _, c := range p {
		if c == r {
			return true
		}
	}
	return false
}

// Scale is the intensity span covered by one palette step, using integer
// division and never less than one.
func (p Palette) Scale() int {
	return max(255/(len(p)-1), 1)
}

// Index maps an intensity to a palette position, clamped to the last entry.
func (p Palette) Index(v uint8) int {
	return min(int(v)/p.Scale(), len(p)-1)
}

func (p Palette) String() string {
	return string(p)
}
