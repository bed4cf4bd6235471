package charmap

import (
	"errors"
	"image"
	"strings"
	"testing"
	"unicode/utf8"

	"asciivid/internal/media"
)

func ramp(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.Stride+x] = uint8((x * 255) / max(w-1, 1))
		}
	}
	return img
}

func TestParsePaletteValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default", DefaultPalette, false},
		{"two chars", " #", false},
		{"single char", "#", true},
		{"empty", "", true},
		{"control char", " \t#", true},
		{"newline", " \n#", true},
		{"unicode blocks", " ░▒▓█", false},
		{"double width", " 中", true},
		{"combining mark", " \u0301@", true},
		{"zero width joiner", " \u200d#", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePalette(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePalette(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestPaletteIndexClampsAtMaximum(t *testing.T) {
	p := Default()
	if p.Scale() != 28 {
		t.Fatalf("expected integer scale 28, got %d", p.Scale())
	}
	tests := []struct {
		v    uint8
		want int
	}{
		{0, 0},
		{27, 0},
		{28, 1},
		{251, 8},
		{252, 9},
		{255, 9},
	}
	for _, tt := range tests {
		if got := p.Index(tt.v); got != tt.want {
			t.Errorf("Index(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestPaletteScaleFloorForLargePalettes(t *testing.T) {
	p := Palette([]rune(strings.Repeat("ab", 200)))
	if p.Scale() != 1 {
		t.Fatalf("expected scale 1, got %d", p.Scale())
	}
	if p.Index(255) != 255 {
		t.Fatalf("unexpected index %d", p.Index(255))
	}
}

func TestOutputHeight(t *testing.T) {
	tests := []struct {
		srcW, srcH, width, want int
	}{
		{1920, 1080, 100, 28},
		{640, 480, 80, 30},
		{1000, 10, 10, 1},
		{0, 10, 10, 0},
	}
	for _, tt := range tests {
		if got := OutputHeight(tt.srcW, tt.srcH, tt.width); got != tt.want {
			t.Errorf("OutputHeight(%d,%d,%d) = %d, want %d", tt.srcW, tt.srcH, tt.width, got, tt.want)
		}
	}
}

func TestMapProducesExactGridOfPaletteCharacters(t *testing.T) {
	m, err := NewMapper(Default())
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	for _, width := range []int{1, 7, 40, 123} {
		text, err := m.Map(ramp(320, 180), width)
		if err != nil {
			t.Fatalf("Map: %v", err)
		}
		rows := strings.Split(text, "\n")
		height := OutputHeight(320, 180, width)
		if len(rows) != height {
			t.Fatalf("width %d: expected %d rows, got %d", width, height, len(rows))
		}
		visible := 0
		for i, row := range rows {
			if n := utf8.RuneCountInString(row); n != width {
				t.Fatalf("width %d row %d: expected %d characters, got %d", width, i, width, n)
			}
			for _, r := range row {
				if !m.palette.Contains(r) {
					t.Fatalf("character %q not in palette", r)
				}
				visible++
			}
		}
		if visible != width*height {
			t.Fatalf("expected %d visible characters, got %d", width*height, visible)
		}
	}
}

func TestMapUsesBothEndsOfPalette(t *testing.T) {
	m, _ := NewMapper(Default())
	frame := image.NewGray(image.Rect(0, 0, 200, 10))
	for y := 0; y < 10; y++ {
		for x := 100; x < 200; x++ {
			frame.Pix[y*frame.Stride+x] = 255
		}
	}
	text, err := m.Map(frame, 50)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	row := strings.Split(text, "\n")[0]
	if row[0] != ' ' {
		t.Fatalf("expected darkest character first, got %q", row[0])
	}
	if row[len(row)-1] != '@' {
		t.Fatalf("expected densest character last, got %q", row[len(row)-1])
	}
}

func TestMapIsIdempotent(t *testing.T) {
	m, _ := NewMapper(Default())
	frame := ramp(97, 61)
	a, err := m.Map(frame, 60)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	b, _ := m.Map(frame, 60)
	if a != b {
		t.Fatal("expected byte-identical frames")
	}
}

func TestMapRejectsBadInput(t *testing.T) {
	m, _ := NewMapper(Default())
	if _, err := m.Map(ramp(4, 4), 0); err == nil {
		t.Fatal("expected error for zero width")
	}
	if _, err := m.Map(image.NewGray(image.Rectangle{}), 10); !errors.Is(err, media.ErrInvalidFrame) {
		t.Fatalf("expected ErrInvalidFrame, got %v", err)
	}
}

func TestNewMapperRequiresTwoCharacters(t *testing.T) {
	if _, err := NewMapper(Palette("#")); err == nil {
		t.Fatal("expected error for single character palette")
	}
}

func TestCalibrateOrdersByInk(t *testing.T) {
	p, coverage, err := Calibrate(nil, "@ .#")
	if err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	if p[0] != ' ' {
		t.Fatalf("expected space first, got %q", p)
	}
	if len(p) != len(coverage) {
		t.Fatalf("palette and coverage disagree: %q vs %d", p, len(coverage))
	}
	for i := 1; i < len(coverage); i++ {
		if coverage[i].Ink <= coverage[i-1].Ink {
			t.Fatalf("coverage not strictly increasing: %+v", coverage)
		}
	}
	if p[len(p)-1] == '.' || p[len(p)-1] == ' ' {
		t.Fatalf("expected a heavy glyph last, got %q", p)
	}
}

func TestCalibrateRejectsGarbageFont(t *testing.T) {
	if _, _, err := Calibrate([]byte("not a font"), " #"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCalibrateNeedsTwoDensities(t *testing.T) {
	if _, _, err := Calibrate(nil, "   "); err == nil {
		t.Fatal("expected error for single density alphabet")
	}
}

func TestCalibrateRejectsWideGlyphs(t *testing.T) {
	if _, _, err := Calibrate(nil, " 中"); err == nil {
		t.Fatal("expected error for double width alphabet")
	}
}
