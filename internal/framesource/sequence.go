package framesource

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"asciivid/internal/media"
)

var sequenceExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

type sequenceSource struct {
	files []string
	info  Info
	next  int
}

// OpenSequence lists the image files in dir in natural order. The first
// image fixes the geometry; later images of another size are invalid frames.
func OpenSequence(dir string, fps float64) (Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, media.Wrap(ErrSourceUnavailable, "open sequence", dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := sequenceExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return nil, media.Wrap(ErrSourceUnavailable, "open sequence", dir+": no png or jpeg files", nil)
	}
	sort.SliceStable(files, func(i, j int) bool { return naturalLess(files[i], files[j]) })
	for i, name := range files {
		files[i] = filepath.Join(dir, name)
	}

	cfg, err := decodeConfig(files[0])
	if err != nil {
		return nil, media.Wrap(ErrSourceUnavailable, "open sequence", files[0], err)
	}
	if fps <= 0 {
		fps = defaultSequenceFPS
	}
	return &sequenceSource{
		files: files,
		info: Info{
			Width:      cfg.Width,
			Height:     cfg.Height,
			FPS:        fps,
			FrameCount: len(files),
			Duration:   float64(len(files)) / fps,
		},
	}, nil
}

func decodeConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	return cfg, err
}

func (s *sequenceSource) Info() Info { return s.info }

func (s *sequenceSource) Next(ctx context.Context) (image.Image, error) {
	if s.next >= len(s.files) {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.files[s.next]
	s.next++
	f, err := os.Open(path)
	if err != nil {
		return nil, media.Wrap(ErrInvalidFrame, "read frame", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, media.Wrap(ErrInvalidFrame, "decode frame", path, err)
	}
	if img.Bounds().Empty() {
		return nil, media.Wrap(ErrInvalidFrame, "decode frame", fmt.Sprintf("%s: empty image", path), nil)
	}
	if size := img.Bounds().Size(); size.X != s.info.Width || size.Y != s.info.Height {
		return nil, media.Wrap(ErrInvalidFrame, "decode frame",
			fmt.Sprintf("%s: %dx%d differs from sequence geometry %dx%d", path, size.X, size.Y, s.info.Width, s.info.Height), nil)
	}
	return img, nil
}

func (s *sequenceSource) Close() error {
	s.next = len(s.files)
	return nil
}

// naturalLess orders names so that digit runs compare numerically:
// frame2.png sorts before frame10.png.
func naturalLess(a, b string) bool {
	ar, br := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		if unicode.IsDigit(ar[i]) && unicode.IsDigit(br[j]) {
			si := i
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			sj := j
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			na := strings.TrimLeft(string(ar[si:i]), "0")
			nb := strings.TrimLeft(string(br[sj:j]), "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if ar[i] != br[j] {
			return ar[i] < br[j]
		}
		i++
		j++
	}
	return len(ar)-i < len(br)-j
}
