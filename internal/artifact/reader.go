package artifact

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"asciivid/internal/media"
)

// ReadOptions control how artifact text is split. Zero values are resolved
// from the sidecar, then from defaults.
type ReadOptions struct {
	Width     int
	Separator rune
}

// Document is a loaded artifact.
type Document struct {
	Path      string
	Frames    []string
	Width     int
	Height    int
	Separator rune
	Metadata  *Metadata
}

// CountMismatch reports whether the sidecar frame count disagrees with the
// frames actually recovered.
func (d Document) CountMismatch() bool {
	return d.Metadata != nil && d.Metadata.FrameCount != len(d.Frames)
}

// Split cuts artifact text into frames at every separator line. Empty
// segments are dropped. When opts.Width is zero the width is taken from the
// first line.
func Split(text string, opts ReadOptions) ([]string, error) {
	delimiter := opts.Separator
	if delimiter == 0 {
		delimiter = DefaultSeparator
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	width := opts.Width
	if width <= 0 {
		first, _, _ := strings.Cut(text, "\n")
		width = utf8.RuneCountInString(first)
	}
	if width <= 0 {
		return nil, media.Wrap(ErrMalformedArtifact, "split", "no content", nil)
	}
	separator := SeparatorLine(delimiter, width)

	var (
		frames []string
		rows   []string
	)
	flush := func() {
		if len(rows) > 0 {
			frames = append(frames, strings.Join(rows, "\n"))
			rows = rows[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if line == separator {
			flush()
			continue
		}
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}
	flush()

	if len(frames) == 0 {
		return nil, media.Wrap(ErrMalformedArtifact, "split", fmt.Sprintf("no frames separated by %q", separator), nil)
	}
	return frames, nil
}

// Load reads the artifact at path together with its sidecar, if any.
func Load(path string, opts ReadOptions) (Document, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("artifact: read %s: %w", path, err)
	}
	doc := Document{Path: path}
	meta, found, err := ReadMetadata(path)
	if err != nil {
		return Document{}, err
	}
	if found {
		doc.Metadata = &meta
		if opts.Width <= 0 {
			opts.Width = meta.Width
		}
		if opts.Separator == 0 {
			opts.Separator = meta.SeparatorRune()
		}
	}
	if opts.Separator == 0 {
		opts.Separator = DefaultSeparator
	}
	if !utf8.Valid(payload) {
		return Document{}, media.Wrap(ErrMalformedArtifact, "load", path+": not valid UTF-8", nil)
	}

	frames, err := Split(string(payload), opts)
	if err != nil {
		return Document{}, fmt.Errorf("artifact: %s: %w", path, err)
	}
	doc.Frames = frames
	doc.Separator = opts.Separator
	doc.Width = opts.Width
	if doc.Width <= 0 {
		first, _, _ := strings.Cut(frames[0], "\n")
		doc.Width = utf8.RuneCountInString(first)
	}
	doc.Height = strings.Count(frames[0], "\n") + 1
	return doc, nil
}
