package artifact

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"asciivid/internal/media"
)

const (
	// DefaultSeparator delimits frames in new artifacts.
	DefaultSeparator = '~'
	// LegacySeparator is the delimiter used by older artifacts.
	LegacySeparator = '='
)

var (
	// ErrMalformedArtifact is returned when no frame can be recovered.
	ErrMalformedArtifact = media.ErrMalformedArtifact
	// ErrSeparatorCollision is returned when a frame row equals the separator line.
	ErrSeparatorCollision = errors.New("frame row collides with separator")
)

// SeparatorLine returns the delimiter repeated width times.
func SeparatorLine(delimiter rune, width int) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat(string(delimiter), width)
}

// ValidateSeparator rejects delimiters that cannot frame text rows.
func ValidateSeparator(delimiter rune) error {
	switch {
	case delimiter == 0:
		return errors.New("separator is empty")
	case delimiter == ' ' || !unicode.IsPrint(delimiter):
		return fmt.Errorf("separator %q must be a printable non-space character", delimiter)
	}
	return nil
}

// ParseSeparator converts a one-character config or flag value into a delimiter.
func ParseSeparator(value string) (rune, error) {
	runes := []rune(value)
	if len(runes) != 1 {
		return 0, fmt.Errorf("separator %q must be exactly one character", value)
	}
	if err := ValidateSeparator(runes[0]); err != nil {
		return 0, err
	}
	return runes[0], nil
}
