package media

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceUnavailable marks a frame source that could not be opened.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrInvalidFrame marks a single malformed or empty raw frame.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrMalformedArtifact marks playback input without a parseable frame sequence.
	ErrMalformedArtifact = errors.New("malformed artifact")
)

// Wrap tags err with marker and prefixes it with the operation name. A nil err
// yields an error carrying only the marker and detail.
func Wrap(marker error, operation, detail string, err error) error {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if detail = strings.TrimSpace(detail); detail != "" {
		parts = append(parts, detail)
	}
	msg := strings.Join(parts, ": ")
	if msg == "" {
		msg = "media failure"
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, msg, err)
	}
	return fmt.Errorf("%w: %s", marker, msg)
}
