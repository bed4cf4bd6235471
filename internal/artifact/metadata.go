package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const metadataVersion = 1

// Metadata is the sidecar written next to an artifact.
type Metadata struct {
	Version    int       `toml:"version"`
	SessionID  string    `toml:"session_id"`
	CreatedAt  time.Time `toml:"created_at"`
	Width      int       `toml:"width"`
	Height     int       `toml:"height"`
	FrameCount int       `toml:"frame_count"`
	Separator  string    `toml:"separator"`
	Palette    string    `toml:"palette"`
	Source     Source    `toml:"source"`
}

// Source records where the frames came from.
type Source struct {
	Path       string  `toml:"path"`
	FPS        float64 `toml:"fps"`
	FrameCount int     `toml:"frame_count"`
	Duration   float64 `toml:"duration_seconds"`
	Skipped    int     `toml:"skipped_frames"`
}

// MetadataPath returns the sidecar path for an artifact.
func MetadataPath(artifactPath string) string {
	return artifactPath + ".meta.toml"
}

// SeparatorRune returns the recorded delimiter, or 0 when absent or invalid.
func (m Metadata) SeparatorRune() rune {
	r, err := ParseSeparator(m.Separator)
	if err != nil {
		return 0
	}
	return r
}

// SourceDuration returns the playback length implied by the source, or 0 when
// the source rate is unknown.
func (m Metadata) SourceDuration() float64 {
	if m.Source.FPS <= 0 || m.FrameCount <= 0 {
		return 0
	}
	return float64(m.FrameCount) / m.Source.FPS
}

// WriteMetadata stores meta alongside artifactPath via a temp file and rename.
func WriteMetadata(artifactPath string, meta Metadata) error {
	artifactPath = strings.TrimSpace(artifactPath)
	if artifactPath == "" {
		return errors.New("artifact: metadata path is empty")
	}
	meta.Version = metadataVersion
	payload, err := toml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("artifact: encode metadata: %w", err)
	}
	target := MetadataPath(artifactPath)
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("artifact: create metadata temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("artifact: write metadata temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("artifact: close metadata temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("artifact: chmod metadata: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("artifact: rename metadata: %w", err)
	}
	return nil
}

// ReadMetadata loads the sidecar for artifactPath. The bool reports whether a
// sidecar exists.
func ReadMetadata(artifactPath string) (Metadata, bool, error) {
	payload, err := os.ReadFile(MetadataPath(artifactPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Metadata{}, false, nil
		}
		return Metadata{}, false, fmt.Errorf("artifact: read metadata: %w", err)
	}
	var meta Metadata
	if err := toml.Unmarshal(payload, &meta); err != nil {
		return Metadata{}, true, fmt.Errorf("artifact: decode metadata: %w", err)
	}
	if meta.Version != metadataVersion {
		return Metadata{}, true, fmt.Errorf("artifact: unsupported metadata version %d", meta.Version)
	}
	return meta, true, nil
}
