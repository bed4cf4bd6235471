package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Encode contains settings for turning video into text frames.
type Encode struct {
	// Width is the output column count; 0 derives it from the terminal.
	Width             int     `toml:"width"`
	MaxWidth          int     `toml:"max_width"`
	Palette           string  `toml:"palette"`
	Separator         string  `toml:"separator"`
	SkipInvalidFrames bool    `toml:"skip_invalid_frames"`
	SequenceFPS       float64 `toml:"sequence_fps"`
}

// Contrast contains the adaptive equalization parameters.
type Contrast struct {
	ClipLimit float64 `toml:"clip_limit"`
	TileCols  int     `toml:"tile_cols"`
	TileRows  int     `toml:"tile_rows"`
}

// Blend contains the temporal smoothing parameters.
type Blend struct {
	Window int     `toml:"window"`
	Alpha  float64 `toml:"alpha"`
}

// Playback contains terminal playback settings.
type Playback struct {
	DurationSeconds float64 `toml:"duration_seconds"`
	ClearScreen     bool    `toml:"clear_screen"`
}

// Media contains external tool locations.
type Media struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Catalog controls the encode history database.
type Catalog struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	File          bool   `toml:"file"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for asciivid.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Encode: output width, palette, frame separator, invalid-frame policy
//   - Contrast: CLAHE clip limit and tile grid
//   - Blend: temporal smoothing window and weight
//   - Playback: target duration and screen clearing
//   - Media: ffmpeg/ffprobe binaries
//   - Catalog: SQLite encode history
//   - Logging: log format, level, file output and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Encode   Encode   `toml:"encode"`
	Contrast Contrast `toml:"contrast"`
	Blend    Blend    `toml:"blend"`
	Playback Playback `toml:"playback"`
	Media    Media    `toml:"media"`
	Catalog  Catalog  `toml:"catalog"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/asciivid/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strings.TrimSpace(strict.String()))
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("asciivid.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CatalogPath returns the SQLite database location.
func (c *Config) CatalogPath() string {
	if c.Catalog.Path != "" {
		return c.Catalog.Path
	}
	return filepath.Join(c.Paths.DataDir, "catalog.db")
}

// LogFilePattern matches the files produced by LogFilePath.
const LogFilePattern = "asciivid-*.log"

// LogFilePath returns today's log file, written when logging.file is enabled.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "asciivid-"+time.Now().Format("20060102")+".log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
