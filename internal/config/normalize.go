package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeEncode()
	c.normalizeMedia()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, defaultLogDirName)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	if strings.TrimSpace(c.Catalog.Path) == "" {
		c.Catalog.Path = ""
		return nil
	}
	var err error
	if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeEncode() {
	if c.Encode.Palette == "" {
		c.Encode.Palette = Default().Encode.Palette
	}
	c.Encode.Separator = strings.TrimSpace(c.Encode.Separator)
	if c.Encode.Separator == "" {
		c.Encode.Separator = Default().Encode.Separator
	}
	if c.Encode.MaxWidth <= 0 {
		c.Encode.MaxWidth = defaultMaxWidth
	}
	if c.Encode.SequenceFPS == 0 {
		c.Encode.SequenceFPS = defaultSequenceFPS
	}
}

func (c *Config) normalizeMedia() {
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" || c.Media.FFmpegBinary == defaultFFmpegBinary {
		if value, ok := os.LookupEnv("FFMPEG_BINARY"); ok && strings.TrimSpace(value) != "" {
			c.Media.FFmpegBinary = strings.TrimSpace(value)
		} else {
			c.Media.FFmpegBinary = defaultFFmpegBinary
		}
	}
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if c.Media.FFprobeBinary == "" || c.Media.FFprobeBinary == defaultFFprobeBinary {
		if value, ok := os.LookupEnv("FFPROBE_BINARY"); ok && strings.TrimSpace(value) != "" {
			c.Media.FFprobeBinary = strings.TrimSpace(value)
		} else {
			c.Media.FFprobeBinary = defaultFFprobeBinary
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
