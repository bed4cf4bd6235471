package config

import (
	"errors"
	"fmt"

	"asciivid/internal/artifact"
	"asciivid/internal/charmap"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncode(); err != nil {
		return err
	}
	if err := c.validateContrast(); err != nil {
		return err
	}
	if err := c.validateBlend(); err != nil {
		return err
	}
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEncode() error {
	if c.Encode.Width < 0 {
		return errors.New("encode.width must be zero (auto) or positive")
	}
	if c.Encode.Width > c.Encode.MaxWidth {
		return fmt.Errorf("encode.width %d exceeds encode.max_width %d", c.Encode.Width, c.Encode.MaxWidth)
	}
	palette, err := charmap.ParsePalette(c.Encode.Palette)
	if err != nil {
		return fmt.Errorf("encode.palette: %w", err)
	}
	sep, err := artifact.ParseSeparator(c.Encode.Separator)
	if err != nil {
		return fmt.Errorf("encode.separator: %w", err)
	}
	if palette.Contains(sep) {
		return fmt.Errorf("encode.separator %q must not appear in encode.palette", sep)
	}
	if c.Encode.SequenceFPS < 0 {
		return errors.New("encode.sequence_fps must be positive")
	}
	return nil
}

func (c *Config) validateContrast() error {
	if c.Contrast.ClipLimit <= 0 {
		return errors.New("contrast.clip_limit must be positive")
	}
	if c.Contrast.TileCols <= 0 {
		return errors.New("contrast.tile_cols must be positive")
	}
	if c.Contrast.TileRows <= 0 {
		return errors.New("contrast.tile_rows must be positive")
	}
	return nil
}

func (c *Config) validateBlend() error {
	if c.Blend.Window < 0 {
		return errors.New("blend.window must be zero or positive")
	}
	if c.Blend.Alpha < 0 || c.Blend.Alpha > 1 {
		return errors.New("blend.alpha must be between 0 and 1")
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.DurationSeconds <= 0 {
		return errors.New("playback.duration_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

// Palette returns the parsed encode palette. Validate has already checked it.
func (c *Config) Palette() charmap.Palette {
	p, err := charmap.ParsePalette(c.Encode.Palette)
	if err != nil {
		return charmap.Default()
	}
	return p
}

// Separator returns the parsed frame delimiter.
func (c *Config) Separator() rune {
	r, err := artifact.ParseSeparator(c.Encode.Separator)
	if err != nil {
		return artifact.DefaultSeparator
	}
	return r
}
