package config

import (
	"asciivid/internal/artifact"
	"asciivid/internal/blend"
	"asciivid/internal/charmap"
	"asciivid/internal/contrast"
)

const (
	defaultDataDir          = "~/.local/share/asciivid"
	defaultLogDirName       = "logs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	defaultMaxWidth         = 600
	defaultSequenceFPS      = 30
	defaultDurationSeconds  = 15.0
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
)

// FallbackWidth is the column count used when width is automatic and no
// terminal is attached.
const FallbackWidth = 100

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Encode: Encode{
			MaxWidth:          defaultMaxWidth,
			Palette:           charmap.DefaultPalette,
			Separator:         string(artifact.DefaultSeparator),
			SkipInvalidFrames: true,
			SequenceFPS:       defaultSequenceFPS,
		},
		Contrast: Contrast{
			ClipLimit: contrast.DefaultClipLimit,
			TileCols:  contrast.DefaultTiles,
			TileRows:  contrast.DefaultTiles,
		},
		Blend: Blend{
			Window: blend.DefaultWindow,
			Alpha:  blend.DefaultAlpha,
		},
		Playback: Playback{
			DurationSeconds: defaultDurationSeconds,
			ClearScreen:     true,
		},
		Media: Media{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Catalog: Catalog{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
