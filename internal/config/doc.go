// Package config loads, normalizes, and validates asciivid configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the FFMPEG_BINARY and FFPROBE_BINARY environment
// fallbacks. The encoder and player take their tuning knobs from the Config
// this package returns, so palette, separator and blend settings are checked
// once here instead of at every call site.
package config
