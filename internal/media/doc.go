// Package media holds the error taxonomy shared by the frame pipeline.
//
// Frame sources, the contrast normalizer, the artifact reader and the encoder
// all tag failures with the sentinels defined here so callers can classify an
// error with errors.Is regardless of which stage produced it. Subpackages such
// as ffprobe wrap external tooling and carry no asciivid-specific state.
package media
