// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: per-stream geometry, frame rate and frame count
//
// Inspect executes ffprobe; helpers on Result and Stream turn the string-typed
// ffprobe fields into numbers, returning zero when a field is absent.
package ffprobe
