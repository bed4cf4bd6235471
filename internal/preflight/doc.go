// Package preflight provides readiness checks for the external tools and
// directories asciivid depends on.
//
// The "asciivid check" command prints every result. Encode runs the ffmpeg
// checks before opening a source so a missing binary is reported plainly
// instead of as a decode failure.
package preflight
