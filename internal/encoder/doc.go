// Package encoder drives frames from a source through contrast
// normalization, temporal blending and character mapping into an artifact.
//
// Frames are processed strictly in stream order, one at a time. EncodeFile
// adds the file-level guarantees: nothing is created when the source cannot be
// opened, the artifact is staged and renamed into place only after the last
// frame, and a metadata sidecar is written beside it.
package encoder
