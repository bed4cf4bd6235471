// Package contrast normalizes raw video frames before character mapping.
//
// Normalization runs two passes over a single-channel frame: a global
// histogram equalization that spreads intensities over the full 0-255 range,
// followed by contrast limited adaptive histogram equalization (CLAHE) on a
// grid of tiles. The CLAHE pass clips each tile histogram so flat regions are
// not amplified into noise, then interpolates between neighbouring tile
// lookup tables to hide tile seams.
//
// The package is pure: every call allocates its output and never mutates the
// input frame.
package contrast
