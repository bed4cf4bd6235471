// Package charmap turns normalized frames into fixed-width character art.
//
// A Palette orders characters from emptiest to densest visual weight. The
// Mapper resamples a frame to the requested character grid, compensating for
// terminal cells being about twice as tall as they are wide, and quantizes
// every sample to a palette index. Calibrate derives a palette from a font by
// measuring how much ink each glyph puts on a fixed cell.
package charmap
