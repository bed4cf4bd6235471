// Package artifact reads and writes the text artifact that stores an encoded
// video.
//
// An artifact is a sequence of text frames, each followed by a separator line
// made of the delimiter repeated once per column:
//
//	<frame 0 rows>
//	~~~~~~~~~~
//	<frame 1 rows>
//	~~~~~~~~~~
//
// The delimiter is never a palette member, and Writer refuses any frame that
// contains a row equal to the separator line. A TOML sidecar next to the
// artifact records geometry and source details; it is optional for reading.
package artifact
