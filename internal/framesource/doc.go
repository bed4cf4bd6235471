// Package framesource yields raw video frames one at a time.
//
// Two sources are provided: an ffmpeg pipe that decodes any container ffmpeg
// understands into 8-bit grayscale rawvideo, and a directory of still images
// played back at a fixed rate. Open picks between them based on the path.
//
// Sources are consumed sequentially and are not safe for concurrent use.
// Next returns io.EOF once the stream is exhausted.
package framesource
