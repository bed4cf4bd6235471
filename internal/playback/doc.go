// Package playback schedules text frames onto a renderer at a fixed rate.
//
// A Session moves Idle -> Loaded -> Playing and ends in Stopped (the context
// was cancelled) or Completed (every frame was drawn). Frames are never
// dropped: a frame that overruns its slot is followed immediately by the next
// one and counted as late. The renderer's End runs exactly once on every exit
// from Playing, so the terminal cursor is always restored.
package playback
