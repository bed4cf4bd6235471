// Package catalog keeps a local history of encode runs in SQLite.
//
// Each committed artifact gets one row holding its session id, input,
// geometry and timing. The CLI reads it back for the history command.
package catalog
