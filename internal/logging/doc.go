// Package logging assembles the slog loggers used by asciivid.
//
// Logs never go to stdout, which carries rendered frames during playback.
// The terminal handler writes to stderr in console or JSON form; when file
// logging is enabled a JSON handler appends to a dated file in the log
// directory and old files are pruned by CleanupOldLogs. Every record carries
// the session id of the encode or playback run that produced it.
package logging
