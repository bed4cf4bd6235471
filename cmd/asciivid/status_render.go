package main

import (
	"fmt"
	"io"

	"asciivid/internal/preflight"
	"asciivid/internal/terminal"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusError
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

const (
	statusLabelWidth = 18
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	tag := "OK"
	color := ansiGreen
	if kind == statusError {
		tag = "ERROR"
		color = ansiRed
	}
	status := fmt.Sprintf("[%s]", tag)
	if message != "" {
		status += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status)
	if colorize {
		return color + line + ansiReset
	}
	return line
}

func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, result := range results {
		kind := statusOK
		if !result.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	return lines
}

func shouldColorize(w io.Writer) bool {
	return terminal.IsTerminal(w)
}
