// Package main hosts the asciivid CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into encode runs, terminal
// playback, artifact inspection and configuration scaffolding. It centralizes
// configuration resolution and logger setup so subcommands stay small; the
// real work lives in the internal packages.
package main
