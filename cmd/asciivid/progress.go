package main

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"asciivid/internal/encoder"
	"asciivid/internal/terminal"
)

// progressBar renders encoder progress on a terminal.
type progressBar struct {
	out         io.Writer
	description string
	bar         *progressbar.ProgressBar
}

func newProgressBar(out io.Writer, description string) *progressBar {
	return &progressBar{out: out, description: description}
}

// encodeProgress returns a progress bar when out is a terminal and nil
// otherwise, leaving the encoder on its log-based progress.
func encodeProgress(out io.Writer) encoder.Progress {
	if !terminal.IsTerminal(out) {
		return nil
	}
	return newProgressBar(out, "encoding")
}

func (p *progressBar) Start(total int) {
	if total <= 0 {
		total = -1
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(p.description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSpinnerType(14),
	)
}

func (p *progressBar) Advance(done int) {
	if p.bar == nil {
		return
	}
	if max := p.bar.GetMax(); max > 0 && done > max {
		p.bar.ChangeMax(done)
	}
	_ = p.bar.Set(done)
}

func (p *progressBar) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	_, _ = io.WriteString(p.out, "\n")
}
