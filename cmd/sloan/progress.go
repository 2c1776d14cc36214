package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

// progressBar redraws a single-line bar after each block.
type progressBar struct {
	out     io.Writer
	model   progress.Model
	total   uint64
	done    uint64
	enabled bool
}

func newProgressBar(out io.Writer, total uint64, enabled bool) *progressBar {
	return &progressBar{
		out:     out,
		model:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		total:   total,
		enabled: enabled && total > 0,
	}
}

func (p *progressBar) Advance(n uint64) {
	p.done += n
	if !p.enabled {
		return
	}
	fmt.Fprintf(p.out, "\r%s", p.model.ViewAs(p.fraction()))
}

func (p *progressBar) fraction() float64 {
	if p.total == 0 {
		return 1
	}
	return float64(p.done) / float64(p.total)
}

func (p *progressBar) Finish() {
	if p.enabled {
		fmt.Fprintln(p.out)
	}
}
