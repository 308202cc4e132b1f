// Package progress shows the advancement of a statistics run on the terminal.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Spinner prints numbered stage headers and animates a spinner while pull
// request details are fetched. It implements usecase.Progress.
type Spinner struct {
	out     io.Writer
	spinner *spinner.Spinner
	total   int
	done    int
}

// NewSpinner creates a Spinner writing to out, normally standard error.
func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{
		out:     out,
		spinner: spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out)),
	}
}

func (p *Spinner) Stage(step, total int, message string) {
	dim := color.New(color.Bold, color.Faint)
	fmt.Fprintf(p.out, "%s %s\n", dim.Sprintf("[%d/%d]", step, total), message)
}

func (p *Spinner) Start(total int) {
	p.total = total
	p.done = 0
	if total == 0 {
		return
	}
	p.spinner.Prefix = "[PR] "
	p.spinner.Suffix = fmt.Sprintf(" 0/%d", total)
	p.spinner.Start()
}

func (p *Spinner) Advance(title string) {
	p.done++
	p.spinner.Lock()
	p.spinner.Suffix = fmt.Sprintf(" %d/%d %s", p.done, p.total, title)
	p.spinner.Unlock()
}

func (p *Spinner) Finish() {
	p.spinner.Stop()
}
