// Package progress narrates long-running cache rebuilds on the
// terminal, with a plain line-per-step fallback for CI logs.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter walks through the named steps of a refresh run.
type Reporter interface {
	Begin(steps []string)
	Step(message string)
	Done()
}

// New picks a reporter for the current environment: line output under
// CI, a progress bar otherwise.
func New() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &lineReporter{out: os.Stderr}
	}
	return &barReporter{}
}

// barReporter renders an interactive progress bar sized to the number
// of refresh steps.
type barReporter struct {
	bar  *progressbar.ProgressBar
	done int
}

func (r *barReporter) Begin(steps []string) {
	r.done = 0
	r.bar = progressbar.NewOptions(len(steps),
		progressbar.OptionSetDescription("Rebuilding cache"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *barReporter) Step(message string) {
	if r.bar == nil {
		return
	}
	r.bar.Describe(message)
	r.done++
	_ = r.bar.Set(r.done)
}

func (r *barReporter) Done() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// lineReporter prints one line per step, suitable for CI logs.
type lineReporter struct {
	out   *os.File
	total int
	done  int
}

func (r *lineReporter) Begin(steps []string) {
	r.total = len(steps)
	r.done = 0
	fmt.Fprintf(r.out, "Rebuilding cache (%d steps)\n", r.total)
}

func (r *lineReporter) Step(message string) {
	r.done++
	fmt.Fprintf(r.out, "[%d/%d] %s\n", r.done, r.total, message)
}

func (r *lineReporter) Done() {
	fmt.Fprintln(r.out, "Cache rebuild finished")
}
