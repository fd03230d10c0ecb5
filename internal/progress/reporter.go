// Package progress reports the advance of batch jobs such as the daily
// summary push.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives one Step per processed item.
type Reporter interface {
	Start(total int, label string)
	Step(subject string, err error)
	Finish()
}

// NewReporter returns a LineReporter under CI and a BarReporter otherwise,
// both writing to w.
func NewReporter(w io.Writer) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &LineReporter{w: w}
	}
	return &BarReporter{w: w}
}

// Nop discards progress.
type Nop struct{}

func (Nop) Start(int, string)  {}
func (Nop) Step(string, error) {}
func (Nop) Finish()            {}

// BarReporter draws a progress bar.
type BarReporter struct {
	w      io.Writer
	bar    *progressbar.ProgressBar
	failed int
}

func (r *BarReporter) Start(total int, label string) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *BarReporter) Step(subject string, err error) {
	if err != nil {
		r.failed++
	}
	if r.bar != nil {
		r.bar.Describe(subject)
		_ = r.bar.Add(1)
	}
}

func (r *BarReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
	if r.failed > 0 {
		fmt.Fprintf(r.w, "%d failed\n", r.failed)
	}
}

// LineReporter prints one line per item, suitable for CI logs.
type LineReporter struct {
	w       io.Writer
	total   int
	current int
	label   string
}

func (r *LineReporter) Start(total int, label string) {
	r.total, r.label = total, label
	fmt.Fprintf(r.w, "%s: %d items\n", label, total)
}

func (r *LineReporter) Step(subject string, err error) {
	r.current++
	if err != nil {
		fmt.Fprintf(r.w, "[%d/%d] %s: failed: %v\n", r.current, r.total, subject, err)
		return
	}
	fmt.Fprintf(r.w, "[%d/%d] %s\n", r.current, r.total, subject)
}

func (r *LineReporter) Finish() {
	fmt.Fprintf(r.w, "%s complete\n", r.label)
}
