// Package progress provides run-granular progress reporting for the download
// phase. Sequential downloads get a single bar; concurrent downloads get a
// multi-bar view with one bar per in-flight run.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter reports download progress at run granularity.
type Reporter interface {
	// Start is called once with the total number of runs to download.
	Start(totalRuns int)
	// StartRun is called when a run's fetch begins. files is the number of
	// artifact files that will be fetched for it.
	StartRun(run string, files int) RunReporter
	// Finish is called after all runs have completed.
	Finish()
}

// RunReporter tracks one run's fetch.
type RunReporter interface {
	// FileDone is called after each artifact file completes (success or failure).
	FileDone()
	// Done is called when the run's fetch is finished.
	Done()
}

// Bar is a single-bar Reporter for sequential downloads, one tick per run.
type Bar struct {
	bar *progressbar.ProgressBar
}

// NewBar creates a single-bar reporter writing to stderr.
func NewBar() *Bar {
	return &Bar{}
}

// Start initializes the bar with the total run count.
func (b *Bar) Start(totalRuns int) {
	b.bar = progressbar.NewOptions(totalRuns,
		progressbar.OptionSetDescription("downloading runs"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// StartRun returns a RunReporter that ticks the bar when the run completes.
func (b *Bar) StartRun(run string, files int) RunReporter {
	return barRun{bar: b.bar}
}

// Finish completes the bar.
func (b *Bar) Finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

type barRun struct {
	bar *progressbar.ProgressBar
}

func (r barRun) FileDone() {}

func (r barRun) Done() {
	if r.bar != nil {
		_ = r.bar.Add(1)
	}
}

// Discard returns a Reporter that reports nothing. Used for dry runs and tests.
func Discard() Reporter {
	return discard{}
}

type discard struct{}

func (discard) Start(int)                        {}
func (discard) StartRun(string, int) RunReporter { return discardRun{} }
func (discard) Finish()                          {}

type discardRun struct{}

func (discardRun) FileDone() {}
func (discardRun) Done()     {}
