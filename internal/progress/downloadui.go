package progress

import (
	"io"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// maxRunLabel truncates long run ids in per-run bar labels so bars fit a
// reasonable terminal width.
const maxRunLabel = 48

// DownloadUI is a multi-bar Reporter for concurrent downloads: an aggregate
// run counter plus one short-lived bar per in-flight run, counting its
// artifact files. On a non-terminal stderr all rendering is discarded.
type DownloadUI struct {
	progress   *mpb.Progress
	total      *mpb.Bar
	isTerminal bool
}

// NewDownloadUI creates a multi-bar download reporter on stderr.
func NewDownloadUI() *DownloadUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(200*time.Millisecond),
			mpb.WithWidth(80),
		)
	} else {
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	return &DownloadUI{
		progress:   p,
		isTerminal: isTerminal,
	}
}

// Start creates the aggregate bar over all runs.
func (u *DownloadUI) Start(totalRuns int) {
	u.total = u.progress.New(int64(totalRuns),
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
		mpb.PrependDecorators(
			decor.Name("runs", decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
		),
	)
}

// StartRun adds a per-run bar sized by the run's file count. The bar is
// removed once the run completes, keeping the display bounded by the worker
// pool size.
func (u *DownloadUI) StartRun(run string, files int) RunReporter {
	if len(run) > maxRunLabel {
		run = run[:maxRunLabel-3] + "..."
	}
	bar := u.progress.New(int64(files),
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(run, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("%d/%d files"),
		),
		mpb.BarRemoveOnComplete(),
	)
	return &uiRun{ui: u, bar: bar, files: int64(files)}
}

// Finish waits for all bars to render their final state. The aggregate bar is
// force-completed first so Wait returns even after an early cancellation.
func (u *DownloadUI) Finish() {
	if u.total != nil {
		u.total.SetTotal(-1, true)
	}
	u.progress.Wait()
}

type uiRun struct {
	ui    *DownloadUI
	bar   *mpb.Bar
	files int64
}

func (r *uiRun) FileDone() {
	r.bar.Increment()
}

func (r *uiRun) Done() {
	// Fill the bar even if some files failed so it is removed from the display.
	r.bar.SetCurrent(r.files)
	if r.ui.total != nil {
		r.ui.total.Increment()
	}
}
