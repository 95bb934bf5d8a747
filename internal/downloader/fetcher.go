package downloader

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/helm-tools/helmdd/internal/logging"
	"github.com/helm-tools/helmdd/internal/models"
	"github.com/helm-tools/helmdd/internal/progress"
)

// errorSuffix is appended to the artifact file name when the archive returns a
// non-2xx response; the response body is persisted under that name for
// postmortem inspection. Error files never count toward completeness, so the
// run is retried on the next invocation.
const errorSuffix = ".error"

// Fetcher downloads the planned runs' artifact files into the output tree.
//
// Failure policy is lenient: a failed file is logged, its response body (if
// any) is persisted alongside as <name>.error, and the batch continues. The
// caller decides the exit code from the returned failure count.
type Fetcher struct {
	Client     *nethttp.Client
	Logger     *logging.Logger
	Reporter   progress.Reporter
	StorageURL string
	OutputDir  string
	Files      []string

	// Concurrency bounds the number of runs fetched in parallel. Values < 1
	// mean sequential. Files within a run are always fetched in order.
	Concurrency int

	// DryRun reports progress but performs no network fetches and no writes.
	DryRun bool
}

// Run fetches every planned run and returns the number of failed file fetches.
// A non-nil error is returned only for cancellation; per-file failures are
// reflected in the count.
func (f *Fetcher) Run(ctx context.Context, plan []models.RunInfo) (int, error) {
	reporter := f.Reporter
	if reporter == nil {
		reporter = progress.Discard()
	}
	workers := f.Concurrency
	if workers < 1 {
		workers = 1
	}

	reporter.Start(len(plan))
	defer reporter.Finish()

	// Bounded pool: the semaphore caps in-flight runs, the WaitGroup joins
	// them. Directory creation and file writes for a run stay on one
	// goroutine, so creation happens-before every write.
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var failed int64

	for _, run := range plan {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(run models.RunInfo) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			rr := reporter.StartRun(run.ID, len(f.Files))
			defer rr.Done()
			atomic.AddInt64(&failed, int64(f.fetchRun(ctx, run, rr)))
		}(run)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return int(atomic.LoadInt64(&failed)), err
	}
	return int(atomic.LoadInt64(&failed)), nil
}

// fetchRun fetches all required files for one run and returns how many failed.
func (f *Fetcher) fetchRun(ctx context.Context, run models.RunInfo, rr progress.RunReporter) int {
	if f.DryRun {
		return 0
	}

	runDir := filepath.Join(f.OutputDir, run.PathSafeID())
	if err := os.MkdirAll(runDir, 0755); err != nil {
		f.Logger.Error().Err(err).Str("run", run.ID).Msg("Could not create run directory")
		return len(f.Files)
	}

	failures := 0
	for _, name := range f.Files {
		if ctx.Err() != nil {
			return failures
		}
		if err := f.fetchFile(ctx, run, runDir, name); err != nil {
			f.Logger.Error().
				Err(err).
				Str("run", run.ID).
				Str("file", name).
				Msg("Download failed")
			failures++
		}
		rr.FileDone()
	}
	return failures
}

// fetchFile downloads one artifact file. The remote path is built from the
// raw run id; PathEscape only covers bytes a request URI cannot carry
// verbatim, and the archive decodes them back to the stored object name.
func (f *Fetcher) fetchFile(ctx context.Context, run models.RunInfo, runDir, name string) error {
	fileURL := f.StorageURL + "/runs/" +
		url.PathEscape(run.Suite) + "/" +
		url.PathEscape(run.ID) + "/" +
		url.PathEscape(name)

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, fileURL, nil)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", fileURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("GET %s: %w", fileURL, err)
	}

	if resp.StatusCode != nethttp.StatusOK {
		// Keep the error body next to the run for diagnosis.
		errPath := filepath.Join(runDir, name+errorSuffix)
		if werr := os.WriteFile(errPath, body, 0644); werr != nil {
			f.Logger.Error().Err(werr).Str("path", errPath).Msg("Could not persist error body")
		}
		return fmt.Errorf("GET %s: %s", fileURL, resp.Status)
	}

	return os.WriteFile(filepath.Join(runDir, name), body, 0644)
}
