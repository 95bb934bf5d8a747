package cli

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/helm-tools/helmdd/internal/archive"
	"github.com/helm-tools/helmdd/internal/downloader"
	httpclient "github.com/helm-tools/helmdd/internal/http"
	"github.com/helm-tools/helmdd/internal/logging"
	"github.com/helm-tools/helmdd/internal/progress"
)

// Options is the resolved command-line surface handed to the pipeline.
type Options struct {
	Project     string
	Release     string
	OutputDir   string
	StorageURL  string
	Redownload  bool
	MaxRuns     int
	DryRun      bool
	Files       []string
	Concurrency int
}

// projectSummary is what one project's pipeline reports back: manifest size,
// runs already on disk, planned downloads, and failed file fetches.
type projectSummary struct {
	Found    int
	Complete int
	Planned  int
	Failed   int
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	noteColor   = color.New(color.FgYellow)
)

// runDownload executes the pipeline for the selected project, or for every
// registered project when "all" is selected. The exit status is non-zero when
// any project fails to resolve or any file fetch fails.
func runDownload(ctx context.Context, opts Options) error {
	if err := validateConcurrency(opts.Concurrency); err != nil {
		return err
	}
	requiredFiles, err := downloader.ResolveFiles(opts.Files)
	if err != nil {
		return err
	}
	opts.Files = requiredFiles

	projectIDs := []string{opts.Project}
	if opts.Project == allProjects {
		projectIDs = archive.ProjectIDs
	}

	client := httpclient.NewClient(logger)

	totalFailed := 0
	for _, id := range projectIDs {
		project, ok := archive.Lookup(id)
		if !ok {
			return fmt.Errorf("unknown project %q (available: %v, or %q)", id, archive.ProjectIDs, allProjects)
		}
		headerColor.Printf("# Downloading data for HELM %s project\n", project.Name)

		summary, err := downloadProject(ctx, client, logger, project, opts)
		if err != nil {
			return err
		}
		totalFailed += summary.Failed
	}

	if totalFailed > 0 {
		return fmt.Errorf("%d file downloads failed (failed runs stay incomplete and are retried on the next invocation)", totalFailed)
	}
	return nil
}

// downloadProject runs the full pipeline for one project: resolve, fetch
// manifest, partition against disk, plan, fetch artifacts.
func downloadProject(ctx context.Context, client *nethttp.Client, logger *logging.Logger, project archive.Project, opts Options) (projectSummary, error) {
	resolver := archive.NewResolver(client, logger)
	cfg, err := resolver.Resolve(ctx, project, opts.Release, opts.StorageURL)
	if err != nil {
		return projectSummary{}, err
	}

	manifest, err := archive.NewManifestFetcher(client, logger).Fetch(ctx, project, cfg)
	if err != nil {
		var manErr *archive.ManifestError
		if errors.As(err, &manErr) && len(manErr.Body) > 0 {
			// Surface the raw body; the archive answers nonexistent releases
			// with an HTML page that explains more than the status line does.
			logger.Error().
				Str("url", manErr.URL).
				Msg("Manifest response was not the expected JSON; raw body follows")
			fmt.Println("-------------- BEGIN RESPONSE --------------")
			fmt.Println(string(manErr.Body))
			fmt.Println("--------------- END RESPONSE ---------------")
		}
		return projectSummary{}, err
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join("helm-data", cfg.Project, cfg.Release)
	}

	complete, _ := downloader.Partition(manifest, outputDir, opts.Files)
	plan := downloader.Plan(manifest, complete, opts.Redownload, opts.MaxRuns)

	summary := projectSummary{
		Found:    len(manifest),
		Complete: len(complete),
		Planned:  len(plan),
	}

	fmt.Printf("Found %d runs online. Found %d runs already downloaded.\n", summary.Found, summary.Complete)
	if opts.Redownload {
		noteColor.Printf("Redownload flag set. Downloading all %d runs.\n", summary.Planned)
	} else {
		fmt.Printf("Downloading remaining %d runs.\n", summary.Planned)
	}
	if opts.MaxRuns > 0 {
		noteColor.Printf("NOTE: Capped at %d runs by --max-runs.\n", opts.MaxRuns)
	}
	if opts.DryRun {
		noteColor.Println("NOTE: Dry run. Not downloading any runs.")
	}

	fetcher := &downloader.Fetcher{
		Client:      client,
		Logger:      logger,
		Reporter:    newReporter(opts),
		StorageURL:  cfg.StorageURL,
		OutputDir:   outputDir,
		Files:       opts.Files,
		Concurrency: opts.Concurrency,
		DryRun:      opts.DryRun,
	}
	failed, err := fetcher.Run(ctx, plan)
	summary.Failed = failed
	if err != nil {
		return summary, err
	}
	return summary, nil
}

func newReporter(opts Options) progress.Reporter {
	switch {
	case opts.DryRun:
		return progress.Discard()
	case opts.Concurrency > 1:
		return progress.NewDownloadUI()
	default:
		return progress.NewBar()
	}
}
