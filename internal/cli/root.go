// Package cli provides the command-line interface for helmdd.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/helm-tools/helmdd/internal/archive"
	"github.com/helm-tools/helmdd/internal/downloader"
	"github.com/helm-tools/helmdd/internal/logging"
)

// Version information - set by main package at startup (injected via LDFLAGS
// for release builds).
var (
	Version   = "v1.0.0-dev"
	BuildTime = "unknown"
)

var (
	projectID   string
	release     string
	outputDir   string
	storageURL  string
	redownload  bool
	maxRuns     int
	dryRun      bool
	files       []string
	concurrency int
	verbose     bool

	logger *logging.Logger
)

// allProjects selects every registered project.
const allProjects = "all"

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "helmdd",
		Short: "HELM Data Downloader - bulk-download benchmark run data",
		Long: `helmdd ` + Version + ` - Built: ` + BuildTime + `
Downloads per-run artifact files from the public HELM benchmark archive
into a local directory tree. Downloads are resumable: runs already
complete on disk are skipped, so re-running the tool only fetches what
is missing.

Projects: ` + strings.Join(archive.ProjectIDs, ", ") + ` (or "all").
Files:    ` + strings.Join(downloader.Catalog, ", ") + ` (or "all").`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Optional .env for local defaults, e.g. HELMDD_STORAGE_URL for a
			// mirror. Missing file is fine.
			_ = godotenv.Load()

			logger = logging.NewDefaultLogger()
			if verbose {
				logging.SetGlobalLevel(-1) // zerolog.DebugLevel
			}

			if storageURL == "" {
				storageURL = os.Getenv("HELMDD_STORAGE_URL")
			}
			if outputDir == "" {
				outputDir = os.Getenv("HELMDD_OUTPUT_DIR")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd.Context(), Options{
				Project:     projectID,
				Release:     release,
				OutputDir:   outputDir,
				StorageURL:  storageURL,
				Redownload:  redownload,
				MaxRuns:     maxRuns,
				DryRun:      dryRun,
				Files:       files,
				Concurrency: concurrency,
			})
		},
	}

	rootCmd.Flags().StringVarP(&projectID, "project", "p", "classic",
		"Project to download data from ("+strings.Join(archive.ProjectIDs, "|")+"|all)")
	rootCmd.Flags().StringVarP(&release, "release", "r", archive.LatestRelease,
		"Release version to download data from, e.g. v0.2.4 ('latest' resolves it from the project website)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "",
		"Output directory for downloaded data (default ./helm-data/<PROJECT>/<RELEASE>)")
	rootCmd.Flags().StringVar(&storageURL, "storage-url", "",
		"Storage URL to download from; discovered from the project website when unset, useful for mirrors")
	rootCmd.Flags().BoolVar(&redownload, "redownload", false,
		"Redownload all data, even if present already")
	rootCmd.Flags().IntVar(&maxRuns, "max-runs", 0,
		"Maximum number of runs to download (0 = no limit)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Report what would be downloaded without fetching or writing anything")
	rootCmd.Flags().StringSliceVar(&files, "files", downloader.DefaultFiles,
		"Files to download for each run, or 'all'")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 4,
		"Number of runs to fetch in parallel (1-32; 1 = sequential)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Verbose output (shows debug messages)")

	rootCmd.Version = Version + " (" + BuildTime + ")"

	return rootCmd
}

// Execute runs the root command with interrupt handling. An interrupt stops
// scheduling new fetches; completeness is re-derived from disk on the next
// invocation, so aborted runs are simply retried.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	return rootCmd.ExecuteContext(ctx)
}

func validateConcurrency(n int) error {
	if n < 1 || n > 32 {
		return fmt.Errorf("concurrency must be between 1 and 32, got %d", n)
	}
	return nil
}
