package cli

import (
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/helm-tools/helmdd/internal/archive"
	"github.com/helm-tools/helmdd/internal/logging"
	"github.com/helm-tools/helmdd/internal/models"
)

// fakeArchive stands in for the config page, the release root, and the
// artifact storage of one classic-shaped project.
type fakeArchive struct {
	srv *httptest.Server

	mu           sync.Mutex
	artifactHits int

	runSpecsBody string
}

func newFakeArchive(t *testing.T) *fakeArchive {
	t.Helper()
	a := &fakeArchive{
		runSpecsBody: `[{"name":"b:x=2,model=m"},{"name":"a:x=1,model=m"}]`,
	}

	mux := nethttp.NewServeMux()
	mux.HandleFunc("/config.js", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		io.WriteString(w, `window.BENCHMARK_OUTPUT_BASE_URL = "`+a.srv.URL+`";
window.RELEASE = "v0.4.0";
`)
	})
	mux.HandleFunc("/releases/v0.4.0/run_specs.json", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		io.WriteString(w, a.runSpecsBody)
	})
	mux.HandleFunc("/releases/v0.4.0/runs_to_run_suites.json", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		io.WriteString(w, `{"a:x=1,model=m":"v0.3.0","b:x=2,model=m":"v0.4.0"}`)
	})
	mux.HandleFunc("/runs/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		a.mu.Lock()
		a.artifactHits++
		a.mu.Unlock()
		io.WriteString(w, `{"artifact": true}`)
	})

	a.srv = httptest.NewServer(mux)
	t.Cleanup(a.srv.Close)
	return a
}

func (a *fakeArchive) hits() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.artifactHits
}

func (a *fakeArchive) project() archive.Project {
	p, _ := archive.Lookup("classic")
	p.ConfigURL = a.srv.URL + "/config.js"
	return p
}

func testOptions(outputDir string) Options {
	return Options{
		Project:     "classic",
		Release:     "latest",
		OutputDir:   outputDir,
		Files:       []string{"run_spec.json", "stats.json"},
		Concurrency: 1,
		DryRun:      true,
	}
}

func TestDownloadProjectEndToEnd(t *testing.T) {
	a := newFakeArchive(t)
	outputDir := t.TempDir()
	log := logging.NewLogger(io.Discard)

	opts := testOptions(outputDir)
	opts.DryRun = false
	summary, err := downloadProject(context.Background(), a.srv.Client(), log, a.project(), opts)
	if err != nil {
		t.Fatalf("downloadProject: %v", err)
	}

	if summary.Found != 2 || summary.Complete != 0 || summary.Planned != 2 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want Found 2, Complete 0, Planned 2, Failed 0", summary)
	}

	// Suite comes from the mapping, directory name from the path-safe id.
	runDir := filepath.Join(outputDir, models.RunInfo{ID: "a:x=1,model=m"}.PathSafeID())
	for _, name := range opts.Files {
		body, err := os.ReadFile(filepath.Join(runDir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if !strings.Contains(string(body), "artifact") {
			t.Errorf("%s = %q, want artifact body", name, body)
		}
	}
	if got, want := a.hits(), 4; got != want {
		t.Errorf("artifact fetches = %d, want %d (2 runs x 2 files)", got, want)
	}
}

func TestDownloadProjectFatalManifestMakesNoArtifactFetches(t *testing.T) {
	a := newFakeArchive(t)
	a.runSpecsBody = "<html><body>service unavailable</body></html>"
	log := logging.NewLogger(io.Discard)

	opts := testOptions(t.TempDir())
	opts.DryRun = false
	_, err := downloadProject(context.Background(), a.srv.Client(), log, a.project(), opts)

	var manErr *archive.ManifestError
	if !errors.As(err, &manErr) {
		t.Fatalf("err = %v, want ManifestError", err)
	}
	if got := a.hits(); got != 0 {
		t.Errorf("artifact fetches after manifest failure = %d, want 0", got)
	}
}

func TestDryRunCountsMatchWetRun(t *testing.T) {
	a := newFakeArchive(t)
	outputDir := t.TempDir()
	log := logging.NewLogger(io.Discard)

	dry, err := downloadProject(context.Background(), a.srv.Client(), log, a.project(), testOptions(outputDir))
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if got := a.hits(); got != 0 {
		t.Errorf("artifact fetches during dry run = %d, want 0", got)
	}
	if entries, _ := os.ReadDir(outputDir); len(entries) != 0 {
		t.Errorf("dry run created %d entries, want 0", len(entries))
	}

	opts := testOptions(outputDir)
	opts.DryRun = false
	wet, err := downloadProject(context.Background(), a.srv.Client(), log, a.project(), opts)
	if err != nil {
		t.Fatalf("wet run: %v", err)
	}

	if dry.Found != wet.Found || dry.Complete != wet.Complete || dry.Planned != wet.Planned {
		t.Errorf("dry counts %+v differ from wet counts %+v", dry, wet)
	}

	// After the wet run everything is complete; a further dry run plans nothing.
	resumed, err := downloadProject(context.Background(), a.srv.Client(), log, a.project(), testOptions(outputDir))
	if err != nil {
		t.Fatalf("resumed dry run: %v", err)
	}
	if resumed.Complete != 2 || resumed.Planned != 0 {
		t.Errorf("resumed summary = %+v, want Complete 2, Planned 0", resumed)
	}
}

func TestRedownloadPlansFullManifest(t *testing.T) {
	a := newFakeArchive(t)
	outputDir := t.TempDir()
	log := logging.NewLogger(io.Discard)

	opts := testOptions(outputDir)
	opts.DryRun = false
	if _, err := downloadProject(context.Background(), a.srv.Client(), log, a.project(), opts); err != nil {
		t.Fatalf("first run: %v", err)
	}

	opts.Redownload = true
	opts.DryRun = true
	summary, err := downloadProject(context.Background(), a.srv.Client(), log, a.project(), opts)
	if err != nil {
		t.Fatalf("redownload dry run: %v", err)
	}
	if summary.Complete != 2 || summary.Planned != 2 {
		t.Errorf("summary = %+v, want Complete 2 and Planned 2 (full manifest)", summary)
	}
}
