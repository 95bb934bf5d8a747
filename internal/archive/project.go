// Package archive knows how to locate releases and run manifests across the
// HELM archive generations. Each generation publishes its configuration and
// storage layout slightly differently, so per-project strategy records drive
// the release resolver and manifest fetcher instead of per-project code paths.
package archive

import (
	"regexp"
	"strings"
)

// Project describes one archive deployment: where its configuration page
// lives, how release and storage tokens are extracted from it, and how the
// release root URL is composed.
type Project struct {
	// ID is the project selector used on the command line.
	ID string

	// Name is the human-readable project name.
	Name string

	// ConfigURL is the configuration page scraped for release and storage
	// tokens. The page is a small JavaScript snippet, e.g.
	//
	//	window.BENCHMARK_OUTPUT_BASE_URL = "https://storage.googleapis.com/crfm-helm-public/benchmark_output/";
	//	window.RELEASE = "v0.4.0";
	ConfigURL string

	// ReleasePattern extracts the concrete release token from the config page.
	ReleasePattern *regexp.Regexp

	// StoragePattern extracts the storage base URL from the config page.
	StoragePattern *regexp.Regexp

	// DefaultStorageURL is the known-good fallback when the storage URL cannot
	// be discovered. "{release}" is substituted with the resolved release
	// (the HEIM deployment nests its storage under the release).
	DefaultStorageURL string

	// ReleaseRootSegment is the path segment between the storage base and the
	// release id where the manifest files live: "releases" for release-based
	// archives, "runs" for suite-based ones.
	ReleaseRootSegment string

	// HasSuiteMapping reports whether the release root publishes
	// runs_to_run_suites.json. Projects without it execute every run under the
	// release itself (suite == release).
	HasSuiteMapping bool
}

// ReleaseRoot composes the URL under which run_specs.json and
// runs_to_run_suites.json are published.
func (p Project) ReleaseRoot(storageURL, release string) string {
	return strings.TrimSuffix(storageURL, "/") + "/" + p.ReleaseRootSegment + "/" + release
}

// DefaultStorage returns the fallback storage URL for a resolved release.
func (p Project) DefaultStorage(release string) string {
	return strings.ReplaceAll(p.DefaultStorageURL, "{release}", release)
}

var (
	releasePattern = regexp.MustCompile(`window.RELEASE = "(.+)";`)
	suitePattern   = regexp.MustCompile(`window.SUITE = "(.+)";`)
	storagePattern = regexp.MustCompile(`window.BENCHMARK_OUTPUT_BASE_URL =\s+"(.*)";`)
)

// ProjectIDs lists the known projects in CLI presentation order.
var ProjectIDs = []string{"classic", "heim", "lite", "instruct"}

var projects = map[string]Project{
	"classic": {
		ID:                 "classic",
		Name:               "Classic",
		ConfigURL:          "https://crfm.stanford.edu/helm/classic/latest/config.js",
		ReleasePattern:     releasePattern,
		StoragePattern:     storagePattern,
		DefaultStorageURL:  "https://storage.googleapis.com/crfm-helm-public/benchmark_output",
		ReleaseRootSegment: "releases",
		HasSuiteMapping:    true,
	},
	"heim": {
		ID:                 "heim",
		Name:               "HEIM",
		ConfigURL:          "https://crfm.stanford.edu/helm/heim/latest/config.js",
		ReleasePattern:     suitePattern,
		StoragePattern:     storagePattern,
		DefaultStorageURL:  "https://nlp.stanford.edu/helm/{release}/benchmark_output",
		ReleaseRootSegment: "runs",
		HasSuiteMapping:    false,
	},
	"lite": {
		ID:                 "lite",
		Name:               "Lite",
		ConfigURL:          "https://crfm.stanford.edu/helm/lite/latest/config.js",
		ReleasePattern:     releasePattern,
		StoragePattern:     storagePattern,
		DefaultStorageURL:  "https://storage.googleapis.com/crfm-helm-public/benchmark_output",
		ReleaseRootSegment: "releases",
		HasSuiteMapping:    true,
	},
	"instruct": {
		ID:                 "instruct",
		Name:               "Instruct",
		ConfigURL:          "https://crfm.stanford.edu/helm/instruct/latest/config.js",
		ReleasePattern:     releasePattern,
		StoragePattern:     storagePattern,
		DefaultStorageURL:  "https://storage.googleapis.com/crfm-helm-public/benchmark_output",
		ReleaseRootSegment: "releases",
		HasSuiteMapping:    true,
	},
}

// Lookup returns the project record for id.
func Lookup(id string) (Project, bool) {
	p, ok := projects[id]
	return p, ok
}
