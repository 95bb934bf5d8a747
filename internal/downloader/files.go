// Package downloader implements the resumable fetch pipeline: partitioning the
// run manifest against on-disk state, planning the download queue, and
// fetching per-run artifact files.
package downloader

import "fmt"

// Catalog is the fixed set of artifact files a run can publish, in fetch
// order.
var Catalog = []string{
	"run_spec.json",
	"scenario.json",
	"scenario_state.json",
	"stats.json",
	"instances.json",
	"display_predictions.json",
	"display_requests.json",
}

// DefaultFiles is the subset downloaded when no --files selection is given.
var DefaultFiles = []string{
	"scenario_state.json",
	"instances.json",
	"display_predictions.json",
}

// AllFiles is the sentinel --files value selecting the full catalog.
const AllFiles = "all"

// ResolveFiles validates a --files selection against the catalog and returns
// it in catalog order. The single sentinel "all" selects every known file.
func ResolveFiles(selection []string) ([]string, error) {
	if len(selection) == 1 && selection[0] == AllFiles {
		return append([]string(nil), Catalog...), nil
	}

	known := make(map[string]struct{}, len(Catalog))
	for _, name := range Catalog {
		known[name] = struct{}{}
	}
	requested := make(map[string]struct{}, len(selection))
	for _, name := range selection {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("unknown file %q (available: %v, or %q)", name, Catalog, AllFiles)
		}
		requested[name] = struct{}{}
	}

	// Catalog order keeps per-run fetch order fixed regardless of how the
	// selection was spelled.
	files := make([]string, 0, len(requested))
	for _, name := range Catalog {
		if _, ok := requested[name]; ok {
			files = append(files, name)
		}
	}
	return files, nil
}
