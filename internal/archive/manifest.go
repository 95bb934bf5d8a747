package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"

	"github.com/helm-tools/helmdd/internal/logging"
	"github.com/helm-tools/helmdd/internal/models"
)

// Manifest file names published under the release root.
const (
	runSpecsFile     = "run_specs.json"
	suiteMappingFile = "runs_to_run_suites.json"
)

// ManifestFetcher retrieves the full list of runs for a resolved release.
type ManifestFetcher struct {
	client *nethttp.Client
	logger *logging.Logger
}

// NewManifestFetcher creates a ManifestFetcher using the given HTTP client.
func NewManifestFetcher(client *nethttp.Client, logger *logging.Logger) *ManifestFetcher {
	return &ManifestFetcher{client: client, logger: logger}
}

// Fetch builds the run manifest for cfg.
//
// run_specs.json must parse as an array of objects carrying at least a "name"
// field; anything else (typically an HTML error page for a nonexistent
// release) is a fatal ManifestError carrying the raw body. For projects with a
// suite mapping, runs_to_run_suites.json is joined against the run ids; an id
// missing from the mapping is also fatal, since its artifact URLs could not be
// composed. Manifest order is fetch order; the planner sorts.
func (f *ManifestFetcher) Fetch(ctx context.Context, project Project, cfg models.ReleaseConfig) ([]models.RunInfo, error) {
	releaseRoot := project.ReleaseRoot(cfg.StorageURL, cfg.Release)

	specsURL := releaseRoot + "/" + runSpecsFile
	f.logger.Info().Str("url", specsURL).Msg("Getting run ids")

	var specs []struct {
		Name string `json:"name"`
	}
	body, err := f.getJSON(ctx, specsURL, &specs)
	if err != nil {
		return nil, &ManifestError{URL: specsURL, Body: body, Err: err}
	}

	seen := make(map[string]struct{}, len(specs))
	ids := make([]string, 0, len(specs))
	for _, spec := range specs {
		if _, dup := seen[spec.Name]; dup {
			return nil, &ManifestError{
				URL: specsURL,
				Err: fmt.Errorf("duplicate run id %q", spec.Name),
			}
		}
		seen[spec.Name] = struct{}{}
		ids = append(ids, spec.Name)
	}

	runs := make([]models.RunInfo, 0, len(ids))
	if project.HasSuiteMapping {
		mappingURL := releaseRoot + "/" + suiteMappingFile
		f.logger.Info().Str("url", mappingURL).Msg("Getting run to suite mapping")

		var suites map[string]string
		body, err := f.getJSON(ctx, mappingURL, &suites)
		if err != nil {
			return nil, &ManifestError{URL: mappingURL, Body: body, Err: err}
		}
		for _, id := range ids {
			suite, ok := suites[id]
			if !ok {
				return nil, &ManifestError{
					URL: mappingURL,
					Err: fmt.Errorf("run %q has no suite mapping", id),
				}
			}
			runs = append(runs, models.RunInfo{ID: id, Suite: suite})
		}
	} else {
		// No mapping published: every run executed under the release itself.
		for _, id := range ids {
			runs = append(runs, models.RunInfo{ID: id, Suite: cfg.Release})
		}
	}

	return runs, nil
}

// getJSON fetches url and unmarshals the body into v. The raw body is
// returned in all cases so callers can surface it in diagnostics.
func (f *ManifestFetcher) getJSON(ctx context.Context, url string, v interface{}) ([]byte, error) {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != nethttp.StatusOK {
		return body, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return body, fmt.Errorf("response is not valid JSON: %w", err)
	}
	return body, nil
}
