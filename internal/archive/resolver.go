package archive

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"

	"github.com/helm-tools/helmdd/internal/logging"
	"github.com/helm-tools/helmdd/internal/models"
)

// LatestRelease is the symbolic release token resolved against the project's
// configuration page.
const LatestRelease = "latest"

// Resolver turns a symbolic release and an optional manual storage URL into a
// concrete ReleaseConfig.
type Resolver struct {
	client *nethttp.Client
	logger *logging.Logger
}

// NewResolver creates a Resolver using the given HTTP client.
func NewResolver(client *nethttp.Client, logger *logging.Logger) *Resolver {
	return &Resolver{client: client, logger: logger}
}

// Resolve determines the concrete release and storage base URL for project.
//
// A requested release of "latest" is resolved by scraping the project's
// configuration page; failure there is fatal (ResolutionError) since guessing
// a release would corrupt the manifest join downstream. Any other requested
// release is used verbatim, unvalidated.
//
// The storage URL is resolved independently: a manual URL wins outright;
// otherwise the configuration page is scraped, and on failure the project's
// hardcoded default is used (logged, non-fatal). The configuration page is
// fetched at most once even when both tokens are needed.
func (r *Resolver) Resolve(ctx context.Context, project Project, requestedRelease, manualStorageURL string) (models.ReleaseConfig, error) {
	var (
		page    string
		pageErr error
		fetched bool
	)
	configPage := func() (string, error) {
		if !fetched {
			page, pageErr = r.fetchConfigPage(ctx, project.ConfigURL)
			fetched = true
		}
		return page, pageErr
	}

	release := requestedRelease
	if requestedRelease == LatestRelease {
		body, err := configPage()
		if err != nil {
			return models.ReleaseConfig{}, &ResolutionError{Project: project.ID, Err: err}
		}
		m := project.ReleasePattern.FindStringSubmatch(body)
		if m == nil {
			return models.ReleaseConfig{}, &ResolutionError{
				Project: project.ID,
				Err:     fmt.Errorf("no release token in %s", project.ConfigURL),
			}
		}
		release = m[1]
		r.logger.Info().Str("release", release).Msg("Using latest release")
	}

	storageURL := manualStorageURL
	if storageURL == "" {
		body, err := configPage()
		if err == nil {
			if m := project.StoragePattern.FindStringSubmatch(body); m != nil {
				storageURL = m[1]
				r.logger.Debug().Str("storage_url", storageURL).Msg("Discovered storage URL")
			} else {
				err = fmt.Errorf("no storage URL token in %s", project.ConfigURL)
			}
		}
		if storageURL == "" {
			storageURL = project.DefaultStorage(release)
			r.logger.Warn().
				Err(&StorageURLError{Project: project.ID, Err: err}).
				Str("default", storageURL).
				Msg("Falling back to default storage URL (override with --storage-url)")
		}
	} else {
		r.logger.Info().Str("storage_url", storageURL).Msg("Using manually provided storage URL")
	}

	return models.ReleaseConfig{
		Project:    project.ID,
		Release:    release,
		StorageURL: strings.TrimRight(storageURL, "/"),
	}, nil
}

func (r *Resolver) fetchConfigPage(ctx context.Context, url string) (string, error) {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return "", fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
