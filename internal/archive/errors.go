package archive

import "fmt"

// ResolutionError means the release token could not be determined
// automatically. It is fatal: downloading against a guessed release would
// silently serve wrong or stale data.
type ResolutionError struct {
	Project string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not resolve latest release for project %q: %v (set it manually with e.g. --release v0.2.4)", e.Project, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ManifestError means the run list or suite mapping was not parseable as
// expected. It is fatal: a partial manifest would under-report available runs.
// Body carries the raw response for postmortem inspection (the archive returns
// HTML error pages when a release does not exist).
type ManifestError struct {
	URL  string
	Body []byte
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("could not fetch run manifest from %s: %v", e.URL, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }

// StorageURLError means the storage base URL could not be auto-discovered.
// It is non-fatal: the resolver falls back to the project's known-good
// default and continues.
type StorageURLError struct {
	Project string
	Err     error
}

func (e *StorageURLError) Error() string {
	return fmt.Sprintf("could not discover storage URL for project %q: %v", e.Project, e.Err)
}

func (e *StorageURLError) Unwrap() error { return e.Err }
