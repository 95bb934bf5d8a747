// Package models defines the core data types shared across the downloader pipeline.
package models

import "strings"

// RunInfo identifies a single benchmark run within a release.
type RunInfo struct {
	// ID is the run identifier as published in run_specs.json, e.g.
	// "babi_qa:task=15,model=AlephAlpha_luminous-base". It is treated as an
	// opaque token; its internal structure is never parsed.
	ID string

	// Suite is the sub-release the run was originally executed under. It may
	// differ from the release being browsed, since a release can reference
	// runs produced under earlier suites.
	Suite string
}

const upperhex = "0123456789ABCDEF"

// PathSafeID returns a percent-encoded form of the run ID that is safe to use
// as a single directory name. Every byte outside the unreserved set
// [A-Za-z0-9._~-] is escaped, including '/', ':', ',' and '='. The encoding is
// deterministic and reversible with standard percent-decoding.
//
// PathSafeID is used only for local filesystem paths. Remote URLs are built
// from the raw ID (the archive stores objects under the unencoded name).
func (r RunInfo) PathSafeID() string {
	var b strings.Builder
	b.Grow(len(r.ID))
	for i := 0; i < len(r.ID); i++ {
		c := r.ID[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~':
		return true
	}
	return false
}

// ReleaseConfig is the resolved release identity and storage location for one
// project. It is produced once per invocation and not mutated afterwards.
type ReleaseConfig struct {
	Project    string // archive project id, e.g. "classic"
	Release    string // concrete release token, e.g. "v0.4.0"
	StorageURL string // storage base URL, trailing slash stripped
}
